// Package auth provides credential verification and cookie-session
// authentication for leafnote.
//
// Passwords are hashed with bcrypt. Sessions are opaque random tokens stored
// in the database with a 24-hour expiry and delivered via the "session"
// cookie. A Sweeper periodically deletes expired rows; it has an explicit
// Start/Stop lifecycle so shutdown is deterministic.
//
// Middleware gates every route except a public allow-list: requests without
// a valid session are redirected to the landing page, and invalid or expired
// cookies are cleared on the way out. Unknown and expired tokens are treated
// identically.
package auth
