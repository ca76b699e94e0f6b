// Package search finds notes either by substring ranking or by delegating
// relevance to the language model, with silent degradation to text mode.
package search
