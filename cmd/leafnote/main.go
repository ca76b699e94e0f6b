// ABOUTME: Entry point for the leafnote server
// ABOUTME: Subcommands: serve, init, adduser, health

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/leafnote/leafnote/internal/auth"
	"github.com/leafnote/leafnote/internal/chat"
	"github.com/leafnote/leafnote/internal/config"
	"github.com/leafnote/leafnote/internal/island"
	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/notes"
	"github.com/leafnote/leafnote/internal/search"
	"github.com/leafnote/leafnote/internal/server"
	"github.com/leafnote/leafnote/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _            __            _
| | ___  __ _/ _|_ __   ___ | |_ ___
| |/ _ \/ _' | |_| '_ \ / _ \| __/ _ \
| |  __/ (_| |  _| | | | (_) | ||  __/
|_|\___|\__,_|_| |_| |_|\___/ \__\___|
`

// getConfigPath returns the path to the leafnote config file.
// Priority: LEAFNOTE_CONFIG env var > XDG_CONFIG_HOME/leafnote/config.yaml > ~/.config/leafnote/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("LEAFNOTE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "leafnote", "config.yaml")
}

// getDataPath returns the path to the leafnote data directory.
// Priority: XDG_DATA_HOME/leafnote > ~/.local/share/leafnote
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "leafnote")
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), "(defaults)", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func main() {
	// Local overrides like OLLAMA_HOST live in .env during development
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: leafnote <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve      Start the leafnote server")
		fmt.Println("  init       Create a new config file interactively")
		fmt.Println("  adduser    Create a user account")
		fmt.Println("  health     Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "adduser":
		err = runAddUser(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	// Print banner
	green := color.New(color.FgGreen)
	green.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Model:     %s @ %s\n", cfg.LLM.Model, cfg.LLM.Host)
	fmt.Println()

	logger.Info("starting leafnote",
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
		"model", cfg.LLM.Model,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	model := llm.NewClient(cfg.LLM.Host, logger)

	authSvc := auth.NewService(st, cfg.Sessions.TTL, logger)
	notesSvc := notes.NewService(st, logger)
	searchSvc := search.NewService(st, model, cfg.LLM.Model, logger)
	chatSvc := chat.NewService(st, model, cfg.LLM.Model, cfg.LLM.ChatTimeout, logger)

	cache := island.New(island.DefaultTTL)
	defer cache.Close()
	dispatcher := island.NewDispatcher(cache, chatSvc, logger)

	sweeper := auth.NewSweeper(authSvc, cfg.Sessions.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := server.New(cfg.Server.HTTPAddr, authSvc, notesSvc, searchSvc, chatSvc, dispatcher, logger)
	return srv.Run(ctx)
}

func runAddUser(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username", "")
	if username == "" {
		return fmt.Errorf("username is required")
	}
	password := prompt(reader, "Password", "")
	if password == "" {
		return fmt.Errorf("password is required")
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	authSvc := auth.NewService(st, cfg.Sessions.TTL, slog.Default())
	if err := authSvc.Register(ctx, username, password); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("User %q created.\n", username)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := strings.TrimPrefix(cfg.Server.HTTPAddr, "http://")
	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("leafnote configuration setup")
	fmt.Println("============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "leafnote.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", config.DefaultHTTPAddr)

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Language Model Configuration ---")
	llmHost := prompt(reader, "LLM host", config.DefaultLLMHost)
	llmModel := prompt(reader, "Default model", config.DefaultLLMModel)

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# leafnote configuration\n")
	cfg.WriteString("# Generated by leafnote init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("llm:\n")
	cfg.WriteString(fmt.Sprintf("  host: \"%s\"\n", llmHost))
	cfg.WriteString(fmt.Sprintf("  model: \"%s\"\n", llmModel))
	cfg.WriteString("  chat_timeout: \"30s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("sessions:\n")
	cfg.WriteString("  ttl: \"24h\"\n")
	cfg.WriteString("  sweep_interval: \"1h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nWrote %s\n", outputFile)
	fmt.Println("Next: run 'leafnote adduser' to create an account, then 'leafnote serve'.")
	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
