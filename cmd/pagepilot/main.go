// Package main provides the PagePilot interactive browser copilot.
// It opens a browser tab, attaches the agent to it and reads requests from
// the terminal. Form submissions are confirmed at the prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/pagepilot/pkg/agent"
	"github.com/entrhq/pagepilot/pkg/browser"
	appconfig "github.com/entrhq/pagepilot/pkg/config"
	"github.com/entrhq/pagepilot/pkg/executor/cli"
	"github.com/entrhq/pagepilot/pkg/tab"
)

const version = "0.1.0"

// Config holds the application configuration
type Config struct {
	ConfigPath   string
	DefaultsPath string
	Model        string
	Endpoint     string
	APIKey       string
	Dialect      string
	Backend      string
	StartURL     string
	MaxSteps     int
	Headless     bool
	NoColor      bool
	WriteConfig  bool
	ShowVersion  bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("PagePilot v%s\n", version)
		return
	}

	if config.DefaultsPath != "" {
		if err := applyDefaults(config, config.DefaultsPath); err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags. Values left unset fall back to the
// defaults file, then the environment, then ~/.pagepilot/config.json.
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ConfigPath, "config", "", "Path to the JSON settings file (default: ~/.pagepilot/config.json)")
	flag.StringVar(&config.DefaultsPath, "defaults", "", "YAML file supplying defaults for these flags")
	flag.StringVar(&config.Model, "model", "", "Model id sent with every chat request")
	flag.StringVar(&config.Endpoint, "endpoint", "", "Chat endpoint URL (default: the local proxy)")
	flag.StringVar(&config.APIKey, "api-key", "", "Bearer token for the chat endpoint")
	flag.StringVar(&config.Dialect, "dialect", "", "Wire dialect: ollama or openai")
	flag.StringVar(&config.Backend, "backend", "", "Browser backend: playwright, chrome or static")
	flag.StringVar(&config.StartURL, "url", "", "Page to open before the first request")
	flag.IntVar(&config.MaxSteps, "max-steps", 0, "Model calls allowed per request")
	flag.BoolVar(&config.Headless, "headless", false, "Run the browser without a window")
	flag.BoolVar(&config.NoColor, "no-color", false, "Disable syntax highlighting of tool traces")
	flag.BoolVar(&config.WriteConfig, "write-config", false, "Save the given flags to the settings file and exit")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "PagePilot - a browser copilot\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagepilot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %-20s Model id\n", appconfig.EnvModel)
		fmt.Fprintf(os.Stderr, "  %-20s Chat endpoint URL\n", appconfig.EnvEndpoint)
		fmt.Fprintf(os.Stderr, "  %-20s Bearer token\n", appconfig.EnvAPIKey)
		fmt.Fprintf(os.Stderr, "  %-20s Wire dialect\n", appconfig.EnvDialect)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pagepilot                                    # Proxy on localhost:3000\n")
		fmt.Fprintf(os.Stderr, "  pagepilot -url https://example.com/signup\n")
		fmt.Fprintf(os.Stderr, "  pagepilot -backend static -url http://localhost:8080/form\n")
		fmt.Fprintf(os.Stderr, "  pagepilot -dialect openai -endpoint https://api.openai.com/v1 -model gpt-4o-mini\n")
		fmt.Fprintf(os.Stderr, "  pagepilot -defaults pagepilot.yaml\n")
		fmt.Fprintf(os.Stderr, "  pagepilot -model llama3 -backend static -write-config\n")
	}

	flag.Parse()
	return config
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if config.WriteConfig {
		if err := writeConfig(config); err != nil {
			return err
		}
		fmt.Println("Configuration saved.")
		return nil
	}

	provider, err := appconfig.BuildProvider(appconfig.ProviderFlags{
		Model:    config.Model,
		Endpoint: config.Endpoint,
		APIKey:   config.APIKey,
		Dialect:  config.Dialect,
	})
	if err != nil {
		return err
	}

	settings := appconfig.GetBrowser().Snapshot()
	if config.Backend != "" {
		settings.Backend = config.Backend
	}
	if config.Headless {
		settings.Headless = true
	}
	if config.StartURL != "" {
		settings.StartURL = config.StartURL
	}

	opened, err := browser.Open(settings)
	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	defer opened.Close()

	client := tab.NewClient(opened.Conn,
		tab.WithLoadTimeout(settings.LoadTimeout),
		tab.WithRequestTimeout(settings.TabTimeout),
	)

	if settings.StartURL != "" {
		if err := client.Navigate(ctx, settings.StartURL); err != nil {
			return fmt.Errorf("failed to open %s: %w", settings.StartURL, err)
		}
	}

	agentSettings := appconfig.GetAgent()
	maxSteps := agentSettings.GetMaxSteps()
	if config.MaxSteps > 0 {
		maxSteps = config.MaxSteps
	}

	ag := agent.NewDefaultAgent(provider,
		agent.WithTab(client),
		agent.WithMaxSteps(maxSteps),
		agent.WithApprovalTimeout(agentSettings.GetApprovalTimeout()),
	)

	executor := cli.NewExecutor(ag,
		cli.WithURLSource(client.URL),
		cli.WithHighlight(!config.NoColor),
	)
	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}
	return nil
}
