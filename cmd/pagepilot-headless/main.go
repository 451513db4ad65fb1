// Package main provides the PagePilot headless runner.
// It runs one task against a browser tab without a terminal prompt. Form
// submissions are approved only on pages the task file allows, and the run
// leaves its artifacts on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/pagepilot/pkg/agent"
	"github.com/entrhq/pagepilot/pkg/browser"
	appconfig "github.com/entrhq/pagepilot/pkg/config"
	"github.com/entrhq/pagepilot/pkg/executor/headless"
	"github.com/entrhq/pagepilot/pkg/tab"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile   string
	SettingsFile string
	Task         string
	StartURL     string
	Model        string
	Endpoint     string
	APIKey       string
	Dialect      string
	Backend      string
	AllowedURLs  stringList
	Timeout      time.Duration
	MaxSteps     int
	Verbosity    string
	ShowVersion  bool
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("PagePilot Headless v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.ConfigFile, "config", "", "Path to the task file (YAML)")
	flag.StringVar(&config.SettingsFile, "settings", "", "Path to the JSON settings file (default: ~/.pagepilot/config.json)")
	flag.StringVar(&config.Task, "task", "", "Task description (required if no task file)")
	flag.StringVar(&config.StartURL, "url", "", "Page to open before the task is sent")
	flag.StringVar(&config.Model, "model", "", "Model id sent with every chat request")
	flag.StringVar(&config.Endpoint, "endpoint", "", "Chat endpoint URL")
	flag.StringVar(&config.APIKey, "api-key", "", "Bearer token for the chat endpoint")
	flag.StringVar(&config.Dialect, "dialect", "", "Wire dialect: ollama or openai")
	flag.StringVar(&config.Backend, "backend", "", "Browser backend: playwright, chrome or static")
	flag.Var(&config.AllowedURLs, "allow", "URL glob on which form submission is approved (repeatable)")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Execution timeout (overrides the task file)")
	flag.IntVar(&config.MaxSteps, "max-steps", 0, "Model calls allowed for the task")
	flag.StringVar(&config.Verbosity, "verbosity", "", "Console output: quiet, normal, verbose or debug")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "PagePilot Headless - run a browser task without a prompt\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagepilot-headless [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Read-only task, no submission is approved\n")
		fmt.Fprintf(os.Stderr, "  pagepilot-headless -url https://example.com -task \"Summarize this page\"\n\n")
		fmt.Fprintf(os.Stderr, "  # Allow submitting on one site\n")
		fmt.Fprintf(os.Stderr, "  pagepilot-headless -backend static -url http://localhost:8080/signup \\\n")
		fmt.Fprintf(os.Stderr, "    -task \"Sign up as Ada Lovelace\" -allow \"http://localhost:8080/**\"\n\n")
		fmt.Fprintf(os.Stderr, "  # Run with a task file\n")
		fmt.Fprintf(os.Stderr, "  pagepilot-headless -config task.yaml\n\n")
	}

	flag.Parse()
	return config
}

// run executes the headless task
func run(ctx context.Context, cliConfig *CLIConfig) error {
	execConfig, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if validationErr := execConfig.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	if initErr := appconfig.Initialize(cliConfig.SettingsFile); initErr != nil {
		return fmt.Errorf("failed to initialize configuration: %w", initErr)
	}

	provider, err := appconfig.BuildProvider(appconfig.ProviderFlags{
		Model:    cliConfig.Model,
		Endpoint: cliConfig.Endpoint,
		APIKey:   cliConfig.APIKey,
		Dialect:  cliConfig.Dialect,
	})
	if err != nil {
		return err
	}

	settings := appconfig.GetBrowser().Snapshot()
	settings.Headless = true
	if cliConfig.Backend != "" {
		settings.Backend = cliConfig.Backend
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

	maxSteps := appconfig.GetAgent().GetMaxSteps()
	if cliConfig.MaxSteps > 0 {
		maxSteps = cliConfig.MaxSteps
	}

	// Submissions are decided by the executor from the task file's URL
	// constraints, so the interactive auto-approval list is bypassed.
	ag := agent.NewDefaultAgent(provider,
		agent.WithTab(client),
		agent.WithMaxSteps(maxSteps),
		agent.WithApprovalTimeout(appconfig.GetAgent().GetApprovalTimeout()),
		agent.WithAutoApproval(func(string) bool { return false }),
	)

	executor, err := headless.NewExecutor(ag, execConfig, headless.WithNavigator(client))
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	log.Printf("Starting headless execution...")
	log.Printf("Task: %s", execConfig.Task)
	if execConfig.StartURL != "" {
		log.Printf("Start URL: %s", execConfig.StartURL)
	}
	log.Printf("Backend: %s", settings.Backend)

	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	log.Printf("Execution completed successfully")
	return nil
}

// loadConfig loads the task from a file or from CLI arguments. Flags given
// alongside a task file override its values.
func loadConfig(cliConfig *CLIConfig) (*headless.Config, error) {
	var config *headless.Config
	if cliConfig.ConfigFile != "" {
		loaded, err := headless.LoadConfig(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		if cliConfig.Task == "" {
			return nil, fmt.Errorf("task is required when not using a task file")
		}
		config = headless.DefaultConfig()
	}

	if cliConfig.Task != "" {
		config.Task = cliConfig.Task
	}
	if cliConfig.StartURL != "" {
		config.StartURL = cliConfig.StartURL
	}
	if len(cliConfig.AllowedURLs) > 0 {
		config.Constraints.AllowedURLs = append(config.Constraints.AllowedURLs, cliConfig.AllowedURLs...)
	}
	if cliConfig.Timeout > 0 {
		config.Constraints.Timeout = cliConfig.Timeout
	}
	if cliConfig.Verbosity != "" {
		config.Logging.Verbosity = cliConfig.Verbosity
	}

	return config, nil
}
