package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"mealchat/cmd/mealchat/chat"
	"mealchat/cmd/mealchat/ui"
	"mealchat/internal/config"
	"mealchat/internal/logging"
	"mealchat/internal/mealapi"
	"mealchat/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mealchat",
	Short: "mealchat - meal ideas from the ingredients you have",
	Long: `mealchat is a terminal chat client for a meal suggestion service.

Type the ingredients you have on hand and the service replies with a meal
name and a short description.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Chat API base URL (or set MEALCHAT_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 waits indefinitely)")

	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFallback) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.API.Timeout = timeout.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newController wires the API client into a fresh session.
func newController(cfg *config.Config) (*session.Controller, *mealapi.Client) {
	client := mealapi.NewClient(cfg.API.BaseURL,
		mealapi.WithTimeout(cfg.GetTimeout()),
		mealapi.WithLogger(logging.Get(logging.CategoryAPI)),
	)
	ctrl := session.New(client, session.WithLogger(logging.Get(logging.CategorySession)))
	return ctrl, client
}

// runInteractiveChat launches the TUI.
func runInteractiveChat(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	// The TUI owns the terminal, so logs only ever go to the file.
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}

	boot := logging.Get(logging.CategoryBoot)
	for _, w := range cfg.Warnings() {
		boot.Warn("config warning", zap.Error(w))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl, client := newController(cfg)
	defer client.Close()
	boot.Info("session started",
		zap.String("session_id", ctrl.ID()),
		zap.String("endpoint", client.Endpoint()))

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	model := chat.New(chat.Config{
		Controller:  ctrl,
		Styles:      &styles,
		Placeholder: cfg.UI.Placeholder,
		Logger:      logging.Get(logging.CategoryUI),
		Context:     ctx,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
