package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mealchat/internal/logging"
	"mealchat/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errFallback marks an ask run that ended with the apology message. The
// message has already been printed, so main only sets the exit code.
var errFallback = errors.New("chat request failed")

// askCmd runs a single submission cycle without the TUI
var askCmd = &cobra.Command{
	Use:   "ask [ingredients...]",
	Short: "Ask for one meal suggestion and print it",
	Long: `Sends the given ingredients to the chat API and prints the reply.

Exits with status 1 if the request failed.

Example:
  mealchat ask chicken, rice, broccoli`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// runAsk executes one Exchange and prints the bot message.
func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newStderrLogger(verbose)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)
	for _, w := range cfg.Warnings() {
		logging.Get(logging.CategoryBoot).Warn("config warning", zap.Error(w))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ctrl, client := newController(cfg)
	defer client.Close()

	input := joinArgs(args)
	exchangeErr := ctrl.Exchange(ctx, input)
	if errors.Is(exchangeErr, session.ErrEmptyInput) {
		return fmt.Errorf("no ingredients given")
	}

	state := ctrl.Snapshot()
	if n := len(state.Messages); n > 0 && state.Messages[n-1].Sender == session.SenderBot {
		fmt.Fprintln(cmd.OutOrStdout(), state.Messages[n-1].Text)
	}
	if exchangeErr != nil {
		return errFallback
	}
	return nil
}

// newStderrLogger builds the ask logger: warn and above unless verbose.
func newStderrLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
