// Command playbook runs the play-calling engine from the command line and
// replays generated situations against a running server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/okian/dugout/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "playbook",
		Short:        "Baseball play-calling recommendations",
		Long:         "Recommends pitch calls, defensive alignment, catcher plans and offensive signs for a game situation.",
		SilenceUsage: true,
	}
	var level string
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		// Plans go to stdout; logs stay on stderr.
		if err := logger.InitWithWriter(zapcore.Lock(os.Stderr), "console"); err != nil {
			return err
		}
		return logger.SetLevelString(level)
	}

	root.AddCommand(newRecommendCmd(), newReplayCmd())
	return root
}
