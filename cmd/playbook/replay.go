package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/dugout/internal/replay"
	"github.com/okian/dugout/pkg/logger"
)

func newReplayCmd() *cobra.Command {
	cfg := replay.Config{}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Send generated situations to a running server and verify the answers",
		Long: `Generates seeded random game situations, posts them to /recommendations
concurrently and checks every response against the local engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := replay.Run(cmd.Context(), &cfg, logger.Get().Named("replay"))
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.BaseURL, "url", replay.DefaultBaseURL, "base URL of the service")
	fl.IntVarP(&cfg.Count, "count", "n", replay.DefaultCount, "number of situations to send")
	fl.Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	fl.IntVarP(&cfg.Concurrency, "concurrency", "c", replay.DefaultConcurrency, "requests in flight")
	fl.DurationVar(&cfg.Timeout, "timeout", replay.DefaultTimeout, "HTTP request timeout")
	fl.BoolVar(&cfg.Save, "save", false, "record every plan in the server's history")
	fl.StringVar(&cfg.OutputFile, "dump", "", "write the generated situations to this JSON file")
	fl.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every mismatch")
	return cmd
}
