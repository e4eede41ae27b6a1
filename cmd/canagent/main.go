package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/config"
	"github.com/openvehicle/canagent/internal/ports"
	"github.com/openvehicle/canagent/internal/supervisor"

	canagent "github.com/openvehicle/canagent"
)

func main() {
	var cfgPath string
	var simulate, dryRun, decodeLive bool

	root := &cobra.Command{
		Use:   "canagent",
		Short: "Capture CAN bus traffic and ship it to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := resolveMode(simulate, dryRun, decodeLive)
			if err != nil {
				return err
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := log.NewConsole(cfg.Logging.Level)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("canagent starting", ports.String("mode", mode.String()))
			return canagent.Run(ctx, cfg, mode, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to YAML configuration file (required)")
	root.Flags().BoolVar(&simulate, "simulate", false, "run against the built-in signal simulator instead of hardware")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "read from hardware but discard frames instead of batching them")
	root.Flags().BoolVar(&decodeLive, "decode-live", false, "read from hardware and print decoded signals instead of batching them")
	_ = root.MarkFlagRequired("config")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "canagent: %v\n", err)
		os.Exit(1)
	}
}

func resolveMode(simulate, dryRun, decodeLive bool) (supervisor.Mode, error) {
	count := 0
	for _, b := range []bool{simulate, dryRun, decodeLive} {
		if b {
			count++
		}
	}
	if count > 1 {
		return 0, fmt.Errorf("--simulate, --dry-run, and --decode-live are mutually exclusive")
	}
	switch {
	case simulate:
		return supervisor.ModeSimulate, nil
	case dryRun:
		return supervisor.ModeDryRun, nil
	case decodeLive:
		return supervisor.ModeDecodeLive, nil
	default:
		return supervisor.ModeNormal, nil
	}
}
