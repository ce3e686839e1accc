// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cultivar/internal/logging"
	"github.com/tomtom215/cultivar/internal/supervisor"
)

func newScheduleCmd(a *app) *cobra.Command {
	flags := &runFlags{noProgress: true}
	var (
		interval    string
		metricsAddr string
		noRunOnBoot bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline periodically under supervision",
		Long: `Run the pipeline every schedule.interval until interrupted. Failed runs
are logged and retried on the next tick; after schedule.failure_threshold
consecutive failures the scheduler is restarted with backoff.

SIGHUP triggers an immediate run. With --metrics-addr, /metrics serves the
Prometheus registry and /healthz the latest run status.

Example:
  cultivar schedule -t sales.duckdb --interval 6h --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(a)
			if interval != "" {
				d, err := parseInterval(interval)
				if err != nil {
					return err
				}
				a.cfg.Schedule.Interval = d
			}
			if metricsAddr != "" {
				a.cfg.Metrics.Addr = metricsAddr
			}
			if noRunOnBoot {
				a.cfg.Schedule.RunOnStart = false
			}
			if err := a.validate(); err != nil {
				return err
			}
			if a.cfg.Input.TransactionsPath == "" {
				return fmt.Errorf("no transactions file: pass --transactions or set input.transactions_path")
			}

			p, cleanup, err := a.newPipeline(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			logger := logging.Logger()
			sched, err := supervisor.NewScheduler(a.cfg, p, logging.NewSlogLogger("supervisor"), logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(sigCh)

			errCh := sched.ServeBackground(ctx)
			logger.Info().
				Dur("interval", a.cfg.Schedule.Interval).
				Str("metrics_addr", a.cfg.Metrics.Addr).
				Msg("Scheduler started")

			for {
				select {
				case sig := <-sigCh:
					if sig == syscall.SIGHUP {
						sched.Pipeline.Trigger()
						continue
					}
					logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
					cancel()
					return waitForShutdown(sched, errCh)
				case err := <-errCh:
					if err != nil && !errors.Is(err, context.Canceled) {
						return fmt.Errorf("supervisor stopped: %w", err)
					}
					return nil
				}
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&interval, "interval", "",
		"time between runs (e.g. 6h, 1d); default from schedule.interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve /metrics and /healthz on this address")
	cmd.Flags().BoolVar(&noRunOnBoot, "no-run-on-start", false,
		"wait for the first tick instead of running immediately")
	return cmd
}

// waitForShutdown drains the tree and reports services that missed the
// shutdown timeout.
func waitForShutdown(sched *supervisor.Scheduler, errCh <-chan error) error {
	err := <-errCh
	if report, rerr := sched.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within the shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Scheduler stopped")
	return nil
}
