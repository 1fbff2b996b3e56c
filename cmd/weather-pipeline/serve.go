// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weather-pipeline/internal/monitor"
	"github.com/pdiddy/weather-pipeline/internal/pipeline"
	"github.com/pdiddy/weather-pipeline/internal/sched"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring server with scheduled pipeline runs",
	Long: `Serve starts the monitoring HTTP server and an interval scheduler.
The server exposes run status, manual triggers, and the persisted dataset;
the scheduler executes the pipeline on the configured interval, skipping
ticks that arrive while a run is still in progress.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default from config)")
	serveCmd.Flags().Bool("no-schedule", false, "disable the interval scheduler")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}
	noSchedule, _ := cmd.Flags().GetBool("no-schedule")

	orch := pipeline.New(*cfg, os.Stdout)
	server := monitor.New(*cfg, orch, os.Stdout)

	if !noSchedule {
		scheduler := sched.New(orch, cfg.Schedule.Interval, os.Stdout)
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()
		fmt.Printf("scheduler started (every %s)\n", cfg.Schedule.Interval)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.Server.Port)
	}()
	fmt.Printf("monitoring server listening on :%s\n", cfg.Server.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("shutting down")
		return server.Shutdown()
	}
}
