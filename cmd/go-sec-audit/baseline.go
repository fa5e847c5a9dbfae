package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ofri-peretz/go-sec-audit/internal/app"
	"github.com/ofri-peretz/go-sec-audit/internal/baseline"
	"github.com/ofri-peretz/go-sec-audit/internal/config"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the findings baseline",
}

var baselineWriteCmd = &cobra.Command{
	Use:   "write [dir]",
	Short: "Snapshot current findings so later scans only report new ones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		cfg, err := config.Load(vp, dir)
		if err != nil {
			return err
		}

		// the baseline snapshots everything the scan would report today
		findings, err := app.Scan(cmd.Context(), dir, cfg, nil)
		if err != nil {
			return err
		}

		path := cfg.Baseline
		if path == "" {
			path = filepath.Join(dir, baseline.DefaultFile)
		}
		if err := baseline.New(findings).Save(path); err != nil {
			return err
		}
		slog.Info("📌 Baseline written", "path", path, "fingerprints", len(findings))
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineWriteCmd)
}
