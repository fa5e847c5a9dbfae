package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ofri-peretz/go-sec-audit/internal/app"
	"github.com/ofri-peretz/go-sec-audit/internal/baseline"
	"github.com/ofri-peretz/go-sec-audit/internal/config"
	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a directory tree and report findings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := config.Load(vp, dir)
	if err != nil {
		return err
	}

	var base *baseline.Baseline
	if cfg.Baseline != "" {
		base, err = baseline.Load(cfg.Baseline)
		if err != nil {
			return fmt.Errorf("load baseline: %w", err)
		}
	}

	findings, err := app.Scan(cmd.Context(), dir, cfg, base)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	if err := writeReport(out, cfg, findings); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if report.MaxSeverity(findings).AtLeast(cfg.FailSeverity()) && len(findings) > 0 {
		os.Exit(1)
	}
	return nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

func writeReport(w io.Writer, cfg *config.Config, findings []report.Finding) error {
	switch cfg.Format {
	case "json":
		return report.WriteJSON(w, findings)
	case "sarif":
		return report.WriteSARIF(w, findings)
	default:
		color := !cfg.NoColor && cfg.Output == "" && isatty.IsTerminal(os.Stdout.Fd())
		return report.ConsoleWriter{Color: color}.Write(w, findings)
	}
}
