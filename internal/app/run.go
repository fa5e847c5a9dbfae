// Package app orchestrates a scan: rule selection, execution, and the
// filtering layers between raw diagnostics and reported findings.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers"
	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/runner"
	"github.com/ofri-peretz/go-sec-audit/internal/baseline"
	"github.com/ofri-peretz/go-sec-audit/internal/config"
	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

// Scan audits the Go module rooted at dir with the configured rule set and
// returns findings after ignore-glob, severity-threshold and baseline
// filtering. Findings arrive sorted; repeated scans over unchanged sources
// return identical slices.
func Scan(ctx context.Context, dir string, cfg *config.Config, base *baseline.Baseline) ([]report.Finding, error) {
	specs := cfg.Apply(analyzers.Select(cfg.Include, cfg.Disable))
	if len(specs) == 0 {
		return nil, fmt.Errorf("no rules selected")
	}
	slog.Info("🔎 Scanning for security anti-patterns", "dir", dir, "rules", len(specs))

	findings, err := runner.RunSpecs(ctx, dir, specs)
	if err != nil {
		return nil, fmt.Errorf("run analyzers: %w", err)
	}
	findings = Filter(findings, dir, cfg, base)

	if len(findings) == 0 {
		slog.Info("✅ No findings", "dir", dir)
	} else {
		slog.Warn("⚠️  Findings", "dir", dir, "count", len(findings))
	}
	return findings, nil
}

// Filter applies the post-run filters in order: ignore globs, severity
// threshold, then baseline. Order matters only for the counts logged here;
// the surviving set is the same either way.
func Filter(findings []report.Finding, root string, cfg *config.Config, base *baseline.Baseline) []report.Finding {
	if len(cfg.Ignore) > 0 {
		kept := findings[:0:0]
		ignored := 0
		for _, f := range findings {
			if ignoredPath(root, f.Position.Filename, cfg.Ignore) {
				ignored++
				continue
			}
			kept = append(kept, f)
		}
		if ignored > 0 {
			slog.Debug("Ignore patterns filtered findings", "count", ignored)
		}
		findings = kept
	}

	threshold := cfg.Threshold()
	if threshold != report.SeverityInfo {
		kept := findings[:0:0]
		for _, f := range findings {
			if f.Severity.AtLeast(threshold) {
				kept = append(kept, f)
			}
		}
		findings = kept
	}

	if base != nil {
		kept, dropped := base.Filter(findings)
		if dropped > 0 {
			slog.Info("📌 Baseline filtered known findings", "count", dropped)
		}
		findings = kept
	}
	return findings
}

// AuditTree scans every Go module found in root's immediate subdirectories
// (the clone-github-org layout) and returns findings per repository. A repo
// that fails to scan is logged and skipped; the audit continues.
func AuditTree(ctx context.Context, root string, cfg *config.Config) (map[string][]report.Finding, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read audit root: %w", err)
	}

	results := map[string][]report.Finding{}
	scanned, total := 0, 0
	ruleCounts := map[string]int{}
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		repoDir := filepath.Join(root, ent.Name())
		if _, err := os.Stat(filepath.Join(repoDir, "go.mod")); err != nil {
			slog.Info("⚪ Not a Go module; skipping", "repo", ent.Name())
			continue
		}
		findings, err := Scan(ctx, repoDir, cfg, nil)
		if err != nil {
			slog.Error("❌ Scan failed", "repo", ent.Name(), "error", err)
			continue
		}
		scanned++
		total += len(findings)
		for _, f := range findings {
			ruleCounts[f.RuleID]++
		}
		results[ent.Name()] = findings
	}
	slog.Info("📊 Audit summary", "repos_scanned", scanned, "total_findings", total, "findings_by_rule", ruleCounts)
	return results, nil
}

func ignoredPath(root, file string, globs []string) bool {
	if file == "" {
		return false
	}
	path := filepath.ToSlash(file)
	if rel, err := filepath.Rel(root, file); err == nil && !filepath.IsAbs(rel) {
		path = filepath.ToSlash(rel)
	}
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}
