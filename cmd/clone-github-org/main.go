// clone-github-org clones every repository of a GitHub organization and runs
// the security audit over each Go module found, logging per-repo summaries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ofri-peretz/go-sec-audit/internal/app"
	"github.com/ofri-peretz/go-sec-audit/internal/config"
	"github.com/ofri-peretz/go-sec-audit/internal/githubclient"
	"github.com/ofri-peretz/go-sec-audit/internal/gitutil"
)

type options struct {
	Org       string
	DestDir   string
	SkipClone bool
	SkipAudit bool
	OnlyGo    bool
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clone-github-org", flag.ExitOnError)
	org := fs.String("org", "", "GitHub organization to clone")
	dest := fs.String("dest", "sources", "destination directory for repositories")
	skipClone := fs.Bool("skip-clone", false, "skip cloning/updating; audit existing checkouts")
	skipAudit := fs.Bool("skip-audit", false, "only clone; skip the audit pass")
	onlyGo := fs.Bool("only-go", true, "clone only repositories GitHub classifies as Go")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := options{Org: *org, DestDir: *dest, SkipClone: *skipClone, SkipAudit: *skipAudit, OnlyGo: *onlyGo}
	if opts.Org == "" {
		return errors.New("org must not be empty")
	}
	if opts.DestDir == "" {
		return errors.New("dest must not be empty")
	}
	if err := os.MkdirAll(opts.DestDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if !opts.SkipClone {
		if err := cloneOrg(ctx, opts); err != nil {
			return err
		}
	} else {
		slog.Info("⏭️  Skipping clone/update; assuming sources exist", "dest", opts.DestDir)
	}

	if opts.SkipAudit {
		return nil
	}
	cfg, err := config.Load(viper.New(), opts.DestDir)
	if err != nil {
		return err
	}
	_, err = app.AuditTree(ctx, opts.DestDir, cfg)
	return err
}

func cloneOrg(ctx context.Context, opts options) error {
	gh := githubclient.New(os.Getenv("GITHUB_TOKEN"))
	repos, err := gh.ListOrgRepos(ctx, opts.Org)
	if err != nil {
		return fmt.Errorf("list org repos: %w", err)
	}
	slog.Info("🔍 Found repositories", "count", len(repos), "org", opts.Org)
	if opts.OnlyGo {
		repos = githubclient.OnlyGo(repos)
		slog.Info("🐹 Keeping Go repositories", "count", len(repos))
	}

	var cloned, updated, failed, skipped int
	for _, r := range repos {
		if r.Archived {
			slog.Debug("Skipping archived repo", "repo", r.Name)
			skipped++
			continue
		}
		url := r.SSHURL
		if url == "" {
			url = r.CloneURL
		}
		if url == "" {
			slog.Warn("⚠️  No clone URL available; skipping", "repo", r.Name)
			skipped++
			continue
		}

		repoDir := filepath.Join(opts.DestDir, r.Name)
		started := time.Now()
		if _, err := os.Stat(repoDir); err == nil {
			slog.Info("🔄 Updating repo", "repo", r.Name, "branch", r.DefaultBranch)
			if err := gitutil.FetchAndCheckoutLatest(ctx, repoDir, r.DefaultBranch, 1, 30*time.Second); err != nil {
				slog.Error("❌ Update failed", "repo", r.Name, "error", err)
				failed++
				continue
			}
			slog.Info("✅ Updated repo", "repo", r.Name, "elapsed", time.Since(started).Truncate(time.Millisecond).String())
			updated++
			continue
		}

		slog.Info("⬇️  Cloning repo", "repo", r.Name, "url", url, "branch", r.DefaultBranch)
		if err := gitutil.ShallowClone(ctx, url, repoDir, r.DefaultBranch, 1, 60*time.Second); err != nil {
			slog.Error("❌ Clone failed", "repo", r.Name, "error", err)
			failed++
			continue
		}
		slog.Info("✅ Cloned repo", "repo", r.Name, "elapsed", time.Since(started).Truncate(time.Millisecond).String())
		cloned++
	}
	slog.Info("📦 Clone summary", "cloned", cloned, "updated", updated, "failed", failed, "skipped", skipped)
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("error: %v", err)
	}
}
