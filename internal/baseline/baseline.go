// Package baseline snapshots known findings so existing debt does not fail
// every subsequent scan. Findings are matched by fingerprint, not position:
// line numbers shift too easily to key on.
package baseline

import (
	"crypto/sha256"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

// DefaultFile is the baseline filename written next to the config file.
const DefaultFile = ".gosecaudit-baseline.yaml"

// Baseline is a set of finding fingerprints to ignore.
type Baseline struct {
	Version      string   `yaml:"version"`
	CreatedAt    string   `yaml:"created-at"`
	Fingerprints []string `yaml:"fingerprints"`

	index map[string]struct{}
}

// New builds a baseline from the given findings, deduplicated and sorted so
// the file is deterministic.
func New(findings []report.Finding) *Baseline {
	b := &Baseline{
		Version:   "1",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		index:     map[string]struct{}{},
	}
	for _, f := range findings {
		fp := Fingerprint(f)
		if _, dup := b.index[fp]; dup {
			continue
		}
		b.index[fp] = struct{}{}
		b.Fingerprints = append(b.Fingerprints, fp)
	}
	sort.Strings(b.Fingerprints)
	return b
}

// Load reads a baseline file and builds its lookup index.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var b Baseline
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	b.index = make(map[string]struct{}, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = struct{}{}
	}
	return &b, nil
}

// Save writes the baseline to path.
func (b *Baseline) Save(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}
	return nil
}

// Known reports whether the finding's fingerprint is in the baseline.
func (b *Baseline) Known(f report.Finding) bool {
	if b == nil || b.index == nil {
		return false
	}
	_, ok := b.index[Fingerprint(f)]
	return ok
}

// Filter returns the findings not covered by the baseline and how many were
// dropped. A nil baseline keeps everything.
func (b *Baseline) Filter(findings []report.Finding) ([]report.Finding, int) {
	if b == nil {
		return findings, 0
	}
	kept := findings[:0:0]
	dropped := 0
	for _, f := range findings {
		if b.Known(f) {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	return kept, dropped
}

// Fingerprint hashes file, rule and normalized message. Line and column are
// deliberately excluded so findings survive unrelated edits above them.
func Fingerprint(f report.Finding) string {
	data := fmt.Sprintf("%s|%s|%s", f.Position.Filename, f.RuleID, normalizeMessage(f.Message))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}

var (
	quotedRe = regexp.MustCompile(`"[^"]*"`)
	numberRe = regexp.MustCompile(`\b\d+\b`)
)

// normalizeMessage swaps quoted strings and numbers for placeholders so small
// value drift (a renamed variable, a changed constant) still matches.
func normalizeMessage(msg string) string {
	msg = quotedRe.ReplaceAllString(msg, `"*"`)
	msg = numberRe.ReplaceAllString(msg, "N")
	return strings.Join(strings.Fields(msg), " ")
}
