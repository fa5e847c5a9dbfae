package runner

import (
	"context"
	"go/build"
	"go/token"
	"go/types"
	"log/slog"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/packages"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers"
	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

// RunSpecs loads packages under dir once, runs every analyzer against each
// package, and returns findings with catalog metadata merged in, sorted so
// repeated runs over unchanged sources are identical. A failing analyzer is
// skipped for that package; the run never aborts on one rule.
func RunSpecs(ctx context.Context, dir string, specs []analyzers.Spec) ([]report.Finding, error) {
	cfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
		Dir:     dir,
		Context: ctx,
	}
	fset := token.NewFileSet()
	cfg.Fset = fset
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, err
	}
	sizes := types.SizesFor("gc", build.Default.GOARCH)
	var out []report.Finding
	for _, p := range pkgs {
		if len(p.Syntax) == 0 || p.TypesInfo == nil {
			continue
		}
		insp := inspector.New(p.Syntax)
		for _, spec := range specs {
			spec := spec
			var diags []analysis.Diagnostic
			pass := &analysis.Pass{
				Analyzer:   spec.Analyzer,
				Fset:       fset,
				Files:      p.Syntax,
				Pkg:        p.Types,
				TypesInfo:  p.TypesInfo,
				TypesSizes: sizes,
				Report:     func(d analysis.Diagnostic) { diags = append(diags, d) },
				ResultOf:   map[*analysis.Analyzer]interface{}{insppass.Analyzer: insp},
			}
			if _, err := spec.Analyzer.Run(pass); err != nil {
				slog.Debug("analyzer failed; skipping for package", "rule", spec.RuleID, "pkg", p.PkgPath, "error", err)
				continue
			}
			for _, d := range diags {
				pos := fset.Position(d.Pos)
				out = append(out, report.Finding{
					RuleID:     spec.RuleID,
					Title:      spec.Title,
					Severity:   spec.Severity,
					CWE:        spec.CWE,
					MessageID:  d.Category,
					Message:    d.Message,
					Suggestion: spec.Suggestion,
					Position: report.Position{
						Filename: pos.Filename,
						Line:     pos.Line,
						Column:   pos.Column,
					},
				})
			}
		}
	}
	report.Sort(out)
	return out, nil
}
