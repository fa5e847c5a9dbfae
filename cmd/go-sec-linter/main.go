// go-sec-linter is the bare multichecker over the full rule catalog, usable
// directly or through go vet -vettool. Rule options are the analyzers' flags;
// config-file handling lives in the go-sec-audit CLI.
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers"
)

func main() {
	var all []*analysis.Analyzer
	for _, spec := range analyzers.All() {
		all = append(all, spec.Analyzer)
	}
	multichecker.Main(all...)
}
