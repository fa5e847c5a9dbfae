package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagFormat   string
	flagOutput   string
	flagFailOn   string
	flagInclude  string
	flagDisable  string
	flagStrict   bool
	flagBaseline string
	flagNoColor  bool
	flagDebug    bool

	vp = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "go-sec-audit [dir]",
	Short: "Static security audit for Go source trees",
	Long: `go-sec-audit scans Go packages for security anti-patterns: injection
sinks fed by untrusted input, hardcoded credentials, weak cryptography,
permissive cross-origin setups and unverified tokens.

Without a subcommand it scans the given directory (default ".") and prints
findings. Configuration is read from .gosecaudit.yaml at the scan root and
can be overridden by GOSECAUDIT_* environment variables and flags.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(flagDebug)
	},
	RunE: runScan,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagFormat, "format", "console", "output format (console|json|sarif)")
	pf.StringVarP(&flagOutput, "output", "o", "", "write the report to a file instead of stdout")
	pf.StringVar(&flagFailOn, "fail-on", "ERROR", "exit non-zero when a finding at or above this severity survives (INFO|WARNING|ERROR)")
	pf.StringVar(&flagInclude, "include", "", "comma-separated rule IDs to run exclusively")
	pf.StringVar(&flagDisable, "disable", "", "comma-separated rule IDs to skip")
	pf.BoolVar(&flagStrict, "strict", false, "report findings even when annotated safe")
	pf.StringVar(&flagBaseline, "baseline", "", "baseline file; known findings are dropped")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored console output")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")

	for _, name := range []string{"format", "output", "fail-on", "include", "disable", "strict", "baseline", "no-color", "debug"} {
		if err := vp.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(scanCmd, rulesCmd, baselineCmd)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}
