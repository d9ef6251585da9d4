package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/report"
	"github.com/ssargent/ypbank/pkg/runner"
	"github.com/ssargent/ypbank/pkg/txn"
)

const (
	exitOK    = 0
	exitError = 1
	exitDiff  = 2
)

// errDiffer signals that --fail-on-diff is set and the files differ. The
// report has already been printed.
var errDiffer = errors.New("transaction records differ")

// options holds the comparer flags
type options struct {
	file1   string
	format1 codec.Format
	file2   string
	format2 codec.Format

	verbose           bool
	ignoreDescription bool
	ignoreStatus      bool
	ignoreFields      []string
	reportFormat      string
	failOnDiff        bool

	configPath  string
	logLevel    string
	metricsFile string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errDiffer):
		return exitDiff
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "ypbank-comparer",
		Short: "Compare two YPBank transaction files",
		Long: `Matches the transactions of two files by TX_ID and reports which are
identical, which differ, and which appear in only one file. The files may be
in different formats.

Exit status is 0 on success, 1 when a file cannot be read or parsed, and 2
when --fail-on-diff is set and the files differ.

Examples:
  ypbank-comparer --file1 records.csv --format1 csv --file2 records.bin --format2 bin
  ypbank-comparer --file1 a.txt --file2 b.txt --ignore-status --verbose
  ypbank-comparer --file1 a.csv --file2 b.csv --report-format json --fail-on-diff`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compareFiles(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.file1, "file1", "", "first file")
	flags.Var(runner.NewFormatValue(&opts.format1), "format1", "format of the first file (csv, txt or bin); detected when omitted")
	flags.StringVar(&opts.file2, "file2", "", "second file")
	flags.Var(runner.NewFormatValue(&opts.format2), "format2", "format of the second file (csv, txt or bin); detected when omitted")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "list every mismatching transaction and field")
	flags.BoolVar(&opts.ignoreDescription, "ignore-description", false, "do not compare descriptions")
	flags.BoolVar(&opts.ignoreStatus, "ignore-status", false, "do not compare statuses")
	flags.StringSliceVar(&opts.ignoreFields, "ignore-field", nil, "do not compare this field (date, amount, currency, description, status); repeatable")
	flags.StringVarP(&opts.reportFormat, "report-format", "o", "", "report format (table or json)")
	flags.BoolVar(&opts.failOnDiff, "fail-on-diff", false, "exit with status 2 when the files differ")
	_ = rootCmd.MarkFlagRequired("file1")
	_ = rootCmd.MarkFlagRequired("file2")

	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/ypbank/config.yaml if present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overrides config")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return rootCmd
}

func compareFiles(cmd *cobra.Command, opts options) (err error) {
	ctx, session, err := runner.NewSession(cmd.Context(), runner.SessionOptions{
		ConfigPath:  opts.configPath,
		LogLevel:    opts.logLevel,
		MetricsFile: opts.metricsFile,
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, session.Close())
	}()

	cfg := session.Config
	flags := cmd.Flags()

	compareOpts := compare.Options{
		IgnoreDescription: cfg.Compare.IgnoreDescription,
		IgnoreStatus:      cfg.Compare.IgnoreStatus,
		Verbose:           opts.verbose,
	}
	if flags.Changed("ignore-description") {
		compareOpts.IgnoreDescription = opts.ignoreDescription
	}
	if flags.Changed("ignore-status") {
		compareOpts.IgnoreStatus = opts.ignoreStatus
	}

	ignoreFields := cfg.Compare.IgnoreFields
	if flags.Changed("ignore-field") {
		ignoreFields = opts.ignoreFields
	}
	for _, name := range ignoreFields {
		field, err := txn.ParseField(name)
		if err != nil {
			return err
		}
		compareOpts.IgnoreFields = append(compareOpts.IgnoreFields, field)
	}

	formatName := cfg.Report.Format
	if opts.reportFormat != "" {
		formatName = opts.reportFormat
	}
	reportFormat, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	session.Log.Debug().
		Bool("ignore_description", compareOpts.IgnoreDescription).
		Bool("ignore_status", compareOpts.IgnoreStatus).
		Strs("ignore_fields", ignoreFields).
		Msg("starting comparison")

	result, err := session.Runner.CompareFiles(ctx, runner.CompareRequest{
		FileA:   opts.file1,
		FormatA: opts.format1,
		FileB:   opts.file2,
		FormatB: opts.format2,
		Options: compareOpts,
	})
	if err != nil {
		return err
	}

	summary := report.NewSummary(session.RunID, opts.file1, opts.file2, result)
	if err := report.Write(cmd.OutOrStdout(), reportFormat, summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.failOnDiff && !result.Equal() {
		return errDiffer
	}
	return nil
}
