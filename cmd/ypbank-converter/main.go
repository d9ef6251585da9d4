package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/runner"
)

// options holds the converter flags
type options struct {
	input        string
	inputFormat  codec.Format
	output       string
	outputFormat codec.Format
	verbose      bool

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

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "ypbank-converter",
		Short: "Convert YPBank transaction files between CSV, text and binary",
		Long: `Reads a file of bank transactions and writes it in another format.

Supported formats:
  csv  comma-separated with a TX_ID,DATE,AMOUNT,CURRENCY,STATUS,DESCRIPTION header
  txt  KEY: VALUE blocks separated by blank lines
  bin  YPBN binary records

Examples:
  ypbank-converter --input records.csv --output-format txt
  ypbank-converter --input records.txt --output-format bin --output records.bin`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd, opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.input, "input", "i", "", "input file")
	rootCmd.Flags().VarP(runner.NewFormatValue(&opts.inputFormat), "input-format", "f", "input format (csv, txt or bin); detected when omitted")
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout; required for bin)")
	rootCmd.Flags().VarP(runner.NewFormatValue(&opts.outputFormat), "output-format", "t", "output format (csv, txt or bin)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output-format")

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/ypbank/config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides config")
	rootCmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func convert(cmd *cobra.Command, opts options) (err error) {
	logLevel := opts.logLevel
	if logLevel == "" && opts.verbose {
		logLevel = "debug"
	}

	ctx, session, err := runner.NewSession(cmd.Context(), runner.SessionOptions{
		ConfigPath:  opts.configPath,
		LogLevel:    logLevel,
		MetricsFile: opts.metricsFile,
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, session.Close())
	}()

	session.Log.Debug().
		Str("input", opts.input).
		Str("input_format", opts.inputFormat.String()).
		Str("output_format", opts.outputFormat.String()).
		Msg("starting conversion")

	_, err = session.Runner.Convert(ctx, runner.ConvertRequest{
		Input:        opts.input,
		InputFormat:  opts.inputFormat,
		Output:       opts.output,
		OutputFormat: opts.outputFormat,
		Stdout:       cmd.OutOrStdout(),
	})
	if errors.Is(err, runner.ErrBinaryToStdout) {
		return fmt.Errorf("%w: pass --output <file>", err)
	}
	return err
}
