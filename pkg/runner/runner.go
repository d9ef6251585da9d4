// Package runner implements the file-level operations behind the ypbank
// command-line tools: reading a file in a known or detected format,
// converting it, and comparing two files.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/logger"
	"github.com/ssargent/ypbank/pkg/metrics"
	"github.com/ssargent/ypbank/pkg/txn"
)

// detectBytes is how much of a file Detect gets to look at.
const detectBytes = 512

var (
	// ErrBinaryToStdout is returned when binary output has no target file.
	ErrBinaryToStdout = errors.New("binary output requires an output file")
	// ErrUndetectable is returned when no input format was given and none
	// could be detected.
	ErrUndetectable = errors.New("cannot detect input format")
)

// Runner carries the settings shared by every operation. The zero value
// is usable.
type Runner struct {
	// MaxDescriptionBytes bounds binary descriptions; zero means the codec default.
	MaxDescriptionBytes int
	// Metrics, when set, instruments every codec call and comparison.
	Metrics *metrics.Metrics
}

func (r *Runner) codec(f codec.Format) (codec.Codec, error) {
	var opts []codec.Option
	if r.MaxDescriptionBytes > 0 {
		opts = append(opts, codec.WithMaxDescriptionBytes(r.MaxDescriptionBytes))
	}

	c, err := codec.New(f, opts...)
	if err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		c = r.Metrics.Wrap(c)
	}
	return c, nil
}

// ReadFile decodes path. An empty format is detected from the content and
// file name. The format actually used is returned.
func (r *Runner) ReadFile(ctx context.Context, path string, format codec.Format) ([]txn.Transaction, codec.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	log := logger.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if format == "" {
		head, err := br.Peek(detectBytes)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, "", fmt.Errorf("failed to read input %s: %w", path, err)
		}

		detected, ok := codec.Detect(path, head)
		if !ok {
			return nil, "", fmt.Errorf("%s: %w", path, ErrUndetectable)
		}
		format = detected
		log.Debug().Str("file", path).Str("format", format.String()).Msg("detected input format")
	}

	c, err := r.codec(format)
	if err != nil {
		return nil, "", err
	}

	txs, err := c.Decode(br)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}

	event := log.Debug().Str("file", path).Str("format", format.String()).Int("records", len(txs))
	if len(txs) > 0 {
		event = event.Uint64("first_id", txs[0].ID).Uint64("last_id", txs[len(txs)-1].ID)
	}
	event.Msg("decoded transactions")

	return txs, format, nil
}

// ConvertRequest describes a single conversion.
type ConvertRequest struct {
	Input       string
	InputFormat codec.Format // empty to detect

	Output       string // empty for Stdout
	OutputFormat codec.Format
	Stdout       io.Writer
}

// ConvertResult reports what a conversion did.
type ConvertResult struct {
	InputFormat  codec.Format
	OutputFormat codec.Format
	Records      int
}

// Convert reads req.Input and writes it in req.OutputFormat. A file target
// is written through a temporary file in the same directory and renamed
// into place, so a failed conversion leaves no partial output behind.
func (r *Runner) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	log := logger.FromContext(ctx)

	if req.Output == "" && req.OutputFormat == codec.FormatBinary {
		return nil, ErrBinaryToStdout
	}

	out, err := r.codec(req.OutputFormat)
	if err != nil {
		return nil, err
	}

	txs, inFormat, err := r.ReadFile(ctx, req.Input, req.InputFormat)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ConvertResult{InputFormat: inFormat, OutputFormat: req.OutputFormat, Records: len(txs)}

	if req.Output == "" {
		w := req.Stdout
		if w == nil {
			w = os.Stdout
		}
		if err := out.Encode(w, txs); err != nil {
			return nil, err
		}
	} else if err := writeFileAtomic(req.Output, func(w io.Writer) error { return out.Encode(w, txs) }); err != nil {
		return nil, fmt.Errorf("%s: %w", req.Output, err)
	}

	target := req.Output
	if target == "" {
		target = "<stdout>"
	}
	log.Info().
		Str("input", req.Input).
		Str("input_format", inFormat.String()).
		Str("output", target).
		Str("output_format", req.OutputFormat.String()).
		Int("records", len(txs)).
		Msg("conversion complete")

	return result, nil
}

func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// CompareRequest names two files to compare.
type CompareRequest struct {
	FileA   string
	FormatA codec.Format // empty to detect
	FileB   string
	FormatB codec.Format // empty to detect
	Options compare.Options
}

// CompareFiles decodes both files and compares them.
func (r *Runner) CompareFiles(ctx context.Context, req CompareRequest) (*compare.Report, error) {
	log := logger.FromContext(ctx)

	a, _, err := r.ReadFile(ctx, req.FileA, req.FormatA)
	if err != nil {
		return nil, err
	}
	b, _, err := r.ReadFile(ctx, req.FileB, req.FormatB)
	if err != nil {
		return nil, err
	}

	report := compare.Compare(a, b, req.Options)
	if r.Metrics != nil {
		r.Metrics.ObserveReport(report)
	}

	log.Info().
		Int("records_a", len(a)).
		Int("records_b", len(b)).
		Int("identical", report.Identical).
		Int("differing", report.Differing).
		Int("only_in_a", report.OnlyInA).
		Int("only_in_b", report.OnlyInB).
		Bool("equal", report.Equal()).
		Msg("comparison complete")
	if n := len(report.DuplicatesA) + len(report.DuplicatesB); n > 0 {
		log.Warn().Int("duplicates", n).Msg("duplicate transaction ids, first occurrence compared")
	}

	return report, nil
}
