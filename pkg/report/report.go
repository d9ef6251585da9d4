// Package report renders comparison results for people and for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ssargent/ypbank/pkg/compare"
)

// Format selects the rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// maxCellRunes bounds field values in the table view.
const maxCellRunes = 50

// ParseFormat accepts "table" or "json" in any letter case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want table or json)", s)
}

// Summary is a comparison result together with where it came from.
type Summary struct {
	RunID  string          `json:"run_id,omitempty"`
	FileA  string          `json:"file_a"`
	FileB  string          `json:"file_b"`
	Equal  bool            `json:"equal"`
	Report *compare.Report `json:"report"`
}

// NewSummary fills Equal from the report.
func NewSummary(runID, fileA, fileB string, r *compare.Report) Summary {
	return Summary{RunID: runID, FileA: fileA, FileB: fileB, Equal: r.Equal(), Report: r}
}

// Write renders s to w in format f.
func Write(w io.Writer, f Format, s Summary) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatTable, "":
		return writeTable(w, s)
	}
	return fmt.Errorf("unknown report format %q", f)
}

func writeJSON(w io.Writer, s Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

func writeTable(out io.Writer, s Summary) error {
	r := s.Report

	if r.Equal() {
		fmt.Fprintf(out, "The transaction records in '%s' and '%s' are identical.\n", s.FileA, s.FileB)
	} else {
		mismatches := r.Differing + r.OnlyInA + r.OnlyInB
		fmt.Fprintf(out, "Found %d mismatches across %d transactions in '%s' and '%s'.\n",
			mismatches, r.Total, s.FileA, s.FileB)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tMATCHED\tIDENTICAL\tDIFFERING\tONLY_IN_A\tONLY_IN_B")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\n",
		r.Total, r.Matched, r.Identical, r.Differing, r.OnlyInA, r.OnlyInB)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.DuplicatesA) > 0 {
		fmt.Fprintf(out, "\nDuplicate ids in '%s' (first occurrence compared): %s\n", s.FileA, formatIDs(r.DuplicatesA))
	}
	if len(r.DuplicatesB) > 0 {
		fmt.Fprintf(out, "\nDuplicate ids in '%s' (first occurrence compared): %s\n", s.FileB, formatIDs(r.DuplicatesB))
	}

	if len(r.Entries) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLASS\tFIELD\tA\tB")
	for _, e := range r.Entries {
		if len(e.Diffs) == 0 {
			fmt.Fprintf(w, "%d\t%s\t\t\t\n", e.ID, e.Class)
			continue
		}
		for i, d := range e.Diffs {
			id, class := "", ""
			if i == 0 {
				id, class = fmt.Sprint(e.ID), e.Class.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, class, d.Field, truncate(d.A), truncate(d.B))
		}
	}
	return w.Flush()
}

func formatIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// truncate shortens s for a table cell and quotes values with surrounding
// or embedded whitespace that would otherwise be invisible.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > maxCellRunes {
		s = string(runes[:maxCellRunes-3]) + "..."
	}
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "\t\n\r") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
