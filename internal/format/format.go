// Package format renders score reports and confusion tables.
package format

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/okian/dscore/internal/domain/types"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps "ascii" or "markdown" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return ASCII, fmt.Errorf("unknown table format %q", s)
	}
}

// reportLabels names the metrics of a Row in Values order.
var reportLabels = []string{
	"DER",
	"B-cubed precision",
	"B-cubed recall",
	"B-cubed F1",
	"GKT(ref, sys)",
	"GKT(sys, ref)",
	"H(ref|sys)",
	"MI",
	"NMI",
}

// Report writes the metrics of row as a two-column table with values
// rounded to two decimals.
func Report(w io.Writer, row types.Row, m Mode) error {
	t := newWriter(m)
	t.AppendHeader(table.Row{"Metric", "Value"})
	for i, v := range row.Values() {
		t.AppendRow(table.Row{reportLabels[i], fmt.Sprintf("%.2f", v)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return render(w, t, m)
}

// Confusion writes c with reference classes as rows and system classes as
// columns. Normalized tables are rounded to two decimals.
func Confusion(w io.Writer, c types.Confusion, m Mode) error {
	t := newWriter(m)

	header := make(table.Row, 0, len(c.SysClasses)+1)
	header = append(header, "")
	for _, s := range c.SysClasses {
		header = append(header, s)
	}
	t.AppendHeader(header)

	cell := "%g"
	if c.Normalized {
		cell = "%.2f"
	}
	for i, ref := range c.RefClasses {
		row := make(table.Row, 0, len(c.SysClasses)+1)
		row = append(row, ref)
		for _, v := range c.Counts[i] {
			row = append(row, fmt.Sprintf(cell, v))
		}
		t.AppendRow(row)
	}

	cfgs := make([]table.ColumnConfig, len(c.SysClasses))
	for i := range cfgs {
		cfgs[i] = table.ColumnConfig{Number: i + 2, Align: text.AlignRight}
	}
	t.SetColumnConfigs(cfgs)
	return render(w, t, m)
}

func newWriter(m Mode) table.Writer {
	t := table.NewWriter()
	if m == ASCII {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func render(w io.Writer, t table.Writer, m Mode) error {
	var out string
	switch m {
	case Markdown:
		out = t.RenderMarkdown()
	default:
		out = t.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
