package report

import (
	"bytes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatSummary renders a per-spec results table for the console.
func FormatSummary(doc *Document) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle("Cypress Report")

	t.AppendHeader(table.Row{
		"Spec", "Tests", "Passed", "Failed", "Pending", "Skipped", "Duration",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Spec", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Pending", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	var total Counts
	if doc != nil {
		for _, root := range doc.Results {
			if root == nil {
				continue
			}
			c := CountSuite(root)
			name := root.File
			if name == "" {
				name = root.Title
			}
			t.AppendRow(table.Row{
				name, c.Tests, c.Passes, c.Failures, c.Pending, c.Skipped, formatDuration(c.Duration),
			})

			total.Tests += c.Tests
			total.Passes += c.Passes
			total.Failures += c.Failures
			total.Pending += c.Pending
			total.Skipped += c.Skipped
			total.Duration += c.Duration
		}
	}

	t.AppendFooter(table.Row{
		"Total", total.Tests, total.Passes, total.Failures, total.Pending, total.Skipped, formatDuration(total.Duration),
	})
	t.Render()

	return buf.String()
}
