package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"voice-translate-go/internal/aggregator"
	"voice-translate-go/internal/types"
)

// RenderSummary formats the end-of-batch console report.
func RenderSummary(s types.Summary, logPath string) string {
	var b strings.Builder
	b.WriteString("\nBatch Processing Summary:\n")

	attempted, recognized := aggregator.ChunkStats(s)
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendRows([]table.Row{
		{"Total files processed", s.Total},
		{"Successful", s.Succeeded},
		{"Failed", s.Failed},
		{"Chunks recognized", fmt.Sprintf("%d / %d", recognized, attempted)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	b.WriteString(tw.Render())
	b.WriteString("\n")

	if failed := s.FailedOutcomes(); len(failed) > 0 {
		ft := table.NewWriter()
		ft.SetStyle(table.StyleRounded)
		ft.AppendHeader(table.Row{"Failed file", "Reason"})
		for _, o := range failed {
			ft.AppendRow(table.Row{filepath.Base(o.Source.Path), o.Error()})
		}
		b.WriteString(ft.Render())
		b.WriteString("\n")
	}

	if logPath != "" {
		fmt.Fprintf(&b, "Check %s for detailed processing information\n", logPath)
	}
	return b.String()
}
