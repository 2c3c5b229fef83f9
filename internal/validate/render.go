package validate

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// RenderSummary formats the report for the terminal: headline counts,
// then failing checks grouped by severity, then the passing checks.
func RenderSummary(rep *Report, useColor bool) string {
	var buf strings.Builder

	errs := rep.Errors()
	warns := rep.Warnings()
	passed := rep.Passed()

	buf.WriteString("\nDATA QUALITY VALIDATION REPORT\n")
	buf.WriteString(strings.Repeat("=", 65) + "\n")
	buf.WriteString(fmt.Sprintf("  Total checks : %d\n", len(rep.Results)))
	buf.WriteString(fmt.Sprintf("  Passed       : %d\n", len(passed)))
	buf.WriteString(fmt.Sprintf("  Errors       : %d\n", len(errs)))
	buf.WriteString(fmt.Sprintf("  Warnings     : %d\n", len(warns)))
	buf.WriteString(strings.Repeat("=", 65) + "\n")

	if len(errs) > 0 || len(warns) > 0 {
		buf.WriteString("\nFAILED CHECKS\n")
		table := tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Table", "Check", "Severity", "Rows", "Message"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, res := range append(errs, warns...) {
			sev := res.Severity
			if useColor {
				switch res.Severity {
				case SeverityError:
					sev = color.RedString(res.Severity)
				case SeverityWarning:
					sev = color.YellowString(res.Severity)
				}
			}
			table.Append([]string{
				res.Table,
				res.CheckName,
				sev,
				fmt.Sprintf("%d", res.RowCount),
				res.Message,
			})
		}
		table.Render()
	}

	if len(passed) > 0 {
		buf.WriteString("\nPASSED CHECKS\n")
		for _, res := range passed {
			name := fmt.Sprintf("  [%s] %s\n", res.Table, res.CheckName)
			if useColor {
				name = color.GreenString(name)
			}
			buf.WriteString(name)
		}
	}

	buf.WriteString(strings.Repeat("=", 65) + "\n")
	return buf.String()
}
