package kpi

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"starforge/internal/schema"
	"starforge/internal/ui"
)

// FormatValue renders a KPI value per its unit
func FormatValue(value float64, unit string) string {
	switch unit {
	case "currency":
		return "$" + humanize.CommafWithDigits(value, 2)
	case "percentage":
		return fmt.Sprintf("%.2f%%", value)
	case "count":
		return humanize.Comma(int64(value))
	default:
		return fmt.Sprintf("%.4f", value)
	}
}

func colorStatus(status string, useColor bool) string {
	if !useColor {
		return status
	}
	switch status {
	case StatusGreen:
		return color.GreenString(status)
	case StatusAmber:
		return color.YellowString(status)
	case StatusRed:
		return color.RedString(status)
	case StatusInfo:
		return color.CyanString(status)
	default:
		return status
	}
}

// RenderDashboard formats the KPI results with their supporting trend,
// product and regional breakdowns for the terminal
func RenderDashboard(results []Result, trend []TrendPoint, products []ProductRank, regions []RegionRank, useColor bool) string {
	var buf strings.Builder

	buf.WriteString("\nKPI DASHBOARD\n")
	buf.WriteString(strings.Repeat("=", 65) + "\n")

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"ID", "KPI", "Category", "Value", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range results {
		table.Append([]string{
			r.KPIID,
			r.Name,
			r.Category,
			FormatValue(r.Value, r.Unit),
			colorStatus(r.Status, useColor),
		})
	}
	table.Render()

	if len(trend) > 0 {
		buf.WriteString("\nMONTHLY REVENUE TREND (last 12 months)\n")
		buf.WriteString(strings.Repeat("-", 65) + "\n")
		recent := trend
		if len(recent) > 12 {
			recent = recent[len(recent)-12:]
		}
		var maxRevenue float64
		for _, p := range trend {
			if p.Revenue > maxRevenue {
				maxRevenue = p.Revenue
			}
		}
		for _, p := range recent {
			growth := "   N/A"
			if !schema.IsNull(p.GrowthMoM) {
				growth = fmt.Sprintf("%+.1f%%", p.GrowthMoM)
			}
			buf.WriteString(fmt.Sprintf("  %d-%02d  %-32s $%14s  %s\n",
				p.Year, p.Month,
				ui.Bar(p.Revenue, maxRevenue, 30),
				humanize.CommafWithDigits(p.Revenue, 0),
				growth))
		}
	}

	if len(products) > 0 {
		buf.WriteString("\nTOP PRODUCTS BY REVENUE\n")
		buf.WriteString(strings.Repeat("-", 65) + "\n")
		for i, p := range products {
			if i >= 5 {
				break
			}
			buf.WriteString(fmt.Sprintf("  %d. %-40s $%14s  GM %.1f%%\n",
				i+1, p.ProductName, humanize.CommafWithDigits(p.Revenue, 0), p.GrossMarginPct))
		}
	}

	if len(regions) > 0 {
		buf.WriteString("\nTOP REGIONS BY REVENUE\n")
		buf.WriteString(strings.Repeat("-", 65) + "\n")
		for i, r := range regions {
			if i >= 5 {
				break
			}
			buf.WriteString(fmt.Sprintf("  %-30s $%14s  share %.1f%%  attainment %.0f%%\n",
				r.Region, humanize.CommafWithDigits(r.Revenue, 0), r.RevenueSharePct, r.TargetAttainmentPct))
		}
	}

	buf.WriteString(strings.Repeat("=", 65) + "\n")
	return buf.String()
}
