package exporter

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"starforge/internal/common"
	"starforge/internal/kpi"
	apperrors "starforge/pkg/errors"
)

// Workbook sheet names
const (
	sheetKPIs      = "KPI Results"
	sheetTrend     = "Monthly Trend"
	sheetProducts  = "Top Products"
	sheetCustomers = "Top Customers"
	sheetRegional  = "Regional Performance"
)

// WriteWorkbook writes kpi_report.xlsx with one sheet per report
// artifact
func (e *Exporter) WriteWorkbook(results []kpi.Result, trend []kpi.TrendPoint, products []kpi.ProductRank, customers []kpi.CustomerRank, regions []kpi.RegionRank) error {
	if err := common.EnsureDir(e.dir); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]string
	}{
		{sheetKPIs, resultRows(results)},
		{sheetTrend, trendRows(trend)},
		{sheetProducts, productRows(products)},
		{sheetCustomers, customerRows(customers)},
		{sheetRegional, regionRows(regions)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to name workbook sheet")
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to add workbook sheet")
			}
		}
		if err := fillSheet(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	path := filepath.Join(e.dir, FileWorkbook)
	if err := f.SaveAs(path); err != nil {
		return apperrors.FileError("failed to save KPI workbook", path, err)
	}
	e.log.Infof("wrote %s (%d sheets)", path, len(sheets))
	return nil
}

func fillSheet(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to address workbook cell")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to write workbook row").
				WithContext("sheet", sheet)
		}
	}
	return nil
}

func resultRows(results []kpi.Result) [][]string {
	rows := [][]string{kpiResultsHeader()}
	for _, r := range results {
		rows = append(rows, kpiResultRow(r))
	}
	return rows
}

func trendRows(trend []kpi.TrendPoint) [][]string {
	rows := [][]string{trendHeader()}
	for _, p := range trend {
		rows = append(rows, trendRow(p))
	}
	return rows
}

func productRows(products []kpi.ProductRank) [][]string {
	rows := [][]string{productsHeader()}
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return rows
}

func customerRows(customers []kpi.CustomerRank) [][]string {
	rows := [][]string{customersHeader()}
	for _, c := range customers {
		rows = append(rows, customerRow(c))
	}
	return rows
}

func regionRows(regions []kpi.RegionRank) [][]string {
	rows := [][]string{regionalHeader()}
	for _, r := range regions {
		rows = append(rows, regionRow(r))
	}
	return rows
}
