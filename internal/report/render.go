package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// RenderCSV writes the report as a sectioned CSV: summary totals,
// then income shares, then expense shares. Amounts use the backend's
// plain decimal form.
func RenderCSV(v View) []byte {
	var b strings.Builder
	b.WriteString("MoneyMate - Laporan Bulanan\n")
	fmt.Fprintf(&b, "Bulan: %s\n\n", v.Month)

	b.WriteString("RINGKASAN\n")
	b.WriteString("Kategori,Jumlah\n")
	fmt.Fprintf(&b, "Total Pemasukan,%s\n", v.Report.TotalIncome.Decimal())
	fmt.Fprintf(&b, "Total Pengeluaran,%s\n", v.Report.TotalExpense.Decimal())
	fmt.Fprintf(&b, "Saldo,%s\n\n", v.Report.Balance.Decimal())

	b.WriteString("PEMASUKAN PER KATEGORI\n")
	b.WriteString("Kategori,Jumlah,Persentase\n")
	for _, s := range v.IncomeShares {
		fmt.Fprintf(&b, "%s,%s,%s%%\n", s.DisplayName, s.Amount.Decimal(), s.Percentage)
	}

	b.WriteString("\nPENGELUARAN PER KATEGORI\n")
	b.WriteString("Kategori,Jumlah,Persentase\n")
	for _, s := range v.ExpenseShares {
		fmt.Fprintf(&b, "%s,%s,%s%%\n", s.DisplayName, s.Amount.Decimal(), s.Percentage)
	}

	b.WriteString("\nRINGKASAN DETAIL\n")
	b.WriteString(v.Summary() + "\n")
	return []byte(b.String())
}

const textRuleWidth = 60

// RenderText writes the report as a fixed-width plain text document.
func RenderText(v View, now time.Time) []byte {
	rule := strings.Repeat("=", textRuleWidth)
	thin := strings.Repeat("-", textRuleWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("MoneyMate - Laporan Bulanan\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Bulan: %s\n", v.Month)
	fmt.Fprintf(&b, "Tanggal Export: %s\n", now.Format("02/01/2006, 15.04.05"))
	b.WriteString(rule + "\n\n")

	b.WriteString("RINGKASAN\n")
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "Total Pemasukan    : Rp %s\n", v.Report.TotalIncome.FormatRupiah())
	fmt.Fprintf(&b, "Total Pengeluaran  : Rp %s\n", v.Report.TotalExpense.FormatRupiah())
	fmt.Fprintf(&b, "Saldo              : Rp %s\n\n", v.Report.Balance.FormatRupiah())

	b.WriteString("PEMASUKAN PER KATEGORI\n")
	b.WriteString(thin + "\n")
	for _, s := range v.IncomeShares {
		fmt.Fprintf(&b, "%-25s : Rp %15s (%s%%)\n", s.DisplayName, s.Amount.FormatRupiah(), s.Percentage)
	}

	b.WriteString("\nPENGELUARAN PER KATEGORI\n")
	b.WriteString(thin + "\n")
	for _, s := range v.ExpenseShares {
		fmt.Fprintf(&b, "%-25s : Rp %15s (%s%%)\n", s.DisplayName, s.Amount.FormatRupiah(), s.Percentage)
	}

	b.WriteString("\n\nRINGKASAN DETAIL\n")
	b.WriteString(thin + "\n")
	b.WriteString(v.Summary())
	b.WriteString("\n\n" + rule + "\n")
	b.WriteString("Generated by MoneyMate - Personal Finance Manager\n")
	b.WriteString(rule + "\n")
	return []byte(b.String())
}

// RenderXLSX writes the report as a single-sheet workbook mirroring
// the CSV sections.
func RenderXLSX(v View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Laporan"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	row := 1
	set := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	writeRow := func(vals ...any) {
		for i, val := range vals {
			set(i+1, val)
		}
		row++
	}

	writeRow("MoneyMate - Laporan Bulanan")
	writeRow("Bulan", v.Month)
	row++
	writeRow("RINGKASAN")
	writeRow("Kategori", "Jumlah")
	writeRow("Total Pemasukan", v.Report.TotalIncome.Float())
	writeRow("Total Pengeluaran", v.Report.TotalExpense.Float())
	writeRow("Saldo", v.Report.Balance.Float())
	row++
	writeRow("PEMASUKAN PER KATEGORI")
	writeRow("Kategori", "Jumlah", "Persentase")
	for _, s := range v.IncomeShares {
		writeRow(s.DisplayName, s.Amount.Float(), s.Percentage+"%")
	}
	row++
	writeRow("PENGELUARAN PER KATEGORI")
	writeRow("Kategori", "Jumlah", "Persentase")
	for _, s := range v.ExpenseShares {
		writeRow(s.DisplayName, s.Amount.Float(), s.Percentage+"%")
	}
	row++
	writeRow("RINGKASAN DETAIL")
	writeRow(v.Summary())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
