package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// EncodeSales renders the sales report in format.
func EncodeSales(rows []SalesRow, format string) ([]byte, error) {
	if format == FormatXLSX {
		return SalesXLSX(rows)
	}
	var buf bytes.Buffer
	err := WriteSalesCSV(&buf, rows)
	return buf.Bytes(), err
}

// EncodeProducts renders the top products report in format.
func EncodeProducts(rows []ProductRow, format string) ([]byte, error) {
	if format == FormatXLSX {
		return ProductsXLSX(rows)
	}
	var buf bytes.Buffer
	err := WriteProductsCSV(&buf, rows)
	return buf.Bytes(), err
}

var (
	salesHeader    = []string{"Date", "Commandes", "Montant total", "Montant payé", "Reste à payer"}
	productsHeader = []string{"Produit", "Quantité vendue", "Chiffre d'affaires"}
)

// utf8BOM lets spreadsheet software detect the encoding of CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newCSV(w io.Writer) (*csv.Writer, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, err
	}
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	return writer, nil
}

// WriteSalesCSV writes the sales report with a closing totals row.
func WriteSalesCSV(w io.Writer, rows []SalesRow) error {
	writer, err := newCSV(w)
	if err != nil {
		return err
	}
	if err := writer.Write(salesHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.Date.FormValue(),
			strconv.Itoa(r.NombreCommandes),
			amount(r.MontantTotal),
			amount(r.MontantPaye),
			amount(r.Reste()),
		}); err != nil {
			return err
		}
	}
	t := SumSales(rows)
	if err := writer.Write([]string{"Total", strconv.Itoa(t.NombreCommandes), amount(t.MontantTotal), amount(t.MontantPaye), amount(t.Reste())}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteProductsCSV writes the top products report.
func WriteProductsCSV(w io.Writer, rows []ProductRow) error {
	writer, err := newCSV(w)
	if err != nil {
		return err
	}
	if err := writer.Write(productsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{r.Produit, strconv.Itoa(r.Quantite), amount(r.ChiffreAffaires)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SalesXLSX builds the sales report workbook.
func SalesXLSX(rows []SalesRow) ([]byte, error) {
	data := make([][]any, 0, len(rows)+1)
	for _, r := range rows {
		data = append(data, []any{
			r.Date.Time,
			r.NombreCommandes,
			r.MontantTotal.InexactFloat64(),
			r.MontantPaye.InexactFloat64(),
			r.Reste().InexactFloat64(),
		})
	}
	t := SumSales(rows)
	data = append(data, []any{"Total", t.NombreCommandes, t.MontantTotal.InexactFloat64(), t.MontantPaye.InexactFloat64(), t.Reste().InexactFloat64()})
	return workbook("Ventes", salesHeader, data, map[string]string{"A": "dd/mm/yyyy", "C": moneyFormat, "D": moneyFormat, "E": moneyFormat})
}

// ProductsXLSX builds the top products workbook.
func ProductsXLSX(rows []ProductRow) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Produit, r.Quantite, r.ChiffreAffaires.InexactFloat64()})
	}
	return workbook("Produits", productsHeader, data, map[string]string{"C": moneyFormat})
}

const moneyFormat = "#,##0.00"

// workbook writes header and rows on a single sheet. formats maps a column
// letter to a custom number format.
func workbook(sheet string, header []string, rows [][]any, formats map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}
	lastRow := len(rows) + 1
	for col, format := range formats {
		code := format
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
		if err != nil {
			return nil, fmt.Errorf("xlsx: number format: %w", err)
		}
		if lastRow >= 2 {
			if err := f.SetCellStyle(sheet, col+"2", col+strconv.Itoa(lastRow), style); err != nil {
				return nil, fmt.Errorf("xlsx: number format: %w", err)
			}
		}
		if err := f.SetColWidth(sheet, col, col, 16); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
