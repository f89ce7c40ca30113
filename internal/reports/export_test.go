package reports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, utf8BOM))
	reader := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func sampleSales(t *testing.T) []SalesRow {
	return []SalesRow{
		{Date: date(t, "2026-03-01"), NombreCommandes: 2, MontantTotal: decimal.NewFromInt(90000), MontantPaye: decimal.NewFromInt(40000)},
		{Date: date(t, "2026-03-02"), NombreCommandes: 1, MontantTotal: decimal.RequireFromString("15000.5"), MontantPaye: decimal.Zero},
	}
}

func TestWriteSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSalesCSV(&buf, sampleSales(t)))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Date", "Commandes", "Montant total", "Montant payé", "Reste à payer"}, records[0])
	assert.Equal(t, []string{"2026-03-01", "2", "90000.00", "40000.00", "50000.00"}, records[1])
	assert.Equal(t, []string{"Total", "3", "105000.50", "40000.00", "65000.50"}, records[3])
}

func TestWriteProductsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, []ProductRow{{Produit: "Boubou; brodé", Quantite: 4, ChiffreAffaires: decimal.NewFromInt(156000)}}))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Produit", "Quantité vendue", "Chiffre d'affaires"}, records[0])
	assert.Equal(t, []string{"Boubou; brodé", "4", "156000.00"}, records[1])
}

func TestSalesXLSX(t *testing.T) {
	data, err := SalesXLSX(sampleSales(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Ventes"}, f.GetSheetList())
	rows, err := f.GetRows("Ventes")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Commandes", "Montant total", "Montant payé", "Reste à payer"}, rows[0])
	assert.Equal(t, "Total", rows[3][0])
	raw, err := f.GetCellValue("Ventes", "C4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "105000.5", raw)
}

func TestProductsXLSX(t *testing.T) {
	data, err := ProductsXLSX([]ProductRow{{Produit: "Robe", Quantite: 2, ChiffreAffaires: decimal.NewFromInt(120000)}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Produits")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Produit", "Quantité vendue", "Chiffre d'affaires"}, rows[0])
	assert.Equal(t, "Robe", rows[1][0])
}

func TestEncodeDispatchesOnFormat(t *testing.T) {
	csvData, err := EncodeProducts(nil, FormatCSV)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csvData, utf8BOM))

	xlsxData, err := EncodeProducts(nil, FormatXLSX)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxData, []byte("PK")))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
}
