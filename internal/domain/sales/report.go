package sales

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/costbook/internal/domain"
)

// UnknownProduct подпись для продажи удалённого продукта.
const UnknownProduct = "—"

var csvHeader = []string{
	"Fecha",
	"Hora",
	"Lugar",
	"Color",
	"Nombre",
	"Producto",
	"Cantidad",
	"Costo unit.",
	"Ganancia",
	"Precio unit.",
	"Subtotal",
	"Observaciones",
}

func CSVFileName(month string) string  { return fmt.Sprintf("sales_%s.csv", month) }
func XLSXFileName(month string) string { return fmt.Sprintf("sales_%s.xlsx", month) }

// CSV выгрузка месяца: заголовок + строка на продажу, строки через \n.
func CSV(lines []Line) string {
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, joinCSV(csvHeader))
	for _, line := range lines {
		rows = append(rows, joinCSV(csvRecord(line)))
	}
	return strings.Join(rows, "\n")
}

func csvRecord(line Line) []string {
	name := line.ProductName
	if !line.Known {
		name = UnknownProduct
	}
	return []string{
		line.DateISO,
		line.Time,
		line.Place,
		line.ColorTag,
		line.CustomerName,
		name,
		domain.Fixed2(line.Quantity),
		domain.Fixed2(line.UnitCost),
		domain.Fixed2(line.UnitProfit),
		domain.Fixed2(line.UnitPrice),
		domain.Fixed2(line.Subtotal),
		line.Notes,
	}
}

func joinCSV(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = csvEscape(f)
	}
	return strings.Join(out, ",")
}

// csvEscape в кавычки только поля с запятой, кавычкой или переводом строки.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX та же выгрузка в Excel; числа пишутся числами.
func WriteXLSX(w io.Writer, month string, lines []Line) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if month != "" {
		if err := f.SetSheetName(sheet, month); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = month
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, line := range lines {
		name := line.ProductName
		if !line.Known {
			name = UnknownProduct
		}
		excelRow := []interface{}{
			line.DateISO,
			line.Time,
			line.Place,
			line.ColorTag,
			line.CustomerName,
			name,
			line.Quantity,
			domain.Round2(line.UnitCost),
			domain.Round2(line.UnitProfit),
			domain.Round2(line.UnitPrice),
			domain.Round2(line.Subtotal),
			line.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
