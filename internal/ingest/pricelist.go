package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricesync/internal/fetcher"
	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/rules"
)

// PriceColumn is the name given to the primary price column of a cleaned sheet.
const PriceColumn = "PRICE"

// ErrNoPriceList is returned when no price list file matches the naming convention.
var ErrNoPriceList = eris.New("no price list file found")

var fileDateRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})|(\d{4}-\d{2}-\d{2})`)

// ExtractDate parses the first MM.DD.YYYY or YYYY-MM-DD date in a file name.
// Names without a parseable date return the zero time.
func ExtractDate(name string) time.Time {
	m := fileDateRe.FindString(name)
	if m == "" {
		return time.Time{}
	}
	for _, layout := range []string{"01.02.2006", "2006-01-02"} {
		if t, err := time.Parse(layout, m); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LatestPriceList returns the .xlsx file in dir whose name contains pattern
// (case-insensitive) and carries the latest date.
func LatestPriceList(dir, pattern string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: list %s", dir)
	}

	pattern = strings.ToLower(pattern)
	var best string
	var bestDate time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			continue
		}
		if !strings.Contains(strings.ToLower(name), pattern) {
			continue
		}
		d := ExtractDate(name)
		if best == "" || d.After(bestDate) || (d.Equal(bestDate) && name > best) {
			best, bestDate = name, d
		}
	}
	if best == "" {
		return "", eris.Wrapf(ErrNoPriceList, "ingest: no %q .xlsx in %s", pattern, dir)
	}
	return filepath.Join(dir, best), nil
}

// LoadPriceList reads every sheet of the workbook and cleans it.
func LoadPriceList(path string, r rules.Rules) ([]model.Sheet, error) {
	raw, err := fetcher.ReadWorkbook(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read price list %s", path)
	}

	sheets := make([]model.Sheet, 0, len(raw))
	for _, s := range raw {
		sheet := CleanSheet(s.Name, s.Rows, r.Category(s.Name))
		zap.L().Debug("ingest: sheet loaded",
			zap.String("sheet", sheet.Name),
			zap.String("category", string(sheet.Category)),
			zap.Int("rows", len(sheet.Rows)),
		)
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// LoadSheet reads and cleans a single named sheet of the workbook.
func LoadSheet(path, name string, r rules.Rules) (model.Sheet, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: name})
	if err != nil {
		return model.Sheet{}, eris.Wrapf(err, "ingest: read sheet %q", name)
	}
	return CleanSheet(name, rows, r.Category(name)), nil
}

// CleanSheet turns raw worksheet rows into a sheet table. The first row is the
// header. Rows are dropped when the first populated column is empty. The first
// numeric column that is not an item or description column becomes PRICE;
// later numeric columns are kept as alternate prices. Rows without any price
// are dropped.
func CleanSheet(name string, raw [][]string, category model.Category) model.Sheet {
	sheet := model.Sheet{Name: name, Category: category}
	if len(raw) == 0 {
		return sheet
	}

	width := 0
	for _, row := range raw {
		width = max(width, len(row))
	}
	columns := make([]string, width)
	for i := range columns {
		if i < len(raw[0]) {
			columns[i] = strings.TrimSpace(raw[0][i])
		}
		if columns[i] == "" {
			columns[i] = fmt.Sprintf("Column %d", i+1)
		}
	}

	body := make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		padded := make([]string, width)
		for i := range row {
			padded[i] = strings.TrimSpace(row[i])
		}
		body = append(body, padded)
	}

	key := firstPopulatedColumn(body, width)
	if key < 0 {
		sheet.Columns = columns
		return sheet
	}

	var kept [][]string
	for _, row := range body {
		if row[key] != "" {
			kept = append(kept, row)
		}
	}

	priceIdx := -1
	var altIdx []int
	for i, col := range columns {
		if !isNumericColumn(kept, i) || isLabelColumn(col) {
			continue
		}
		if priceIdx < 0 {
			priceIdx = i
			continue
		}
		altIdx = append(altIdx, i)
	}

	if priceIdx < 0 {
		sheet.Columns = columns
		sheet.Rows = kept
		return sheet
	}

	columns[priceIdx] = PriceColumn
	for _, i := range altIdx {
		sheet.AltPriceColumns = append(sheet.AltPriceColumns, columns[i])
	}
	sheet.Columns = columns

	for _, row := range kept {
		if row[priceIdx] != "" || anyPopulated(row, altIdx) {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

func firstPopulatedColumn(rows [][]string, width int) int {
	for i := range width {
		for _, row := range rows {
			if row[i] != "" {
				return i
			}
		}
	}
	return -1
}

// isNumericColumn reports whether every populated cell parses as a price and
// at least one cell is populated.
func isNumericColumn(rows [][]string, idx int) bool {
	populated := false
	for _, row := range rows {
		if row[idx] == "" {
			continue
		}
		if !model.ParsePrice(row[idx]).Valid {
			return false
		}
		populated = true
	}
	return populated
}

func isLabelColumn(col string) bool {
	_, item := model.FindColumn([]string{col}, model.KeywordItem)
	_, desc := model.FindColumn([]string{col}, model.KeywordDescription)
	return item || desc
}

func anyPopulated(row []string, idx []int) bool {
	for _, i := range idx {
		if row[i] != "" {
			return true
		}
	}
	return false
}
