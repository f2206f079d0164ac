package fetch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func workbookBytes(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, cells := range rows {
			row := sheet.AddRow()
			for _, v := range cells {
				row.AddCell().Value = v
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseXLSXDefaultSheet(t *testing.T) {
	data := workbookBytes(t, map[string][][]string{
		"Day1": {
			{"Word", "Meaning"},
			{"alpha", "first"},
			{"beta", "second"},
		},
	})

	grid, err := ParseXLSX(data, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Word", "Meaning"},
		{"alpha", "first"},
		{"beta", "second"},
	}, grid)
}

func TestParseXLSXSheetByName(t *testing.T) {
	data := workbookBytes(t, map[string][][]string{
		"Notes": {{"ignore", "me"}},
		"Day2":  {{"Word", "Meaning"}, {"gamma", "third"}},
	})

	grid, err := ParseXLSX(data, XLSXOptions{SheetName: "Day2"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Word", "Meaning"}, {"gamma", "third"}}, grid)
}

func TestParseXLSXSheetNotFound(t *testing.T) {
	data := workbookBytes(t, map[string][][]string{
		"Day1": {{"Word", "Meaning"}},
	})

	_, err := ParseXLSX(data, XLSXOptions{SheetName: "Day9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Day9" not found`)

	_, err = ParseXLSX(data, XLSXOptions{SheetIndex: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestParseXLSXInvalidBytes(t *testing.T) {
	_, err := ParseXLSX([]byte("not a workbook"), XLSXOptions{})
	require.Error(t, err)
}
