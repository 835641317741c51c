package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXRecords(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Churches": {
			{"Name", "Zip", "Latitude", "Longitude"},
			{"Grace", "17055", "40.2", "-77.0"},
			{"", "", "", ""},
			{"Hope", "17013", "40.1", "-77.1"},
		},
	})

	records, err := ReadXLSXRecords(path, XLSXOptions{SheetName: "Churches"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Grace", records[0]["Name"])
	assert.Equal(t, "-77.1", records[1]["Longitude"])
}

func TestReadXLSXRecords_MissingSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"Name"}}})

	_, err := ReadXLSXRecords(path, XLSXOptions{SheetName: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadXLSXRecords(path, XLSXOptions{SheetIndex: 3})
	assert.Error(t, err)
}

func TestReadXLSXRecords_OpenError(t *testing.T) {
	_, err := ReadXLSXRecords(filepath.Join(t.TempDir(), "missing.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
