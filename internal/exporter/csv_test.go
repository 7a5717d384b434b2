package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitaline/internal/dataprocessing"
)

func TestCSVWriterWriteSheets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	sheets := BuildSheets(dataprocessing.PivotAll(sampleRows()), nil)

	writer := NewCSVWriter(dir, "yyyy-mm-dd")
	paths, err := writer.WriteSheets(sheets, "company_name")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "div_adj_close_price.csv"),
		filepath.Join(dir, "daily_total_return.csv"),
		filepath.Join(dir, "average_marketcap.csv"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"company_name", "2024-01-15", "2024-01-16"},
		{"Infosys", "1523.45", "1530"},
		{"TCS", "", "3700.5"},
	}, records)
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stream.csv")
	writer := NewCSVWriter(filepath.Dir(path), "yyyy-mm-dd")

	stream, err := writer.CreateStreamWriter(path, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "x,y"}))
	require.NoError(t, stream.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFa,b\n1,\"x,y\"\n", string(data))
}
