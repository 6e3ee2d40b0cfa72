package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"apple", 3}))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("word/embeddings/Book1.xlsx"))
	assert.True(t, Supported("word/embeddings/Macro.XLSM"))
	assert.True(t, Supported("word/embeddings/old.xls"))
	assert.False(t, Supported("word/embeddings/oleObject1.bin"))
	assert.False(t, Supported("word/embeddings/Deck.pptx"))
}

func TestReadXLSX(t *testing.T) {
	sheets, err := Read("word/embeddings/Book1.xlsx", workbook(t))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.Equal(t, [][]string{{"Name", "Qty"}, {"apple", "3"}}, sheets[0].Rows)
}

func TestReadErrors(t *testing.T) {
	_, err := Read("word/embeddings/oleObject1.bin", []byte("data"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Read("word/embeddings/Book1.xlsx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = Read("word/embeddings/old.xls", []byte("not a workbook"))
	assert.Error(t, err)
}

func TestTrim(t *testing.T) {
	rows := [][]string{
		{"a", "b", ""},
		{"", " "},
		{"c"},
		{},
		{"", ""},
	}
	assert.Equal(t, [][]string{{"a", "b"}, {}, {"c"}}, trim(rows))
	assert.Empty(t, trim(nil))
}
