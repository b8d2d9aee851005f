package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWorkbook(&buf,
		Sheet{
			Name:   "Payroll",
			Header: []string{"Employee", "Gross"},
			Rows:   [][]interface{}{{"Ann Lee", "3000.00"}, {"Bo Chen", "2500.00"}},
		},
		Sheet{
			Name:   "Totals",
			Header: []string{"Total"},
			Rows:   [][]interface{}{{"5500.00"}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Payroll", "Totals"}, f.GetSheetList())

	v, err := f.GetCellValue("Payroll", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Bo Chen", v)

	v, err = f.GetCellValue("Totals", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Total", v)
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	assert.Error(t, WriteWorkbook(&bytes.Buffer{}))
}
