package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHolidaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
holidays:
  - name: New Year's Day
    date: 2025-01-01
    recurring: true
  - name: "  Company Day  "
    date: "2025-06-13"
`), 0o600))

	got, err := LoadHolidaysFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "New Year's Day", got[0].Name)
	assert.True(t, got[0].IsRecurring)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Day)

	assert.Equal(t, "Company Day", got[1].Name)
	assert.False(t, got[1].IsRecurring)
}

func TestParseHolidays_Invalid(t *testing.T) {
	_, err := ParseHolidays([]byte("holidays: []"))
	assert.Error(t, err)

	_, err = ParseHolidays([]byte("holidays:\n  - name: Broken\n    date: 2025-13-01\n"))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
