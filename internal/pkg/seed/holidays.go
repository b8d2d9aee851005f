package seed

import (
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"gopkg.in/yaml.v3"
)

type holidaysFile struct {
	Holidays []calendar.HolidayRequest `yaml:"holidays"`
}

// LoadHolidaysFile reads a holiday seed file and validates every entry.
func LoadHolidaysFile(path string) ([]calendar.HolidayRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHolidays(b)
}

func ParseHolidays(b []byte) ([]calendar.HolidayRequest, error) {
	var hf holidaysFile
	if err := yaml.Unmarshal(b, &hf); err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}
	if len(hf.Holidays) == 0 {
		return nil, errors.New("holidays: empty")
	}

	for i := range hf.Holidays {
		if err := hf.Holidays[i].Validate(); err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
	}
	return hf.Holidays, nil
}
