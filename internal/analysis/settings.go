package analysis

import (
	"errors"
	"fmt"
)

const (
	DefaultBusyThreshold    = 20000
	DefaultTemperatureScale = 40
	DefaultPreviewRows      = 5
)

// Settings holds the constants that shape the report.
type Settings struct {
	BusyThreshold    float64   `json:"busy_threshold"`
	TemperatureBins  []float64 `json:"temperature_bins"`
	TemperatureScale float64   `json:"temperature_scale"`
	PreviewRows      int       `json:"preview_rows"`
}

func DefaultSettings() Settings {
	return Settings{
		BusyThreshold:    DefaultBusyThreshold,
		TemperatureBins:  []float64{0, 10, 20, 30, 40},
		TemperatureScale: DefaultTemperatureScale,
		PreviewRows:      DefaultPreviewRows,
	}
}

func (s Settings) Validate() error {
	if len(s.TemperatureBins) < 2 {
		return errors.New("temperature bins: need at least two edges")
	}
	for i := 1; i < len(s.TemperatureBins); i++ {
		if s.TemperatureBins[i] <= s.TemperatureBins[i-1] {
			return fmt.Errorf("temperature bins: edges must increase (%g after %g)", s.TemperatureBins[i], s.TemperatureBins[i-1])
		}
	}
	if s.TemperatureScale <= 0 {
		return fmt.Errorf("temperature scale must be positive, got %g", s.TemperatureScale)
	}
	if s.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative, got %d", s.PreviewRows)
	}
	return nil
}
