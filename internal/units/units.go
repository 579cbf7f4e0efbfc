// Package units provides shared constants, conversion, and formatting for
// temperature units
package units

import "fmt"

// Unit constants
const (
	Celsius    = "c"
	Fahrenheit = "f"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Celsius, Fahrenheit}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "c, f"
}

// Convert converts a temperature from degrees Celsius to the target units.
// The sensor reports temperatures in Celsius.
func Convert(tempC float64, targetUnits string) float64 {
	switch targetUnits {
	case Fahrenheit:
		return tempC*9/5 + 32
	case Celsius:
		return tempC // no conversion needed
	default:
		return tempC // default to Celsius if unknown unit
	}
}

// Format renders a temperature readout with one decimal place, matching the
// dashboard's max/min display.
func Format(tempC float64, targetUnits string) string {
	v := Convert(tempC, targetUnits)
	switch targetUnits {
	case Fahrenheit:
		return fmt.Sprintf("%.1f°F", v)
	default:
		return fmt.Sprintf("%.1f°C", v)
	}
}
