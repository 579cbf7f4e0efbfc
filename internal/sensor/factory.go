package sensor

import (
	"go.bug.st/serial"
)

// OpenPort opens a real serial port for the thermal bridge using the given
// options.
func OpenPort(path string, opts PortOptions) (Porter, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	return serial.Open(path, portMode(normalized))
}

// portMode translates normalized options into the driver's mode struct.
// serial.StopBits is an enum (OneStopBit=0, TwoStopBits=2), not a count.
func portMode(opts PortOptions) *serial.Mode {
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
	}
	switch opts.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	return mode
}
