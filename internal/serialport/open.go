package serialport

import (
	"go.bug.st/serial"
)

// Open opens the serial device at path with the given options.
func Open(path string, opts Options) (Port, error) {
	mode, err := opts.mode()
	if err != nil {
		return nil, err
	}
	return serial.Open(path, mode)
}

// List returns the device paths of the serial ports present on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}
