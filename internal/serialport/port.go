// Package serialport abstracts the duplex serial link to the table
// controller: a minimal port interface, connection options, and a real
// implementation backed by go.bug.st/serial. The protocol layer owns exactly
// one Port for the lifetime of a connection.
package serialport

import "io"

// Port is the minimal interface the protocol layer needs from a serial
// connection. The abstraction exists so the wire protocol can be exercised
// without plotter hardware.
type Port interface {
	io.ReadWriter
	io.Closer
}
