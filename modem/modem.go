// Package modem abstracts the acoustic transport that carries framed
// messages between vehicles.
//
// The codec core is synchronous and transport-agnostic; drivers in this
// package deliver bytes to it. Mock simulates the acoustic channel itself
// (propagation delay, packet loss, bit errors) for hardware-in-the-loop
// testing; StreamDriver carries frames over any net.Conn for cross-process
// runs. Real hardware adapters implement the same Driver interface and are
// deliberately out of scope here.
package modem

import (
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned by Send before Connect or after Close.
	ErrNotConnected = errors.New("modem: not connected")

	// ErrFrameTooBig is returned when a frame exceeds the configured limit.
	ErrFrameTooBig = errors.New("modem: frame exceeds max frame size")
)

// RxFunc receives a delivered frame and the sending vehicle's ID.
// Callbacks run on the driver's delivery workers and must not block for
// long; hand heavy work off to the application.
type RxFunc func(frame []byte, src uint8)

// Driver is the vendor-agnostic modem interface.
// Implementations are swappable without changing application code.
type Driver interface {
	// Connect brings the link up and starts delivering received frames.
	Connect() error

	// Close tears the link down. Frames in flight are dropped.
	Close() error

	// Send transmits a frame to the vehicle with ID dest.
	// Delivery is not guaranteed; the channel owns loss.
	Send(frame []byte, dest uint8) error

	// Attach registers a callback for received frames.
	Attach(fn RxFunc)
}

// Config holds the simulated channel characteristics of a Mock driver.
// The defaults model a short-range link in moderate conditions; see
// DefaultConfig.
type Config struct {
	// LocalID is this vehicle's ID, reported as the source of loopback
	// deliveries.
	LocalID uint8

	// Delay is the one-way acoustic propagation delay.
	// Sound in seawater travels roughly 1500 m/s, so 1s ~ 1.5 km.
	Delay time.Duration

	// LossProbability is the chance a sent frame never arrives, in [0,1].
	LossProbability float64

	// BitErrorRate is the per-bit flip probability, in [0,1]. Acoustic
	// noise and multipath corrupt surviving frames at roughly this rate.
	BitErrorRate float64

	// MaxFrameSize caps a single transmission, matching typical modem
	// hardware limits (32 or 64 bytes).
	MaxFrameSize int

	// DataRate in bits per second models serialization time on the link.
	DataRate int

	// Seed makes the loss and bit-error draws reproducible when non-zero.
	Seed int64
}

// DefaultConfig returns channel parameters for a short-range link in
// moderate conditions: 1 s delay, 5% loss, 0.01% BER, 64-byte frames at
// 80 bps.
func DefaultConfig() Config {
	return Config{
		Delay:           time.Second,
		LossProbability: 0.05,
		BitErrorRate:    0.0001,
		MaxFrameSize:    64,
		DataRate:        80,
	}
}

// airtime returns how long a frame of n bytes occupies the channel.
func (c Config) airtime(n int) time.Duration {
	if c.DataRate <= 0 {
		return 0
	}
	return time.Duration(n*8) * time.Second / time.Duration(c.DataRate)
}
