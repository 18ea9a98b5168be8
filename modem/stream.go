package modem

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/smallnest/goframe"
)

// Frame-conn layout matches the plain frame envelope: a 4-byte big-endian
// length that does not count itself, stripped before delivery.
var (
	streamEncoderConfig = goframe.EncoderConfig{
		ByteOrder:                       binary.BigEndian,
		LengthFieldLength:               4,
		LengthAdjustment:                0,
		LengthIncludesLengthFieldLength: false,
	}
	streamDecoderConfig = goframe.DecoderConfig{
		ByteOrder:           binary.BigEndian,
		LengthFieldOffset:   0,
		LengthFieldLength:   4,
		LengthAdjustment:    0,
		InitialBytesToStrip: 4,
	}
)

// NewStream returns a driver carrying frames over conn, for
// hardware-in-the-loop runs where each vehicle is its own process.
// localID is stamped on outgoing frames as the source vehicle ID.
func NewStream(conn net.Conn, localID uint8) *StreamDriver {
	return &StreamDriver{
		fc:      goframe.NewLengthFieldBasedFrameConn(streamEncoderConfig, streamDecoderConfig, conn),
		localID: localID,
		log:     log.WithFields(log.Fields{"modem": "stream", "local": localID}),
	}
}

// StreamDriver carries frames over a byte stream using length-field
// delimiting. Each on-wire frame is [src:1][payload]; the destination ID is
// not carried because a point-to-point stream has exactly one far end.
type StreamDriver struct {
	fc      goframe.FrameConn
	localID uint8
	log     *log.Entry

	mu      sync.Mutex
	rx      []RxFunc
	running bool
}

// Connect implements Driver. It starts the read loop delivering inbound
// frames to attached callbacks.
func (s *StreamDriver) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true
	go s.readLoop()
	return nil
}

// Close implements Driver.
func (s *StreamDriver) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	return s.fc.Close()
}

// Attach implements Driver.
func (s *StreamDriver) Attach(fn RxFunc) {
	s.mu.Lock()
	s.rx = append(s.rx, fn)
	s.mu.Unlock()
}

// Send implements Driver. dest is accepted for interface parity but the
// stream's far end is the only receiver.
func (s *StreamDriver) Send(frame []byte, dest uint8) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrNotConnected
	}

	buf := make([]byte, 1+len(frame))
	buf[0] = s.localID
	copy(buf[1:], frame)
	return s.fc.WriteFrame(buf)
}

func (s *StreamDriver) readLoop() {
	for {
		buf, err := s.fc.ReadFrame()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.running = false
			s.mu.Unlock()

			if running && err != io.EOF {
				s.log.WithError(err).Warn("read loop terminated")
			}
			return
		}
		if len(buf) < 1 {
			continue
		}

		s.mu.Lock()
		rx := make([]RxFunc, len(s.rx))
		copy(rx, s.rx)
		s.mu.Unlock()

		for _, fn := range rx {
			fn(buf[1:], buf[0])
		}
	}
}
