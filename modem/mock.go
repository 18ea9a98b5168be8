package modem

import (
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants"
	log "github.com/sirupsen/logrus"
)

// deliveryWorkers bounds the goroutines holding delayed frames in flight.
const deliveryWorkers = 16

// NewMock returns a simulated acoustic modem with the given channel
// characteristics. The driver operates in loopback: sent frames are echoed
// back to attached callbacks after the simulated propagation delay, unless
// the channel loses or corrupts them first.
func NewMock(cfg Config) *Mock {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Mock{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		log: log.WithField("modem", "mock"),
	}
}

// Mock is a simulated acoustic modem for testing without hardware.
type Mock struct {
	cfg Config
	log *log.Entry

	mu      sync.Mutex
	rng     *rand.Rand
	rx      []RxFunc
	pool    *ants.Pool
	running bool
}

// Connect implements Driver. It starts the delivery worker pool; no real
// I/O happens.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	pool, err := ants.NewPool(deliveryWorkers)
	if err != nil {
		return err
	}
	m.pool = pool
	m.running = true

	m.log.WithFields(log.Fields{
		"delay": m.cfg.Delay,
		"loss":  m.cfg.LossProbability,
		"ber":   m.cfg.BitErrorRate,
		"rate":  m.cfg.DataRate,
	}).Info("connected (simulation mode)")
	return nil
}

// Close implements Driver. Frames still in flight are dropped.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false
	m.pool.Release()
	m.pool = nil

	m.log.Info("disconnected")
	return nil
}

// Attach implements Driver.
func (m *Mock) Attach(fn RxFunc) {
	m.mu.Lock()
	m.rx = append(m.rx, fn)
	m.mu.Unlock()
}

// Send implements Driver. The frame passes through the simulated channel:
// a loss draw first, then per-bit corruption at the configured BER, then
// delayed loopback delivery to every attached callback.
//
// A lost frame is not an error; that is the channel behaving normally.
func (m *Mock) Send(frame []byte, dest uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return ErrNotConnected
	}
	if m.cfg.MaxFrameSize > 0 && len(frame) > m.cfg.MaxFrameSize {
		return ErrFrameTooBig
	}

	if m.rng.Float64() < m.cfg.LossProbability {
		m.log.WithFields(log.Fields{"dest": dest, "bytes": len(frame)}).Debug("frame lost in channel")
		return nil
	}

	delivered := make([]byte, len(frame))
	copy(delivered, frame)
	flipped := m.corrupt(delivered)
	if flipped > 0 {
		m.log.WithFields(log.Fields{"dest": dest, "flipped": flipped}).Debug("channel corrupted frame")
	}

	delay := m.cfg.Delay + m.cfg.airtime(len(frame))
	pool := m.pool
	return pool.Submit(func() {
		time.Sleep(delay)
		m.deliver(delivered)
	})
}

// corrupt flips bits in place at the configured BER, returning the number
// of flipped bits. Caller holds mu.
func (m *Mock) corrupt(frame []byte) int {
	if m.cfg.BitErrorRate <= 0 {
		return 0
	}

	flipped := 0
	for i := range frame {
		for bit := 0; bit < 8; bit++ {
			if m.rng.Float64() < m.cfg.BitErrorRate {
				frame[i] ^= 1 << uint(bit)
				flipped++
			}
		}
	}
	return flipped
}

func (m *Mock) deliver(frame []byte) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	rx := make([]RxFunc, len(m.rx))
	copy(rx, m.rx)
	src := m.cfg.LocalID
	m.mu.Unlock()

	for _, fn := range rx {
		fn(frame, src)
	}
}
