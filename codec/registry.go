package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/acomms/uwcodec/bitio"
	"github.com/acomms/uwcodec/schema"
)

var (
	// ErrAlreadyRegistered is returned when a different descriptor is
	// registered under an occupied type ID.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrNotRegistered is wrapped by DecodeByID errors for unknown type IDs.
	ErrNotRegistered = errors.New("not registered")
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*schema.Message)}
}

// Registry maps type IDs to message descriptors, enabling Mode 2 decoding
// without knowing the message type in advance.
//
// Registration is expected during a setup phase and is rare relative to
// lookups; writes are serialized and reads never block each other. The same
// descriptor value must be shared by every caller: registering the same ID
// twice is a no-op only when it is the identical descriptor.
type Registry struct {
	mu   sync.RWMutex
	byID map[int]*schema.Message
}

// Register adds a descriptor under its declared type ID.
// The descriptor must carry an ID. Re-registering the same descriptor is a
// no-op; a different descriptor under an occupied ID returns an error
// wrapping ErrAlreadyRegistered.
func (r *Registry) Register(desc *schema.Message) error {
	id, ok := desc.ID()
	if !ok {
		return fmt.Errorf("message %v has no type ID; cannot register for auto-decode", desc.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[id]; ok {
		if existing == desc {
			return nil
		}
		return fmt.Errorf("ID %v held by %v, cannot register %v: %w",
			id, existing.Name(), desc.Name(), ErrAlreadyRegistered)
	}

	r.byID[id] = desc
	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id int) (*schema.Message, bool) {
	r.mu.RLock()
	desc, ok := r.byID[id]
	r.mu.RUnlock()
	return desc, ok
}

// IDs returns the registered type IDs in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

// DecodeByID decodes a Mode 2 message whose type is not known in advance:
// it reads only the type tag, looks the ID up, and delegates to the full
// tagged decode for the registered descriptor.
func (r *Registry) DecodeByID(data []byte) (*schema.Message, Values, error) {
	if len(data) == 0 {
		return nil, nil, decodeError("", "cannot decode empty data")
	}

	id, err := readTag(bitio.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	desc, ok := r.Lookup(id)
	if !ok {
		return nil, nil, &DecodeError{
			Stage:   "dispatch",
			Message: fmt.Sprintf("unknown type ID %v (registered: %v)", id, r.IDs()),
			Err:     ErrNotRegistered,
		}
	}

	values, err := DecodeTagged(desc, data)
	if err != nil {
		return nil, nil, err
	}
	return desc, values, nil
}
