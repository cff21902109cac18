package queue

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Codec converts messages to and from the bytes stored in the queue.
type Codec interface {
	Encode(msg *Message) ([]byte, error)
	Decode(data []byte) (*Message, error)

	// StripID returns data re-encoded without the message ID, so two
	// messages carrying the same job and handle count compare equal.
	StripID(data []byte) ([]byte, error)
}

// Registry maps job type names to factories producing empty jobs to decode into.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Job)}
}

// Register adds a job type. Registering the same name twice replaces the factory.
func (r *Registry) Register(name string, factory func() Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New returns an empty job of the named type.
func (r *Registry) New(name string) (Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, name)
	}
	return factory(), nil
}

// Types returns the registered job type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// envelope is the stored form of a message.
type envelope struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	HandleTimes int             `json:"handle_times"`
}

// JSONCodec stores messages as JSON envelopes.
type JSONCodec struct {
	registry *Registry
}

// NewJSONCodec creates a codec resolving job types through registry.
func NewJSONCodec(registry *Registry) *JSONCodec {
	return &JSONCodec{registry: registry}
}

// Encode serializes msg.
func (c *JSONCodec) Encode(msg *Message) ([]byte, error) {
	payload, err := json.Marshal(msg.Job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s job: %w", msg.Job.Type(), err)
	}

	return json.Marshal(envelope{
		ID:          msg.ID,
		Type:        msg.Job.Type(),
		Payload:     payload,
		HandleTimes: msg.HandleTimes,
	})
}

// Decode parses data into a message with a registered job.
func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	job, err := c.registry.New(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, job); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", env.Type, err)
		}
	}

	return &Message{
		ID:          env.ID,
		Job:         job,
		HandleTimes: env.HandleTimes,
	}, nil
}

// StripID re-encodes data without its message ID.
func (c *JSONCodec) StripID(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	env.ID = ""
	return json.Marshal(env)
}

var _ Codec = (*JSONCodec)(nil)
