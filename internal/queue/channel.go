package queue

import "fmt"

// Channel roles. Each logical queue is backed by one physical key per role.
const (
	ChannelWaiting  = "waiting"
	ChannelReserved = "reserved"
	ChannelDelayed  = "delayed"
	ChannelFailed   = "failed"
	ChannelTimeout  = "timeout"
)

// Channels derives the physical key names of one logical queue.
type Channels struct {
	base  string
	names map[string]string
}

// NewChannels derives the five channel names for base.
func NewChannels(base string) (Channels, error) {
	if base == "" {
		return Channels{}, ErrEmptyQueueName
	}

	names := make(map[string]string, 5)
	for _, role := range Roles() {
		names[role] = base + "_" + role
	}
	return Channels{base: base, names: names}, nil
}

// Roles returns the channel roles in a stable order.
func Roles() []string {
	return []string{ChannelWaiting, ChannelReserved, ChannelDelayed, ChannelFailed, ChannelTimeout}
}

// Base returns the logical queue name.
func (c Channels) Base() string {
	return c.base
}

// Name returns the physical key for role.
func (c Channels) Name(role string) (string, error) {
	name, ok := c.names[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, role)
	}
	return name, nil
}

// MustName is Name for roles known at compile time.
func (c Channels) MustName(role string) string {
	name, err := c.Name(role)
	if err != nil {
		panic(err)
	}
	return name
}

// ReloadSource resolves the reload source role: failed when channel is
// empty, otherwise only timeout or waiting.
func ReloadSource(channel string) (string, error) {
	switch channel {
	case "":
		return ChannelFailed, nil
	case ChannelTimeout, ChannelWaiting:
		return channel, nil
	default:
		return "", fmt.Errorf("%w: cannot reload from %q", ErrUnsupportedChannel, channel)
	}
}
