package chat

import "time"

// StreamSpeed controls how fast replies are revealed.
type StreamSpeed int

const (
	StreamInstant StreamSpeed = iota // show everything immediately
	StreamFast                       // 32 runes per tick
	StreamNormal                     // 8 runes per tick (default)
)

// String returns a human-readable label for the speed.
func (s StreamSpeed) String() string {
	switch s {
	case StreamInstant:
		return "instant"
	case StreamFast:
		return "fast"
	case StreamNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// StreamConfig holds reveal parameters.
type StreamConfig struct {
	Speed     StreamSpeed
	ChunkSize int           // runes per tick (0 means instant)
	TickRate  time.Duration // delay between ticks
}

// StreamConfigForSpeed returns a config for the given speed preset.
func StreamConfigForSpeed(s StreamSpeed) StreamConfig {
	switch s {
	case StreamInstant:
		return StreamConfig{Speed: StreamInstant}
	case StreamFast:
		return StreamConfig{Speed: StreamFast, ChunkSize: 32, TickRate: 16 * time.Millisecond}
	default:
		return StreamConfig{Speed: StreamNormal, ChunkSize: 8, TickRate: 16 * time.Millisecond}
	}
}

// CycleStreamSpeed cycles: normal → fast → instant → normal.
func CycleStreamSpeed(current StreamSpeed) StreamSpeed {
	switch current {
	case StreamNormal:
		return StreamFast
	case StreamFast:
		return StreamInstant
	default:
		return StreamNormal
	}
}

// reveal walks a reply rune by rune.
type reveal struct {
	buf []rune
	pos int
}

func newReveal(s string) *reveal {
	return &reveal{buf: []rune(s)}
}

// next advances by n runes (all when n <= 0) and returns the visible prefix
// and whether the reply is fully shown.
func (r *reveal) next(n int) (string, bool) {
	if n <= 0 || r.pos+n >= len(r.buf) {
		r.pos = len(r.buf)
	} else {
		r.pos += n
	}
	return string(r.buf[:r.pos]), r.pos >= len(r.buf)
}
