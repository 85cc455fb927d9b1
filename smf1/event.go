package smf1

import (
	"errors"
	"fmt"
)

// Event is one decoded track event with its absolute tick.
type Event struct {
	Delta uint32
	Tick  uint32
	// Status is the effective status byte after running status is
	// applied; 0xFF for meta events, 0xF0/0xF7 for sysex.
	Status   byte
	MetaType byte
	Data     [2]byte
	Payload  []byte
}

// IsChannel reports whether the event is a channel-voice message.
func (e *Event) IsChannel() bool {
	return e.Status >= 0x80 && e.Status < 0xf0
}

// IsEndOfTrack reports the 0x2F meta event.
func (e *Event) IsEndOfTrack() bool {
	return e.Status == 0xff && e.MetaType == 0x2f
}

// Channel returns the channel nibble of a channel-voice event.
func (e *Event) Channel() uint8 {
	return e.Status & 0x0f
}

// ErrUnknownStatus is returned for status bytes we cannot dispatch
// (system common/realtime other than sysex). The strict reader treats it
// as fatal; the validator records a warning and stops scanning the track.
var ErrUnknownStatus = errors.New("unknown status byte")

// Policy is consulted on recoverable problems (data bytes above 0x7f).
// Returning nil continues the decode; returning an error aborts it. The
// strict reader and the lenient validator share ReadEvent and differ
// only in the Policy they pass.
type Policy func(offset int, msg string) error

// Strict is the fail-fast policy used by the reader.
func Strict(offset int, msg string) error {
	return fmt.Errorf("%s at offset %d", msg, offset)
}

// ReadEvent decodes the next delta-time and event from the cursor.
// Structural breaks (truncation, overlong lengths, missing running
// status) always return an error regardless of policy.
func ReadEvent(c *Cursor, pol Policy) (Event, error) {
	var e Event
	delta, err := c.ReadVLQ()
	if err != nil {
		return e, err
	}
	e.Delta = delta
	c.Tick += delta
	e.Tick = c.Tick

	first, err := c.PeekByte()
	if err != nil {
		return e, fmt.Errorf("track ends after a delta time: %w", err)
	}

	status := first
	if status&0x80 == 0 {
		// Running status: reuse the previous explicit status byte.
		if c.Running == 0 {
			return e, fmt.Errorf("data byte 0x%02x at offset %d with no running status", first, c.Pos)
		}
		status = c.Running
	} else {
		c.Pos++
	}

	switch {
	case status == 0xff:
		c.Running = 0
		e.Status = status
		mt, err := c.ReadByte()
		if err != nil {
			return e, fmt.Errorf("truncated meta event: %w", err)
		}
		e.MetaType = mt
		length, err := c.ReadVLQ()
		if err != nil {
			return e, fmt.Errorf("reading meta event length: %w", err)
		}
		if int(length) > c.Remaining() {
			return e, fmt.Errorf("meta event 0x%02x declares %d payload bytes, only %d remain", mt, length, c.Remaining())
		}
		e.Payload, _ = c.ReadBytes(int(length))
		return e, nil

	case status == 0xf0 || status == 0xf7:
		c.Running = 0
		e.Status = status
		length, err := c.ReadVLQ()
		if err != nil {
			return e, fmt.Errorf("reading sysex length: %w", err)
		}
		if int(length) > c.Remaining() {
			return e, fmt.Errorf("sysex declares %d payload bytes, only %d remain", length, c.Remaining())
		}
		e.Payload, _ = c.ReadBytes(int(length))
		return e, nil

	case status >= 0xf0:
		e.Status = status
		return e, fmt.Errorf("status byte 0x%02x at offset %d: %w", status, c.Pos, ErrUnknownStatus)

	default:
		c.Running = status
		e.Status = status
		n := 2
		if kind := status & 0xf0; kind == 0xc0 || kind == 0xd0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			b, err := c.ReadByte()
			if err != nil {
				return e, fmt.Errorf("truncated channel message 0x%02x: %w", status, err)
			}
			if b > 0x7f {
				if perr := pol(c.Pos-1, fmt.Sprintf("data byte 0x%02x out of range", b)); perr != nil {
					return e, perr
				}
			}
			e.Data[i] = b
		}
		return e, nil
	}
}
