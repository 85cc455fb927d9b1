// Package ump reads and writes MIDI 2.0 Universal MIDI Packet streams:
// bare SMF2CLIP clips and the ktmidi multi-clip container dialect.
package ump

// WordInfo classifies a UMP message from its first 32-bit word. The
// reader, the writer, and the validator all size and route messages
// through Classify; the rule exists in exactly one place.
type WordInfo struct {
	MessageType    uint8
	Words          int
	IsChannelVoice bool
	IsEndOfClip    bool
}

// Message type nibbles we care about by name.
const (
	mtUtility    = 0x0
	mtMidi1Voice = 0x2
	mtSysex7     = 0x3
	mtMidi2Voice = 0x4
	mtData128    = 0x5
	mtFlexData   = 0xd
	mtStream     = 0xf
)

// statusEndOfClip is the UMP stream message that terminates a clip.
const statusEndOfClip = 0x21

// Classify reports the message type, the number of 32-bit words the
// message occupies, whether it counts as a channel-voice track event,
// and whether it is the End-of-Clip marker. Data128 messages (SysEx8)
// are 128-bit by definition; sizing them at one word would let the
// embedded metadata stream desynchronize the walk.
func Classify(first uint32) WordInfo {
	info := WordInfo{MessageType: uint8(first >> 28), Words: 1}
	switch info.MessageType {
	case mtSysex7, mtMidi2Voice:
		info.Words = 2
	case mtData128, mtFlexData, mtStream:
		info.Words = 4
	}
	if info.MessageType == mtMidi1Voice || info.MessageType == mtMidi2Voice {
		info.IsChannelVoice = true
	}
	if info.MessageType == mtStream && uint8(first>>16) == statusEndOfClip {
		info.IsEndOfClip = true
	}
	return info
}
