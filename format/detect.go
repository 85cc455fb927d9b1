// Package format identifies which MIDI file family a byte buffer belongs
// to from its leading signature bytes.
package format

import "bytes"

// Format is the closed set of file families we recognize.
type Format int

const (
	Unknown Format = iota
	SMF1
	SMF2Clip
	SMF2Container
	SMF2Ktmidi
)

func (f Format) String() string {
	switch f {
	case SMF1:
		return "SMF1"
	case SMF2Clip:
		return "SMF2 Clip"
	case SMF2Container:
		return "SMF2 Container"
	case SMF2Ktmidi:
		return "SMF2 ktmidi Container"
	default:
		return "Unknown"
	}
}

var (
	// SigSMF1 opens a standard MIDI file header chunk.
	SigSMF1 = []byte("MThd")
	// SigClip opens a MIDI 2.0 clip stream.
	SigClip = []byte("SMF2CLIP")
	// SigContainer opens the official MIDI 2.0 container. We detect it
	// but do not decode its payload.
	SigContainer = []byte("SMF2CON1")
	// SigKtmidi opens the ktmidi multi-clip container dialect.
	SigKtmidi = []byte("AAAAAAAAEEEEEEEE")
)

// Detect inspects the leading bytes of data and returns the matching
// format tag. It is total: unmatched or short input yields Unknown and
// no byte past len(data) is ever touched. The 16-byte ktmidi signature
// is checked before the shorter ones; its first 8 bytes are not a known
// signature on their own, but the longest-first order keeps that true
// even if the signature set ever overlaps.
func Detect(data []byte) Format {
	if len(data) >= len(SigKtmidi) && bytes.Equal(data[:len(SigKtmidi)], SigKtmidi) {
		return SMF2Ktmidi
	}
	if len(data) >= len(SigClip) && bytes.Equal(data[:len(SigClip)], SigClip) {
		return SMF2Clip
	}
	if len(data) >= len(SigContainer) && bytes.Equal(data[:len(SigContainer)], SigContainer) {
		return SMF2Container
	}
	if len(data) >= len(SigSMF1) && bytes.Equal(data[:len(SigSMF1)], SigSMF1) {
		return SMF1
	}
	return Unknown
}
