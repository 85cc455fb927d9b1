package model

import (
	"fmt"
	"strings"

	"github.com/libraz/midi-sketch-sub003/constants"
)

var keyOffsets = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// KeyOffset maps a key name to its semitone offset from C. The empty
// key means no transposition.
func KeyOffset(key string) (int, error) {
	if key == "" {
		return 0, nil
	}
	if off, ok := keyOffsets[strings.TrimSpace(key)]; ok {
		return off, nil
	}
	return 0, fmt.Errorf("unknown key %q", key)
}

// TransposedPitch shifts a melodic pitch by the key offset plus the
// song's modulation amount once the modulation tick is reached.
// Drum-channel pitches pass through untouched. Writers call this exactly
// once, at the encode boundary; pitches stored in the Song stay in C.
func (s *Song) TransposedPitch(t *Track, pitch uint8, tick uint32, keyOff int) uint8 {
	if t.Channel == constants.DrumChannel {
		return pitch
	}
	shift := keyOff
	if s.ModulationAmount != 0 && tick >= s.ModulationTick {
		shift += s.ModulationAmount
	}
	v := int(pitch) + shift
	if v < 0 {
		v = 0
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}
