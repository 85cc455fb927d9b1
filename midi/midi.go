// Package midi decodes SMF files with the gomidi library. It is an
// independent decode path from the smf1 package: inspect uses it so a
// file can be cross-checked with a second implementation.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ReadMidiFile parses an SMF file from disk with gomidi.
func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// gomidi can panic on malformed input.
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	return ReadMidiBytes(dat)
}

// ReadMidiBytes parses an SMF buffer with gomidi.
func ReadMidiBytes(dat []byte) (s *smf.SMF, e error) {
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// TrackSummary is what inspect prints per track.
type TrackSummary struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Events    int    `json:"events"`
	NoteOns   int    `json:"note_ons"`
	Programs  int    `json:"program_changes"`
	LastTick  uint32 `json:"last_tick"`
	ChannelIn []int  `json:"channels"`
}

// FileSummary is the inspect view of an SMF file.
type FileSummary struct {
	Format    int            `json:"format"`
	TicksPQN  uint16         `json:"ticks_per_quarter"`
	NumTracks int            `json:"num_tracks"`
	Tracks    []TrackSummary `json:"tracks"`
}

// Summarize walks a gomidi SMF and aggregates per-track counts.
func Summarize(data *smf.SMF) FileSummary {
	sum := FileSummary{
		Format:    int(data.Format()),
		NumTracks: len(data.Tracks),
	}
	if tf, ok := data.TimeFormat.(smf.MetricTicks); ok {
		sum.TicksPQN = uint16(tf)
	}

	for i, track := range data.Tracks {
		ts := TrackSummary{Index: i}
		channels := make(map[int]bool)
		var tick uint32
		for _, event := range track {
			tick += event.Delta
			ts.Events++
			msg := event.Message

			var trackName string
			if msg.GetMetaTrackName(&trackName) && ts.Name == "" {
				ts.Name = trackName
			}

			var ch, key, vel uint8
			if msg.GetNoteOn(&ch, &key, &vel) {
				ts.NoteOns++
				channels[int(ch)] = true
			} else if msg.GetNoteOff(&ch, &key, &vel) {
				channels[int(ch)] = true
			} else if msg.GetProgramChange(&ch, &vel) {
				ts.Programs++
				channels[int(ch)] = true
			}
		}
		ts.LastTick = tick
		for ch := range channels {
			ts.ChannelIn = append(ts.ChannelIn, ch)
		}
		sort.Ints(ts.ChannelIn)
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum
}
