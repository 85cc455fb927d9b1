package model

// TrackRole describes what a generated track contributes to the
// arrangement. The writer orders tracks by role and the preview build
// selects by role.
type TrackRole string

const (
	RoleVocal TrackRole = "vocal"
	RoleChord TrackRole = "chord"
	RoleBass  TrackRole = "bass"
	RoleDrums TrackRole = "drums"
)

// NoteEvent is a single note with absolute timing.
type NoteEvent struct {
	StartTick uint32 `json:"start_tick"`
	Duration  uint32 `json:"duration"`
	Pitch     uint8  `json:"pitch"`
	Velocity  uint8  `json:"velocity"`
}

// Track is one named voice of a Song.
type Track struct {
	Name    string      `json:"name"`
	Role    TrackRole   `json:"role"`
	Channel uint8       `json:"channel"`
	Program uint8       `json:"program"`
	Notes   []NoteEvent `json:"notes"`
}

// SectionMark labels a structural boundary (intro, verse, ...) and is
// written as a marker meta event at its tick.
type SectionMark struct {
	Tick uint32 `json:"tick"`
	Name string `json:"name"`
}

// Song is the in-memory arrangement the writers consume. Generation
// produces it; the codec layer never modifies it.
type Song struct {
	BPM      float64       `json:"bpm"`
	Tracks   []Track       `json:"tracks"`
	Sections []SectionMark `json:"sections,omitempty"`

	// ModulationAmount semitones are added to melodic pitches from
	// ModulationTick onward. Zero amount means no modulation.
	ModulationAmount int    `json:"modulation_amount,omitempty"`
	ModulationTick   uint32 `json:"modulation_tick,omitempty"`
}

// TrackByRole returns the first track with the given role, or nil.
func (s *Song) TrackByRole(role TrackRole) *Track {
	for i := range s.Tracks {
		if s.Tracks[i].Role == role {
			return &s.Tracks[i]
		}
	}
	return nil
}
