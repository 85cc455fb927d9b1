package model

// ParsedNote is a decoded note with absolute timing, paired from
// note-on/note-off events by the reader.
type ParsedNote struct {
	StartTick uint32
	Duration  uint32
	Pitch     uint8
	Velocity  uint8
}

// ParsedTrack is one decoded MTrk chunk.
type ParsedTrack struct {
	Name    string
	Channel uint8
	Program uint8
	Notes   []ParsedNote
}

// ParsedMidi is the strict SMF1 reader's result.
type ParsedMidi struct {
	Format    uint8
	Division  uint16
	SMPTE     bool
	BPM       float64
	NumTracks int
	Tracks    []ParsedTrack

	// Metadata is the embedded generation payload, empty when the file
	// carries none of ours.
	Metadata string
}

func (p *ParsedMidi) HasMetadata() bool {
	return p.Metadata != ""
}

// ParsedMidi2 is the UMP reader's result. Channel-voice content is only
// counted, not decoded note by note.
type ParsedMidi2 struct {
	Division  uint32
	BPM       float64
	NumTracks int
	// EventCounts holds the channel-voice message count per clip, in
	// clip order.
	EventCounts []int
	Metadata    string
}

func (p *ParsedMidi2) HasMetadata() bool {
	return p.Metadata != ""
}
