package smf1_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/smf1"
	"github.com/libraz/midi-sketch-sub003/validate"
)

func singleNoteSong() *model.Song {
	return &model.Song{
		BPM: 120,
		Tracks: []model.Track{
			{
				Name:    "Vocal",
				Role:    model.RoleVocal,
				Channel: 0,
				Notes:   []model.NoteEvent{{StartTick: 0, Duration: 480, Pitch: 60, Velocity: 100}},
			},
		},
	}
}

func TestBuildSingleNote(t *testing.T) {
	out, err := smf1.Build(singleNoteSong(), smf1.BuildOptions{Key: "C", Metadata: `{"id":"x"}`})
	require.NoError(t, err)

	// Type-1 header with the fixed 480 PPQN division.
	assert.Equal(t, []byte{0x4d, 0x54, 0x68, 0x64, 0x00, 0x00, 0x00, 0x06, 0x00, 0x01}, out[:10])
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(out[10:])) // control + vocal
	assert.Equal(t, uint16(480), binary.BigEndian.Uint16(out[12:]))
	assert.True(t, bytes.Contains(out, []byte("MTrk")))
	assert.True(t, bytes.Contains(out, []byte(constants.MetadataPrefix)))

	report := validate.Validate(out)
	assert.True(t, report.Valid)
	assert.Equal(t, model.StatusValidated, report.Status)
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())
}

func TestBuildMetadataRoundTrip(t *testing.T) {
	meta := `{"id":"abc","seed":42}`
	out, err := smf1.Build(singleNoteSong(), smf1.BuildOptions{Key: "C", Metadata: meta})
	require.NoError(t, err)

	parsed, err := smf1.Read(out)
	require.NoError(t, err)
	assert.Equal(t, meta, parsed.Metadata)
	assert.InDelta(t, 120.0, parsed.BPM, 0.001)
}

func TestBuildTransposesOncePerKey(t *testing.T) {
	song := singleNoteSong()
	song.Tracks = append(song.Tracks, model.Track{
		Name:    "Drums",
		Role:    model.RoleDrums,
		Channel: constants.DrumChannel,
		Notes:   []model.NoteEvent{{StartTick: 0, Duration: 480, Pitch: 36, Velocity: 100}},
	})

	melodicPitch := func(key string) (uint8, uint8) {
		out, err := smf1.Build(song, smf1.BuildOptions{Key: key})
		require.NoError(t, err)
		parsed, err := smf1.Read(out)
		require.NoError(t, err)
		require.Len(t, parsed.Tracks, 3)
		// Control track first, then vocal, drums last.
		return parsed.Tracks[1].Notes[0].Pitch, parsed.Tracks[2].Notes[0].Pitch
	}

	vocal, drums := melodicPitch("C")
	assert.Equal(t, uint8(60), vocal)
	assert.Equal(t, uint8(36), drums)

	vocal, drums = melodicPitch("D")
	assert.Equal(t, uint8(62), vocal)
	// Drum pitches are never transposed.
	assert.Equal(t, uint8(36), drums)

	_, err := smf1.Build(song, smf1.BuildOptions{Key: "H"})
	assert.Error(t, err)
}

func TestBuildAppliesModulationAtTick(t *testing.T) {
	song := singleNoteSong()
	song.ModulationAmount = 2
	song.ModulationTick = 960
	song.Tracks[0].Notes = append(song.Tracks[0].Notes,
		model.NoteEvent{StartTick: 960, Duration: 480, Pitch: 60, Velocity: 100})

	out, err := smf1.Build(song, smf1.BuildOptions{Key: "C"})
	require.NoError(t, err)
	parsed, err := smf1.Read(out)
	require.NoError(t, err)

	notes := parsed.Tracks[1].Notes
	require.Len(t, notes, 2)
	assert.Equal(t, uint8(60), notes[0].Pitch)
	assert.Equal(t, uint8(62), notes[1].Pitch)
}

func TestBuildSectionMarkers(t *testing.T) {
	song := singleNoteSong()
	song.Sections = []model.SectionMark{
		{Name: "Intro", Tick: 0},
		{Name: "Chorus", Tick: 1920},
	}
	out, err := smf1.Build(song, smf1.BuildOptions{Key: "C"})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("Intro")))
	assert.True(t, bytes.Contains(out, []byte("Chorus")))

	report := validate.Validate(out)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors())
}

func TestBuildPreview(t *testing.T) {
	song := singleNoteSong()
	song.Tracks[0].Notes = []model.NoteEvent{
		{StartTick: 0, Duration: 480, Pitch: 72, Velocity: 100},
		{StartTick: 1920, Duration: 480, Pitch: 76, Velocity: 100},
	}
	out, err := smf1.BuildPreview(song, "C")
	require.NoError(t, err)

	parsed, err := smf1.Read(out)
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, 3)
	assert.Equal(t, "Preview Bass", parsed.Tracks[2].Name)

	bass := parsed.Tracks[2].Notes
	require.Len(t, bass, 2)
	// One note per bar, an octave below the bar's first vocal pitch.
	assert.Equal(t, uint8(60), bass[0].Pitch)
	assert.Equal(t, uint8(64), bass[1].Pitch)
	assert.Equal(t, uint32(0), bass[0].StartTick)
	assert.Equal(t, uint32(1920), bass[1].StartTick)

	// No metadata in a preview.
	assert.Empty(t, parsed.Metadata)
}

func TestBuildPreviewNeedsVocal(t *testing.T) {
	song := &model.Song{
		BPM:    120,
		Tracks: []model.Track{{Name: "Chords", Role: model.RoleChord, Channel: 2}},
	}
	_, err := smf1.BuildPreview(song, "C")
	assert.Error(t, err)
}

// An independent decoder must agree on the file's structure.
func TestBuildCrossCheck(t *testing.T) {
	out, err := smf1.Build(singleNoteSong(), smf1.BuildOptions{Key: "C", Metadata: `{}`})
	require.NoError(t, err)

	parsed, err := smf.ReadFrom(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, parsed.Tracks, 2)
	tf, ok := parsed.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)
	assert.Equal(t, uint16(480), uint16(tf))
}
