package validate_test

import (
	"encoding/binary"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libraz/midi-sketch-sub003/format"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/smf1"
	"github.com/libraz/midi-sketch-sub003/ump"
	"github.com/libraz/midi-sketch-sub003/validate"
)

func smfFile(numTracks uint16, bodies ...[]byte) []byte {
	buf := append([]byte("MThd"), 0, 0, 0, 6)
	buf = binary.BigEndian.AppendUint16(buf, 1)
	buf = binary.BigEndian.AppendUint16(buf, numTracks)
	buf = binary.BigEndian.AppendUint16(buf, 480)
	for _, body := range bodies {
		buf = append(buf, "MTrk"...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(body)))
		buf = append(buf, body...)
	}
	return buf
}

var eotBody = []byte{0x00, 0xff, 0x2f, 0x00}

func demoSong() *model.Song {
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

// Validate must return a report for any input, however short or broken.
func TestNeverFailsOnTinyInput(t *testing.T) {
	for size := 0; size < 8; size++ {
		report := validate.Validate(make([]byte, size))
		require.NotNil(t, report, "size %d", size)
		assert.False(t, report.Valid)
		assert.Equal(t, model.StatusFailed, report.Status)
		assert.NotEmpty(t, report.Errors())
	}
}

func TestUnknownFormat(t *testing.T) {
	report := validate.Validate([]byte("this is not any kind of midi"))
	assert.False(t, report.Valid)
	assert.Equal(t, model.StatusFailed, report.Status)
	require.Len(t, report.Errors(), 1)
	assert.Contains(t, report.Errors()[0].Message, "unknown file format")
}

func TestValidSMF1(t *testing.T) {
	data := smfFile(1, append([]byte{
		0x00, 0xff, 0x03, 0x04, 'L', 'e', 'a', 'd',
		0x00, 0x90, 0x3c, 0x64,
		0x83, 0x60, 0x80, 0x3c, 0x00,
	}, eotBody...))
	report := validate.Validate(data)

	assert.True(t, report.Valid)
	assert.Equal(t, model.StatusValidated, report.Status)
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())

	// Header and walked body must agree.
	assert.Equal(t, report.Summary.NumTracks, len(report.Tracks))
	assert.Equal(t, int64(len(data)), report.Summary.FileSize)
	assert.Equal(t, "SMF1", report.Summary.Format)
	assert.Equal(t, 1, report.Summary.SMFType)
	assert.Equal(t, 480, report.Summary.Division)
	assert.Equal(t, "PPQN", report.Summary.TimingType)

	require.Len(t, report.Tracks, 1)
	assert.Equal(t, "Lead", report.Tracks[0].Name)
	assert.True(t, report.Tracks[0].HasEndstamp)
	assert.Greater(t, report.Tracks[0].EventCount, 0)
}

func TestSMF1Warnings(t *testing.T) {
	t.Run("missing end of track", func(t *testing.T) {
		report := validate.Validate(smfFile(1, []byte{0x00, 0x90, 0x3c, 0x64, 0x00, 0x80, 0x3c, 0x00}))
		assert.True(t, report.Valid)
		require.Len(t, report.Warnings(), 1)
		assert.Contains(t, report.Warnings()[0].Message, "no end-of-track")
		assert.False(t, report.Tracks[0].HasEndstamp)
	})

	t.Run("data byte out of range", func(t *testing.T) {
		report := validate.Validate(smfFile(1, append([]byte{0x00, 0x90, 0x3c, 0xe0}, eotBody...)))
		assert.True(t, report.Valid)
		require.NotEmpty(t, report.Warnings())
		assert.Contains(t, report.Warnings()[0].Message, "out of range")
	})

	t.Run("unknown status stops the track", func(t *testing.T) {
		// A system-common byte ends the scan with a warning, not an error.
		report := validate.Validate(smfFile(1, []byte{
			0x00, 0x90, 0x3c, 0x64,
			0x00, 0xf1, 0x00,
			0x00, 0x80, 0x3c, 0x00,
		}))
		assert.True(t, report.Valid)
		assert.Empty(t, report.Errors())
		require.NotEmpty(t, report.Warnings())
		assert.Equal(t, 1, report.Tracks[0].EventCount)
	})

	t.Run("bytes after end of track", func(t *testing.T) {
		report := validate.Validate(smfFile(1, append(append([]byte{}, eotBody...), 0xde, 0xad)))
		assert.True(t, report.Valid)
		require.NotEmpty(t, report.Warnings())
		assert.Contains(t, report.Warnings()[0].Message, "after end-of-track")
	})
}

func TestSMF1Errors(t *testing.T) {
	t.Run("track count mismatch", func(t *testing.T) {
		report := validate.Validate(smfFile(2, eotBody))
		assert.False(t, report.Valid)
		assert.Equal(t, model.StatusFailed, report.Status)
		require.NotEmpty(t, report.Errors())
		assert.Contains(t, report.Errors()[0].Message, "found 1 MTrk")
		assert.Equal(t, int64(10), report.Errors()[0].Offset)
	})

	t.Run("truncated track chunk", func(t *testing.T) {
		data := smfFile(1, eotBody)
		report := validate.Validate(data[:len(data)-2])
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})

	t.Run("truncated event", func(t *testing.T) {
		report := validate.Validate(smfFile(1, []byte{0x00, 0x90, 0x3c}))
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})

	t.Run("zero declared tracks", func(t *testing.T) {
		report := validate.Validate(smfFile(0))
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})
}

func TestSMF1UnknownChunkSkipped(t *testing.T) {
	data := smfFile(1, eotBody)
	data = append(data, "XFIh"...)
	data = binary.BigEndian.AppendUint32(data, 2)
	data = append(data, 0x01, 0x02)

	report := validate.Validate(data)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors())

	var infos []model.ValidationIssue
	for _, issue := range report.Issues {
		if issue.Severity == model.SeverityInfo {
			infos = append(infos, issue)
		}
	}
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Message, "XFIh")
}

func TestOfficialContainerPartiallyValidated(t *testing.T) {
	report := validate.Validate(append([]byte("SMF2CON1"), make([]byte, 16)...))
	assert.True(t, report.Valid)
	assert.Equal(t, model.StatusPartiallyValidated, report.Status)
	assert.Empty(t, report.Errors())
	require.Len(t, report.Warnings(), 1)
	assert.Contains(t, report.Warnings()[0].Message, "SMF2CON1")
}

func TestValidClipAndContainer(t *testing.T) {
	song := demoSong()

	clip, err := ump.BuildClip(song, ump.BuildOptions{Key: "C", Metadata: `{}`})
	require.NoError(t, err)
	report := validate.Validate(clip)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())
	assert.Equal(t, 2, report.Summary.SMFType)
	require.Len(t, report.Tracks, 1)
	assert.True(t, report.Tracks[0].HasEndstamp)

	container, err := ump.BuildContainer(song, ump.BuildOptions{Key: "C", Metadata: `{}`})
	require.NoError(t, err)
	report = validate.Validate(container)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors())
	require.Len(t, report.Tracks, 2) // control clip + vocal clip
	for _, tr := range report.Tracks {
		assert.True(t, tr.HasEndstamp)
	}
}

func TestClipWarnings(t *testing.T) {
	t.Run("missing end of clip", func(t *testing.T) {
		buf := append([]byte{}, format.SigClip...)
		for _, w := range []uint32{0x004001e0, 0x40903c00, 100 << 25} {
			buf = binary.BigEndian.AppendUint32(buf, w)
		}
		report := validate.Validate(buf)
		assert.True(t, report.Valid)
		require.NotEmpty(t, report.Warnings())
		assert.Contains(t, report.Warnings()[0].Message, "End-of-Clip")
	})

	t.Run("stray bytes", func(t *testing.T) {
		buf := append([]byte{}, format.SigClip...)
		for _, w := range []uint32{0xf0210000, 0, 0, 0} {
			buf = binary.BigEndian.AppendUint32(buf, w)
		}
		buf = append(buf, 0x7f)
		report := validate.Validate(buf)
		assert.True(t, report.Valid)
		require.NotEmpty(t, report.Warnings())
		assert.Contains(t, report.Warnings()[0].Message, "stray bytes")
	})

	t.Run("truncated message is fatal", func(t *testing.T) {
		buf := append([]byte{}, format.SigClip...)
		buf = binary.BigEndian.AppendUint32(buf, 0x40903c00)
		report := validate.Validate(buf)
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})
}

func TestContainerValidation(t *testing.T) {
	t.Run("short prologue", func(t *testing.T) {
		report := validate.Validate(append([]byte{}, format.SigKtmidi...))
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})

	t.Run("zero tracks", func(t *testing.T) {
		buf := append([]byte{}, format.SigKtmidi...)
		buf = binary.BigEndian.AppendUint32(buf, 480)
		buf = binary.BigEndian.AppendUint32(buf, 0)
		report := validate.Validate(buf)
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})

	t.Run("non-positive division warns", func(t *testing.T) {
		buf := append([]byte{}, format.SigKtmidi...)
		buf = binary.BigEndian.AppendUint32(buf, 0)
		buf = binary.BigEndian.AppendUint32(buf, 1)
		buf = append(buf, format.SigClip...)
		for _, w := range []uint32{0xf0210000, 0, 0, 0} {
			buf = binary.BigEndian.AppendUint32(buf, w)
		}
		report := validate.Validate(buf)
		assert.True(t, report.Valid)
		assert.Equal(t, 480, report.Summary.Division)
		require.NotEmpty(t, report.Warnings())
		assert.Contains(t, report.Warnings()[0].Message, "deltaTimeSpec")
	})

	t.Run("missing embedded clip", func(t *testing.T) {
		buf := append([]byte{}, format.SigKtmidi...)
		buf = binary.BigEndian.AppendUint32(buf, 480)
		buf = binary.BigEndian.AppendUint32(buf, 2)
		buf = append(buf, format.SigClip...)
		for _, w := range []uint32{0xf0210000, 0, 0, 0} {
			buf = binary.BigEndian.AppendUint32(buf, w)
		}
		report := validate.Validate(buf)
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors())
	})
}

// Repeated validation of the same bytes yields identical reports and
// identical renderings.
func TestValidateIsIdempotent(t *testing.T) {
	song := demoSong()
	smfData, err := smf1.Build(song, smf1.BuildOptions{Key: "C", Metadata: `{}`})
	require.NoError(t, err)
	broken := smfFile(1, []byte{0x00, 0x90, 0x3c})

	for _, data := range [][]byte{smfData, broken, nil, []byte("junk")} {
		a := validate.Validate(data)
		b := validate.Validate(data)
		assert.True(t, reflect.DeepEqual(a, b))

		ja, err := validate.RenderJSON(a)
		require.NoError(t, err)
		jb, err := validate.RenderJSON(b)
		require.NoError(t, err)
		assert.Equal(t, ja, jb)
		assert.Equal(t, validate.RenderText(a), validate.RenderText(b))
	}
}

func TestRenderJSONKeyOrder(t *testing.T) {
	report := validate.Validate(smfFile(1, eotBody))
	data, err := validate.RenderJSON(report)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"valid":true,"status":"validated","summary":{"file_size":`), s)
	// Section order is fixed by the struct layout.
	assert.Less(t, strings.Index(s, `"summary"`), strings.Index(s, `"tracks"`))
	assert.Less(t, strings.Index(s, `"tracks"`), strings.Index(s, `"issues"`))
	// Compact rendering: no indentation whitespace.
	assert.NotContains(t, s, "\n")
	assert.NotContains(t, s, ": ")
}

func TestRenderText(t *testing.T) {
	report := validate.Validate(smfFile(1, append([]byte{
		0x00, 0xff, 0x03, 0x04, 'L', 'e', 'a', 'd',
		0x00, 0x90, 0x3c, 0x64, 0x00, 0x80, 0x3c, 0x00,
	}, eotBody...)))
	text := validate.RenderText(report)
	assert.Contains(t, text, "=== MIDI Validation Report ===")
	assert.Contains(t, text, "Format:     SMF1")
	assert.Contains(t, text, "--- Tracks ---")
	assert.Contains(t, text, "#0 Lead")
	assert.Contains(t, text, "Result: VALID\n")

	bad := validate.RenderText(validate.Validate(nil))
	assert.Contains(t, bad, "--- Errors ---")
	assert.Contains(t, bad, "Result: INVALID")

	partial := validate.RenderText(validate.Validate(append([]byte("SMF2CON1"), 0, 0, 0, 0)))
	assert.Contains(t, partial, "Result: VALID (partially validated)")
}
