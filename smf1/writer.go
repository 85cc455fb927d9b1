package smf1

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/util"
)

// BuildOptions carries everything the writer needs besides the Song
// itself. Metadata is the already-encoded opaque JSON string; empty
// means none is embedded.
type BuildOptions struct {
	Key      string
	Metadata string
}

// Build encodes a full arrangement: a control track (tempo, metadata
// marker, section markers) followed by the melodic tracks in order, with
// drums last. Transposition by key and modulation amount happens here
// and only here; drum-channel events are never transposed.
func Build(song *model.Song, opts BuildOptions) ([]byte, error) {
	keyOff, err := model.KeyOffset(opts.Key)
	if err != nil {
		return nil, err
	}

	tracks := orderTracks(song)
	buf := appendHeader(nil, 1, uint16(len(tracks)+1), constants.DefaultDivision)

	control, err := buildControlTrack(song, opts.Metadata)
	if err != nil {
		return nil, err
	}
	buf = appendTrackChunk(buf, control)

	for _, t := range tracks {
		body, err := buildNoteTrack(song, t, keyOff)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
		buf = appendTrackChunk(buf, body)
	}
	return buf, nil
}

// BuildPreview encodes a minimal file: the vocal track plus a
// synthesized root-note bass line (one note per bar, an octave below the
// bar's first vocal pitch). No drums and no metadata.
func BuildPreview(song *model.Song, key string) ([]byte, error) {
	keyOff, err := model.KeyOffset(key)
	if err != nil {
		return nil, err
	}
	vocal := song.TrackByRole(model.RoleVocal)
	if vocal == nil {
		return nil, fmt.Errorf("song has no vocal track")
	}

	bass := synthesizeBass(vocal)
	buf := appendHeader(nil, 1, 3, constants.DefaultDivision)

	control, err := buildControlTrack(song, "")
	if err != nil {
		return nil, err
	}
	buf = appendTrackChunk(buf, control)

	for _, t := range []model.Track{*vocal, bass} {
		body, err := buildNoteTrack(song, t, keyOff)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
		buf = appendTrackChunk(buf, body)
	}
	return buf, nil
}

func synthesizeBass(vocal *model.Track) model.Track {
	const barTicks = 4 * constants.DefaultDivision
	bass := model.Track{Name: "Preview Bass", Role: model.RoleBass, Channel: 1, Program: 33}
	byBar := make(map[uint32]uint8)
	for _, n := range vocal.Notes {
		bar := n.StartTick / barTicks
		if _, ok := byBar[bar]; !ok {
			byBar[bar] = n.Pitch
		}
	}
	for _, bar := range util.GetKeys(byBar) {
		root := int(byBar[bar]) - 12
		bass.Notes = append(bass.Notes, model.NoteEvent{
			StartTick: bar * barTicks,
			Duration:  barTicks,
			Pitch:     uint8(util.Clamp(root, 0, 127)),
			Velocity:  80,
		})
	}
	return bass
}

// orderTracks returns the song's tracks with drum tracks moved last.
func orderTracks(song *model.Song) []model.Track {
	var melodic, drums []model.Track
	for _, t := range song.Tracks {
		if t.Channel == constants.DrumChannel {
			drums = append(drums, t)
		} else {
			melodic = append(melodic, t)
		}
	}
	return append(melodic, drums...)
}

func appendHeader(dst []byte, smfType, numTracks, division uint16) []byte {
	dst = append(dst, "MThd"...)
	dst = binary.BigEndian.AppendUint32(dst, 6)
	dst = binary.BigEndian.AppendUint16(dst, smfType)
	dst = binary.BigEndian.AppendUint16(dst, numTracks)
	dst = binary.BigEndian.AppendUint16(dst, division)
	return dst
}

func appendTrackChunk(dst, body []byte) []byte {
	dst = append(dst, "MTrk"...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}

func appendMeta(dst []byte, metaType byte, payload []byte) ([]byte, error) {
	dst = append(dst, 0xff, metaType)
	dst, err := AppendVLQ(dst, uint32(len(payload)))
	if err != nil {
		return nil, err
	}
	return append(dst, payload...), nil
}

func buildControlTrack(song *model.Song, metadata string) ([]byte, error) {
	var body []byte
	var err error

	body = append(body, 0x00)
	if body, err = appendMeta(body, 0x03, []byte("Control")); err != nil {
		return nil, err
	}

	bpm := song.BPM
	if bpm <= 0 {
		bpm = constants.DefaultBPM
	}
	usPerQN := uint32(math.Round(60000000.0 / bpm))
	body = append(body, 0x00)
	if body, err = appendMeta(body, 0x51, []byte{byte(usPerQN >> 16), byte(usPerQN >> 8), byte(usPerQN)}); err != nil {
		return nil, err
	}

	body = append(body, 0x00)
	if body, err = appendMeta(body, 0x58, []byte{4, 2, 24, 8}); err != nil {
		return nil, err
	}

	// The metadata marker sits at tick zero of the first track so the
	// reader's capture rule finds it deterministically.
	if metadata != "" {
		body = append(body, 0x00)
		if body, err = appendMeta(body, 0x06, []byte(constants.MetadataPrefix+metadata)); err != nil {
			return nil, err
		}
	}

	lastTick := uint32(0)
	for _, s := range song.Sections {
		body, err = AppendVLQ(body, s.Tick-lastTick)
		if err != nil {
			return nil, err
		}
		if body, err = appendMeta(body, 0x06, []byte(s.Name)); err != nil {
			return nil, err
		}
		lastTick = s.Tick
	}

	body = append(body, 0x00)
	return appendMeta(body, 0x2f, nil)
}

type noteEdge struct {
	tick  uint32
	on    bool
	pitch uint8
	vel   uint8
}

func buildNoteTrack(song *model.Song, t model.Track, keyOff int) ([]byte, error) {
	var body []byte
	var err error

	body = append(body, 0x00)
	if body, err = appendMeta(body, 0x03, []byte(t.Name)); err != nil {
		return nil, err
	}
	if t.Channel != constants.DrumChannel {
		body = append(body, 0x00, 0xc0|t.Channel&0x0f, t.Program&0x7f)
	}

	edges := make([]noteEdge, 0, len(t.Notes)*2)
	for _, n := range t.Notes {
		pitch := song.TransposedPitch(&t, n.Pitch, n.StartTick, keyOff)
		edges = append(edges, noteEdge{tick: n.StartTick, on: true, pitch: pitch, vel: n.Velocity & 0x7f})
		edges = append(edges, noteEdge{tick: n.StartTick + n.Duration, on: false, pitch: pitch})
	}
	// Offs sort before ons at the same tick so retriggered notes are not
	// cut short.
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].tick != edges[j].tick {
			return edges[i].tick < edges[j].tick
		}
		return !edges[i].on && edges[j].on
	})

	lastTick := uint32(0)
	for _, edge := range edges {
		body, err = AppendVLQ(body, edge.tick-lastTick)
		if err != nil {
			return nil, err
		}
		lastTick = edge.tick
		if edge.on {
			body = append(body, 0x90|t.Channel&0x0f, edge.pitch, edge.vel)
		} else {
			body = append(body, 0x80|t.Channel&0x0f, edge.pitch, 0x00)
		}
	}

	body = append(body, 0x00)
	return appendMeta(body, 0x2f, nil)
}

