package ump

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/format"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/util"
)

// BuildOptions mirrors the SMF1 writer's options: key for the
// encode-boundary transposition and the opaque metadata string.
type BuildOptions struct {
	Key      string
	Metadata string
}

// BuildContainer encodes a ktmidi container: one control clip (tempo,
// metadata) followed by one clip per song track, drums last, all at the
// default division.
func BuildContainer(song *model.Song, opts BuildOptions) ([]byte, error) {
	keyOff, err := model.KeyOffset(opts.Key)
	if err != nil {
		return nil, err
	}
	tracks := orderTracks(song)

	buf := append([]byte(nil), format.SigKtmidi...)
	buf = binary.BigEndian.AppendUint32(buf, constants.DefaultDivision)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(tracks)+1))

	buf = append(buf, format.SigClip...)
	buf = appendWords(buf, controlWords(song, opts.Metadata))

	for _, t := range tracks {
		words, err := trackWords(song, t, keyOff)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
		buf = append(buf, format.SigClip...)
		buf = appendWords(buf, words)
	}
	return buf, nil
}

// BuildClip encodes a single flat clip: tempo and metadata up front,
// then every track's events merged into one timeline.
func BuildClip(song *model.Song, opts BuildOptions) ([]byte, error) {
	keyOff, err := model.KeyOffset(opts.Key)
	if err != nil {
		return nil, err
	}

	words := controlWords(song, opts.Metadata)
	// Strip the control clip's End-of-Clip so the merged events follow.
	words = words[:len(words)-4]

	var all []noteEdge
	for _, t := range orderTracks(song) {
		all = append(all, trackEdges(song, t, keyOff)...)
	}
	sortEdges(all)
	body, err := edgeWords(all)
	if err != nil {
		return nil, err
	}
	words = append(words, body...)
	words = append(words, endOfClipWords()...)

	buf := append([]byte(nil), format.SigClip...)
	return appendWords(buf, words), nil
}

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

func appendWords(dst []byte, words []uint32) []byte {
	for _, w := range words {
		dst = binary.BigEndian.AppendUint32(dst, w)
	}
	return dst
}

func endOfClipWords() []uint32 {
	return []uint32{uint32(mtStream)<<28 | uint32(statusEndOfClip)<<16, 0, 0, 0}
}

// controlWords emits the tempo Flex Data message, the SysEx8 metadata
// stream, and the End-of-Clip marker.
func controlWords(song *model.Song, metadata string) []uint32 {
	bpm := song.BPM
	if bpm <= 0 {
		bpm = constants.DefaultBPM
	}
	tempoUnits := uint32(math.Round(6e9 / bpm))
	words := []uint32{uint32(mtFlexData) << 28, tempoUnits, 0, 0}

	if metadata != "" {
		words = append(words, sysex8Words([]byte(constants.MetadataPrefix+metadata))...)
	}
	return append(words, endOfClipWords()...)
}

// sysex8Words packs a payload into Data128 packets, thirteen bytes per
// packet, with start/continue/end statuses (or a single complete packet).
func sysex8Words(payload []byte) []uint32 {
	var words []uint32
	total := len(payload)
	for off := 0; off < total; off += 13 {
		chunk := payload[off : off+util.Min(13, total-off)]
		status := uint32(0x0) // complete
		switch {
		case total <= 13:
		case off == 0:
			status = 0x1 // start
		case off+13 >= total:
			status = 0x3 // end
		default:
			status = 0x2 // continue
		}
		var packet [16]byte
		packet[0] = byte(mtData128)<<4 | 0x0
		packet[1] = byte(status<<4) | byte(len(chunk))
		packet[2] = 0x00 // stream ID
		copy(packet[3:], chunk)
		for w := 0; w < 4; w++ {
			words = append(words, binary.BigEndian.Uint32(packet[w*4:]))
		}
	}
	return words
}

type noteEdge struct {
	tick    uint32
	on      bool
	channel uint8
	pitch   uint8
	vel     uint8
}

func trackEdges(song *model.Song, t model.Track, keyOff int) []noteEdge {
	edges := make([]noteEdge, 0, len(t.Notes)*2)
	for _, n := range t.Notes {
		pitch := song.TransposedPitch(&t, n.Pitch, n.StartTick, keyOff)
		edges = append(edges, noteEdge{tick: n.StartTick, on: true, channel: t.Channel, pitch: pitch, vel: n.Velocity})
		edges = append(edges, noteEdge{tick: n.StartTick + n.Duration, on: false, channel: t.Channel, pitch: pitch})
	}
	sortEdges(edges)
	return edges
}

func sortEdges(edges []noteEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].tick != edges[j].tick {
			return edges[i].tick < edges[j].tick
		}
		return !edges[i].on && edges[j].on
	})
}

func trackWords(song *model.Song, t model.Track, keyOff int) ([]uint32, error) {
	words, err := edgeWords(trackEdges(song, t, keyOff))
	if err != nil {
		return nil, err
	}
	return append(words, endOfClipWords()...), nil
}

// edgeWords emits a Delta Clockstamp utility message before each event
// and a MIDI 2.0 channel-voice note message for the event itself.
func edgeWords(edges []noteEdge) ([]uint32, error) {
	const maxDelta = 1<<20 - 1
	var words []uint32
	lastTick := uint32(0)
	for _, e := range edges {
		delta := e.tick - lastTick
		if delta > maxDelta {
			return nil, fmt.Errorf("delta %d ticks exceeds the 20-bit clockstamp", delta)
		}
		lastTick = e.tick
		words = append(words, uint32(mtUtility)<<28|0x4<<20|delta)

		opcode := uint32(0x8)
		var velocity uint32
		if e.on {
			opcode = 0x9
			velocity = uint32(e.vel) << 9 // 7-bit velocity scaled to 16 bits
		}
		first := uint32(mtMidi2Voice)<<28 | opcode<<20 | uint32(e.channel&0x0f)<<16 | uint32(e.pitch)<<8
		words = append(words, first, velocity<<16)
	}
	return words, nil
}
