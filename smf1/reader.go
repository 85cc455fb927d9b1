package smf1

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/model"
)

const headerLen = 14 // "MThd" + length + format + ntracks + division

// Read decodes a whole SMF1 buffer into a ParsedMidi. It is strict: the
// first structural violation aborts the decode with a descriptive error
// and no partial result. Lenient enumeration is the validate package's
// job.
func Read(data []byte) (*model.ParsedMidi, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("file is %d bytes, too short for an SMF header", len(data))
	}
	if string(data[:4]) != "MThd" {
		return nil, fmt.Errorf("bad header magic %q, want \"MThd\"", data[:4])
	}
	hlen := binary.BigEndian.Uint32(data[4:])
	if hlen < 6 {
		return nil, fmt.Errorf("header chunk declares %d bytes, want at least 6", hlen)
	}
	if int(hlen) > len(data)-8 {
		return nil, fmt.Errorf("header chunk declares %d bytes, only %d remain", hlen, len(data)-8)
	}
	smfType := binary.BigEndian.Uint16(data[8:])
	if smfType > 2 {
		return nil, fmt.Errorf("unsupported SMF type %d", smfType)
	}
	numTracks := binary.BigEndian.Uint16(data[10:])
	if numTracks == 0 {
		return nil, fmt.Errorf("header declares zero tracks")
	}
	division := binary.BigEndian.Uint16(data[12:])

	parsed := &model.ParsedMidi{
		Format:    uint8(smfType),
		Division:  division,
		BPM:       constants.DefaultBPM,
		NumTracks: int(numTracks),
	}
	if division&0x8000 != 0 {
		// SMPTE timing: keep the raw division, skip PPQN tempo math.
		parsed.SMPTE = true
	}

	rest := data[8+int(hlen):]
	offset := int64(8 + int(hlen))
	haveTempo := false
	for i := 0; i < int(numTracks); i++ {
		if len(rest) < 8 {
			return nil, fmt.Errorf("expected track %d at offset %d, file ends", i, offset)
		}
		if string(rest[:4]) != "MTrk" {
			return nil, fmt.Errorf("track %d at offset %d has magic %q, want \"MTrk\"", i, offset, rest[:4])
		}
		tlen := binary.BigEndian.Uint32(rest[4:])
		if int(tlen) > len(rest)-8 {
			return nil, fmt.Errorf("track %d declares %d bytes, only %d remain", i, tlen, len(rest)-8)
		}
		track, err := readTrack(rest[8:8+int(tlen)], parsed, &haveTempo)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		parsed.Tracks = append(parsed.Tracks, track)
		rest = rest[8+int(tlen):]
		offset += 8 + int64(tlen)
	}
	return parsed, nil
}

type pendingNote struct {
	start    uint32
	velocity uint8
}

func readTrack(data []byte, parsed *model.ParsedMidi, haveTempo *bool) (model.ParsedTrack, error) {
	var track model.ParsedTrack
	pending := make(map[uint8]pendingNote)
	haveChannel := false

	c := NewCursor(data)
	for c.Remaining() > 0 {
		e, err := ReadEvent(c, Strict)
		if err != nil {
			return track, err
		}
		switch {
		case e.Status == 0xff:
			if handleMeta(&e, &track, parsed, haveTempo) {
				return track, nil // end of track
			}
		case e.IsChannel():
			if !haveChannel {
				track.Channel = e.Channel()
				haveChannel = true
			}
			switch e.Status & 0xf0 {
			case 0x90:
				pitch, vel := e.Data[0], e.Data[1]
				if vel == 0 {
					closeNote(&track, pending, pitch, e.Tick)
				} else {
					pending[pitch] = pendingNote{start: e.Tick, velocity: vel}
				}
			case 0x80:
				closeNote(&track, pending, e.Data[0], e.Tick)
			case 0xc0:
				if track.Program == 0 {
					track.Program = e.Data[0]
				}
			}
		}
	}
	return track, nil
}

// handleMeta applies a meta event to the track/file state. It reports
// true for end-of-track.
func handleMeta(e *Event, track *model.ParsedTrack, parsed *model.ParsedMidi, haveTempo *bool) bool {
	switch e.MetaType {
	case 0x03:
		if len(e.Payload) > 0 && track.Name == "" {
			// Raw payload bytes, no encoding conversion.
			track.Name = string(e.Payload)
		}
	case 0x06:
		if s := string(e.Payload); strings.HasPrefix(s, constants.MetadataPrefix) {
			parsed.Metadata = strings.TrimPrefix(s, constants.MetadataPrefix)
		}
	case 0x51:
		if len(e.Payload) == 3 && !*haveTempo && !parsed.SMPTE {
			usPerQN := uint32(e.Payload[0])<<16 | uint32(e.Payload[1])<<8 | uint32(e.Payload[2])
			if usPerQN > 0 {
				parsed.BPM = 60000000.0 / float64(usPerQN)
				*haveTempo = true
			}
		}
	case 0x2f:
		return true
	}
	return false
}

func closeNote(track *model.ParsedTrack, pending map[uint8]pendingNote, pitch uint8, tick uint32) {
	p, ok := pending[pitch]
	if !ok {
		return
	}
	delete(pending, pitch)
	track.Notes = append(track.Notes, model.ParsedNote{
		StartTick: p.start,
		Duration:  tick - p.start,
		Pitch:     pitch,
		Velocity:  p.velocity,
	})
}
