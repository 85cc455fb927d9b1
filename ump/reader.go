package ump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/format"
	"github.com/libraz/midi-sketch-sub003/model"
)

// containerPrologue is the ktmidi signature plus deltaTimeSpec and track
// count words.
const containerPrologue = 16 + 4 + 4

// IsFormat reports whether data is one of the MIDI 2.0 layouts this
// package decodes.
func IsFormat(data []byte) bool {
	f := format.Detect(data)
	return f == format.SMF2Clip || f == format.SMF2Ktmidi
}

// Read decodes a bare clip or a ktmidi container into a ParsedMidi2.
// Channel-voice content is counted per clip, not decoded note by note;
// tempo and embedded metadata are extracted along the way.
func Read(data []byte) (*model.ParsedMidi2, error) {
	switch format.Detect(data) {
	case format.SMF2Clip:
		return readClipFile(data)
	case format.SMF2Ktmidi:
		return readContainer(data)
	default:
		return nil, fmt.Errorf("buffer is not a MIDI 2.0 clip or ktmidi container")
	}
}

func readClipFile(data []byte) (*model.ParsedMidi2, error) {
	parsed := &model.ParsedMidi2{
		Division:  constants.DefaultDivision,
		BPM:       constants.DefaultBPM,
		NumTracks: 1,
	}
	scan, err := walkClip(data[len(format.SigClip):])
	if err != nil {
		return nil, err
	}
	applyScan(parsed, scan)
	parsed.EventCounts = []int{scan.events}
	return parsed, nil
}

func readContainer(data []byte) (*model.ParsedMidi2, error) {
	if len(data) < containerPrologue {
		return nil, fmt.Errorf("container is %d bytes, prologue needs %d", len(data), containerPrologue)
	}
	deltaTimeSpec := int32(binary.BigEndian.Uint32(data[16:]))
	numTracks := int32(binary.BigEndian.Uint32(data[20:]))
	if numTracks <= 0 {
		return nil, fmt.Errorf("container declares %d tracks", numTracks)
	}

	parsed := &model.ParsedMidi2{
		Division:  constants.DefaultDivision,
		BPM:       constants.DefaultBPM,
		NumTracks: int(numTracks),
	}
	if deltaTimeSpec > 0 {
		parsed.Division = uint32(deltaTimeSpec)
	}

	rest := data[containerPrologue:]
	for i := 0; i < int(numTracks); i++ {
		if !bytes.HasPrefix(rest, format.SigClip) {
			return nil, fmt.Errorf("embedded clip %d does not start with SMF2CLIP", i)
		}
		body := rest[len(format.SigClip):]
		// A clip ends at the next embedded signature or at end of file.
		end := bytes.Index(body, format.SigClip)
		if end < 0 {
			end = len(body)
		}
		scan, err := walkClip(body[:end])
		if err != nil {
			return nil, fmt.Errorf("embedded clip %d: %w", i, err)
		}
		applyScan(parsed, scan)
		parsed.EventCounts = append(parsed.EventCounts, scan.events)
		rest = body[end:]
	}
	return parsed, nil
}

type clipScan struct {
	events   int
	bpm      float64
	metadata string
	sawEnd   bool
}

func applyScan(parsed *model.ParsedMidi2, scan *clipScan) {
	if scan.bpm > 0 && parsed.BPM == constants.DefaultBPM {
		parsed.BPM = scan.bpm
	}
	if scan.metadata != "" && parsed.Metadata == "" {
		parsed.Metadata = scan.metadata
	}
}

// walkClip counts channel-voice messages and extracts tempo and SysEx8
// metadata from a clip body. The walk stops at the End-of-Clip marker.
func walkClip(body []byte) (*clipScan, error) {
	if len(body)%4 != 0 {
		return nil, fmt.Errorf("clip body is %d bytes, not a whole number of words", len(body))
	}
	scan := &clipScan{}
	var sysex []byte
	for off := 0; off < len(body); {
		first := binary.BigEndian.Uint32(body[off:])
		info := Classify(first)
		if off+info.Words*4 > len(body) {
			return nil, fmt.Errorf("message type 0x%X at offset %d needs %d words, clip ends", info.MessageType, off, info.Words)
		}
		words := make([]uint32, info.Words)
		for w := range words {
			words[w] = binary.BigEndian.Uint32(body[off+w*4:])
		}
		if info.IsEndOfClip {
			scan.sawEnd = true
			break
		}
		if info.IsChannelVoice {
			scan.events++
		}
		switch info.MessageType {
		case mtFlexData:
			if bpm, ok := flexTempo(words); ok && scan.bpm == 0 {
				scan.bpm = bpm
			}
		case mtData128:
			sysex = appendSysex8(sysex, words)
		}
		off += info.Words * 4
	}
	if s := string(sysex); strings.HasPrefix(s, constants.MetadataPrefix) {
		scan.metadata = strings.TrimPrefix(s, constants.MetadataPrefix)
	}
	return scan, nil
}

// flexTempo decodes a Flex Data Set Tempo message: status bank 0,
// status 0, second word counting 10ns units per quarter note.
func flexTempo(words []uint32) (float64, bool) {
	if len(words) < 2 {
		return 0, false
	}
	statusBank := uint8(words[0] >> 8)
	status := uint8(words[0])
	if statusBank != 0x00 || status != 0x00 || words[1] == 0 {
		return 0, false
	}
	return 6e9 / float64(words[1]), true
}

// appendSysex8 collects the payload bytes of one Data128 packet. The
// first word carries the status nibble, the payload count, the stream ID
// and the first data byte; the remaining three words carry twelve more.
func appendSysex8(dst []byte, words []uint32) []byte {
	if len(words) < 4 {
		return dst
	}
	n := int(words[0] >> 16 & 0x0f)
	if n > 13 {
		n = 13
	}
	payload := make([]byte, 0, 13)
	payload = append(payload, byte(words[0]))
	for _, w := range words[1:4] {
		payload = append(payload, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	}
	return append(dst, payload[:n]...)
}
