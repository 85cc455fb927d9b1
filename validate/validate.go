// Package validate runs format-specific structural checks over raw MIDI
// buffers and produces a serializable report. Unlike the readers it
// never fails: every path, including garbage input, yields a report.
package validate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/format"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/smf1"
	"github.com/libraz/midi-sketch-sub003/ump"
)

// minFileSize is the smallest buffer worth routing to a format walk.
const minFileSize = 8

// Validate inspects data and returns a full structural report. The
// Valid flag is set explicitly by each per-format routine; issues are
// recorded in discovery order.
func Validate(data []byte) *model.MidiValidationReport {
	r := newBuilder(data)

	if len(data) < minFileSize {
		r.addError(-1, -1, fmt.Sprintf("file is %d bytes, too short to be a MIDI file", len(data)))
		r.report.Valid = false
		r.report.Status = model.StatusFailed
		return r.report
	}

	switch f := format.Detect(data); f {
	case format.SMF1:
		r.validateSMF1(data)
	case format.SMF2Clip:
		r.validateClip(data)
	case format.SMF2Ktmidi:
		r.validateContainer(data)
	case format.SMF2Container:
		// Detection only: the official container payload is not decoded,
		// so Valid=true here asserts less than it does elsewhere.
		r.addWarning(-1, -1, "SMF2CON1 container detected; payload validation is not implemented")
		r.report.Valid = true
		r.report.Status = model.StatusPartiallyValidated
	default:
		r.addError(-1, -1, "unknown file format: no recognized signature")
		r.report.Valid = false
		r.report.Status = model.StatusFailed
	}
	return r.report
}

// builder accumulates the report. It is threaded explicitly; there is no
// ambient report object.
type builder struct {
	report *model.MidiValidationReport
}

func newBuilder(data []byte) *builder {
	return &builder{report: &model.MidiValidationReport{
		Summary: model.ValidationSummary{
			FileSize: int64(len(data)),
			Format:   format.Detect(data).String(),
		},
		Tracks: []model.ValidatedTrack{},
		Issues: []model.ValidationIssue{},
	}}
}

func (b *builder) add(sev model.Severity, offset int64, track int, msg string) {
	b.report.Issues = append(b.report.Issues, model.ValidationIssue{
		Severity:   sev,
		Message:    msg,
		Offset:     offset,
		TrackIndex: track,
	})
}

func (b *builder) addInfo(offset int64, track int, msg string) {
	b.add(model.SeverityInfo, offset, track, msg)
}

func (b *builder) addWarning(offset int64, track int, msg string) {
	b.add(model.SeverityWarning, offset, track, msg)
}

func (b *builder) addError(offset int64, track int, msg string) {
	b.add(model.SeverityError, offset, track, msg)
}

func (b *builder) finish(fatal bool) {
	if fatal {
		b.report.Valid = false
		b.report.Status = model.StatusFailed
	} else {
		b.report.Valid = true
		b.report.Status = model.StatusValidated
	}
}

// ---- SMF1 ----

func (b *builder) validateSMF1(data []byte) {
	if len(data) < 14 {
		b.addError(0, -1, fmt.Sprintf("header needs 14 bytes, file has %d", len(data)))
		b.finish(true)
		return
	}
	hlen := binary.BigEndian.Uint32(data[4:])
	if hlen < 6 || int(hlen) > len(data)-8 {
		b.addError(4, -1, fmt.Sprintf("header chunk declares %d bytes", hlen))
		b.finish(true)
		return
	}
	smfType := binary.BigEndian.Uint16(data[8:])
	declared := int(binary.BigEndian.Uint16(data[10:]))
	division := binary.BigEndian.Uint16(data[12:])

	b.report.Summary.SMFType = int(smfType)
	b.report.Summary.NumTracks = declared
	b.report.Summary.Division = int(division)
	if division&0x8000 != 0 {
		b.report.Summary.TimingType = "SMPTE"
		b.report.Summary.TicksPerQN = 0
	} else {
		b.report.Summary.TimingType = "PPQN"
		b.report.Summary.TicksPerQN = int(division)
	}

	fatal := false
	if smfType > 2 {
		b.addError(8, -1, fmt.Sprintf("SMF type %d is not 0, 1 or 2", smfType))
		fatal = true
	}
	if declared == 0 {
		b.addError(10, -1, "header declares zero tracks")
		fatal = true
	}

	found := 0
	rest := data[8+int(hlen):]
	offset := int64(8 + int(hlen))
	for len(rest) > 0 {
		if len(rest) < 8 {
			b.addError(offset, -1, fmt.Sprintf("trailing %d bytes are not a chunk", len(rest)))
			fatal = true
			break
		}
		id := string(rest[:4])
		clen := binary.BigEndian.Uint32(rest[4:])
		if int(clen) > len(rest)-8 {
			b.addError(offset, -1, fmt.Sprintf("chunk %q declares %d bytes, only %d remain", id, clen, len(rest)-8))
			fatal = true
			break
		}
		if id != "MTrk" {
			b.addInfo(offset, -1, fmt.Sprintf("skipping unknown chunk %q (%d bytes)", id, clen))
		} else {
			if b.walkTrack(rest[8:8+int(clen)], found, offset+8) {
				fatal = true
			}
			found++
		}
		rest = rest[8+int(clen):]
		offset += 8 + int64(clen)
	}

	if found != declared {
		b.addError(10, -1, fmt.Sprintf("header declares %d tracks, found %d MTrk chunks", declared, found))
		fatal = true
	}
	b.finish(fatal)
}

// walkTrack runs the lenient event walk over one MTrk body. It reports
// whether a fatal structural break was recorded. Recoverable problems
// (out-of-range data bytes, unknown status, missing end-of-track) become
// warnings.
func (b *builder) walkTrack(body []byte, index int, base int64) bool {
	track := model.ValidatedTrack{Index: index, Length: uint32(len(body))}
	fatal := false

	lenient := func(offset int, msg string) error {
		b.addWarning(base+int64(offset), index, msg)
		return nil
	}

	c := smf1.NewCursor(body)
	for c.Remaining() > 0 {
		e, err := smf1.ReadEvent(c, lenient)
		if errors.Is(err, smf1.ErrUnknownStatus) {
			b.addWarning(base+int64(c.Pos), index, err.Error())
			break
		}
		if err != nil {
			b.addError(base+int64(c.Pos), index, err.Error())
			fatal = true
			break
		}
		track.EventCount++
		if e.Status == 0xff && e.MetaType == 0x03 && track.Name == "" {
			track.Name = string(e.Payload)
		}
		if e.IsEndOfTrack() {
			track.HasEndstamp = true
			if c.Remaining() > 0 {
				b.addWarning(base+int64(c.Pos), index, fmt.Sprintf("%d bytes after end-of-track", c.Remaining()))
			}
			break
		}
	}
	if !track.HasEndstamp && !fatal {
		b.addWarning(base+int64(len(body)), index, "track has no end-of-track meta event")
	}
	b.report.Tracks = append(b.report.Tracks, track)
	return fatal
}

// ---- SMF2 clip ----

func (b *builder) validateClip(data []byte) {
	b.report.Summary.SMFType = 2
	b.report.Summary.NumTracks = 1
	b.report.Summary.Division = constants.DefaultDivision
	b.report.Summary.TimingType = "PPQN"
	b.report.Summary.TicksPerQN = constants.DefaultDivision

	fatal := b.walkClipWords(data[len(format.SigClip):], 0, int64(len(format.SigClip)))
	b.finish(fatal)
}

// walkClipWords runs the counting pass over one clip body. Shares the
// word-size dispatch with the reader and writer via ump.Classify.
func (b *builder) walkClipWords(body []byte, index int, base int64) bool {
	track := model.ValidatedTrack{Index: index, Length: uint32(len(body))}
	fatal := false

	if len(body)%4 != 0 {
		b.addWarning(base+int64(len(body)/4*4), index, fmt.Sprintf("clip ends with %d stray bytes", len(body)%4))
		body = body[:len(body)/4*4]
	}
	for off := 0; off < len(body); {
		first := binary.BigEndian.Uint32(body[off:])
		info := ump.Classify(first)
		if off+info.Words*4 > len(body) {
			b.addError(base+int64(off), index, fmt.Sprintf("message type 0x%X needs %d words, clip ends", info.MessageType, info.Words))
			fatal = true
			break
		}
		if info.IsEndOfClip {
			track.HasEndstamp = true
			break
		}
		if info.IsChannelVoice {
			track.EventCount++
		}
		off += info.Words * 4
	}
	if !track.HasEndstamp && !fatal {
		b.addWarning(base+int64(len(body)), index, "clip has no End-of-Clip marker")
	}
	b.report.Tracks = append(b.report.Tracks, track)
	return fatal
}

// ---- ktmidi container ----

func (b *builder) validateContainer(data []byte) {
	const prologue = 24
	b.report.Summary.SMFType = 2

	if len(data) < prologue {
		b.addError(0, -1, fmt.Sprintf("container prologue needs %d bytes, file has %d", prologue, len(data)))
		b.finish(true)
		return
	}
	deltaTimeSpec := int32(binary.BigEndian.Uint32(data[16:]))
	declared := int32(binary.BigEndian.Uint32(data[20:]))
	b.addInfo(16, -1, fmt.Sprintf("ktmidi container: deltaTimeSpec=%d, tracks=%d", deltaTimeSpec, declared))

	division := int(deltaTimeSpec)
	if deltaTimeSpec <= 0 {
		b.addWarning(16, -1, fmt.Sprintf("non-positive deltaTimeSpec %d, assuming %d", deltaTimeSpec, constants.DefaultDivision))
		division = constants.DefaultDivision
	}
	b.report.Summary.NumTracks = int(declared)
	b.report.Summary.Division = division
	b.report.Summary.TimingType = "PPQN"
	b.report.Summary.TicksPerQN = division

	if declared <= 0 {
		b.addError(20, -1, fmt.Sprintf("container declares %d tracks", declared))
		b.finish(true)
		return
	}

	fatal := false
	rest := data[prologue:]
	offset := int64(prologue)
	for i := 0; i < int(declared); i++ {
		if !bytes.HasPrefix(rest, format.SigClip) {
			b.addError(offset, i, "embedded clip does not start with SMF2CLIP")
			fatal = true
			break
		}
		body := rest[len(format.SigClip):]
		end := bytes.Index(body, format.SigClip)
		if end < 0 {
			end = len(body)
		}
		if b.walkClipWords(body[:end], i, offset+int64(len(format.SigClip))) {
			fatal = true
		}
		rest = body[end:]
		offset += int64(len(format.SigClip) + end)
	}
	b.finish(fatal)
}
