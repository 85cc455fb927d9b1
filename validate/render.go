package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/libraz/midi-sketch-sub003/model"
)

// RenderJSON serializes the report as one compact JSON object. Key
// order follows the struct field order (valid, status, summary, tracks,
// issues) and is part of the contract: external tooling diffs this
// output byte for byte.
func RenderJSON(r *model.MidiValidationReport) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return data, nil
}

// RenderText formats the report as the multi-section human-readable
// listing. The layout is stable for the same report.
func RenderText(r *model.MidiValidationReport) string {
	var sb strings.Builder

	sb.WriteString("=== MIDI Validation Report ===\n")
	fmt.Fprintf(&sb, "File size:  %d bytes\n", r.Summary.FileSize)
	fmt.Fprintf(&sb, "Format:     %s\n", r.Summary.Format)
	fmt.Fprintf(&sb, "SMF type:   %d\n", r.Summary.SMFType)
	fmt.Fprintf(&sb, "Tracks:     %d\n", r.Summary.NumTracks)
	fmt.Fprintf(&sb, "Division:   %d (%s)\n", r.Summary.Division, r.Summary.TimingType)
	fmt.Fprintf(&sb, "Ticks/QN:   %d\n", r.Summary.TicksPerQN)

	if len(r.Tracks) > 0 {
		sb.WriteString("\n--- Tracks ---\n")
		for _, t := range r.Tracks {
			name := t.Name
			if name == "" {
				name = "(unnamed)"
			}
			end := "no end marker"
			if t.HasEndstamp {
				end = "end marker ok"
			}
			fmt.Fprintf(&sb, "  #%d %s: %d bytes, %d events, %s\n", t.Index, name, t.Length, t.EventCount, end)
		}
	}

	warnings := r.Warnings()
	if len(warnings) > 0 {
		sb.WriteString("\n--- Warnings ---\n")
		for _, issue := range warnings {
			writeIssue(&sb, issue)
		}
	}

	errs := r.Errors()
	if len(errs) > 0 {
		sb.WriteString("\n--- Errors ---\n")
		for _, issue := range errs {
			writeIssue(&sb, issue)
		}
	}

	sb.WriteString("\n")
	if r.Valid {
		if r.Status == model.StatusPartiallyValidated {
			sb.WriteString("Result: VALID (partially validated)\n")
		} else {
			sb.WriteString("Result: VALID\n")
		}
	} else {
		sb.WriteString("Result: INVALID\n")
	}
	return sb.String()
}

func writeIssue(sb *strings.Builder, issue model.ValidationIssue) {
	var loc string
	if issue.Offset >= 0 {
		loc = fmt.Sprintf(" @%d", issue.Offset)
	}
	if issue.TrackIndex >= 0 {
		loc += fmt.Sprintf(" track %d", issue.TrackIndex)
	}
	fmt.Fprintf(sb, "  %s%s\n", issue.Message, loc)
}
