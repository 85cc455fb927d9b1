package model

// Severity of a validation issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidationStatus qualifies the Valid flag. PartiallyValidated marks
// dialects we only recognize (SMF2CON1): the file passed every check we
// ran, but we did not decode its payload, so Valid=true is weaker there.
type ValidationStatus string

const (
	StatusValidated          ValidationStatus = "validated"
	StatusPartiallyValidated ValidationStatus = "partially_validated"
	StatusFailed             ValidationStatus = "failed"
)

// ValidationIssue is one recorded finding. Offset is a byte position in
// the input, -1 when not applicable. TrackIndex is -1 when the issue is
// not track-specific.
type ValidationIssue struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Offset     int64    `json:"offset"`
	TrackIndex int      `json:"track"`
}

// ValidatedTrack summarizes one track chunk the validator walked.
type ValidatedTrack struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Length      uint32 `json:"length"`
	EventCount  int    `json:"event_count"`
	HasEndstamp bool   `json:"has_end_of_track"`
}

// ValidationSummary holds file-level facts gathered before or during the
// structural walk.
type ValidationSummary struct {
	FileSize   int64  `json:"file_size"`
	Format     string `json:"format"`
	SMFType    int    `json:"smf_type"`
	NumTracks  int    `json:"num_tracks"`
	Division   int    `json:"division"`
	TimingType string `json:"timing_type"`
	TicksPerQN int    `json:"ticks_per_quarter"`
}

// MidiValidationReport is the validator's result. Valid is set
// explicitly by the per-format routine: no Error issue is necessary for
// Valid=true but not sufficient on its own (the SMF2CON1 path reports
// Valid=true with only a Warning).
//
// Field order here fixes the JSON key order; external tooling diffs the
// rendered output byte for byte.
type MidiValidationReport struct {
	Valid   bool              `json:"valid"`
	Status  ValidationStatus  `json:"status"`
	Summary ValidationSummary `json:"summary"`
	Tracks  []ValidatedTrack  `json:"tracks"`
	Issues  []ValidationIssue `json:"issues"`
}

// Errors returns the recorded issues with Error severity.
func (r *MidiValidationReport) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns the recorded issues with Warning severity.
func (r *MidiValidationReport) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

func (r *MidiValidationReport) filter(s Severity) []ValidationIssue {
	var res []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			res = append(res, issue)
		}
	}
	return res
}
