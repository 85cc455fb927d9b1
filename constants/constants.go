package constants

import "os"

// DefaultDivision is the tick resolution (PPQN) used for every file we
// write and assumed for files that omit one.
const DefaultDivision = 480

// DefaultBPM applies when a file carries no tempo meta event.
const DefaultBPM = 120.0

// DrumChannel is the General MIDI percussion channel. Events on it are
// never transposed.
const DrumChannel = 9

// MetadataPrefix tags the marker meta event (SMF1) and SysEx8 payload
// (UMP) that carry our embedded generation metadata. Payloads without the
// prefix belong to other tools and are ignored.
const MetadataPrefix = "MIDISKETCH1:"

// DefaultOutFile is where generate/regenerate write when --out is not given.
const DefaultOutFile = "regenerated.mid"

func GetOutDir() string {
	if path := os.Getenv("SKETCH_OUT_PATH"); path != "" {
		return path
	}
	return "."
}
