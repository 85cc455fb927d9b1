package sketch

// chord is a root offset in semitones from the key center plus a triad
// quality.
type chord struct {
	root  int
	minor bool
}

// progressions are four-bar loops, indexed by blueprint ID modulo the
// table size. Roots are semitones above the tonic.
var progressions = [][]chord{
	{{0, false}, {9, true}, {5, false}, {7, false}},  // I vi IV V
	{{0, false}, {5, false}, {9, true}, {7, false}},  // I IV vi V
	{{9, true}, {5, false}, {0, false}, {7, false}},  // vi IV I V
	{{0, false}, {7, false}, {9, true}, {5, false}},  // I V vi IV
}

// style controls the arrangement skeleton.
type style struct {
	sections     []sectionSpec
	vocalProgram uint8
	chordProgram uint8
	bassProgram  uint8
	drumPattern  []drumHit
}

type sectionSpec struct {
	name string
	bars int
}

// drumHit is one hit per bar position, in sixteenth-note slots.
type drumHit struct {
	slot  int
	pitch uint8 // GM percussion key
}

var styles = map[string]style{
	"pop": {
		sections: []sectionSpec{
			{"Intro", 2}, {"Verse", 8}, {"Chorus", 8}, {"Verse", 8}, {"Chorus", 8}, {"Outro", 2},
		},
		vocalProgram: 73, // flute stands in for the vocal line
		chordProgram: 4,  // electric piano
		bassProgram:  33,
		drumPattern: []drumHit{
			{0, 36}, {4, 38}, {8, 36}, {10, 36}, {12, 38},
			{0, 42}, {2, 42}, {4, 42}, {6, 42}, {8, 42}, {10, 42}, {12, 42}, {14, 42},
		},
	},
	"ballad": {
		sections: []sectionSpec{
			{"Intro", 4}, {"Verse", 8}, {"Chorus", 8}, {"Bridge", 4}, {"Chorus", 8}, {"Outro", 4},
		},
		vocalProgram: 73,
		chordProgram: 0, // acoustic piano
		bassProgram:  32,
		drumPattern: []drumHit{
			{0, 36}, {8, 38}, {4, 42}, {12, 42},
		},
	},
	"edm": {
		sections: []sectionSpec{
			{"Intro", 4}, {"Build", 8}, {"Drop", 8}, {"Break", 4}, {"Drop", 8}, {"Outro", 4},
		},
		vocalProgram: 81, // square lead
		chordProgram: 90, // pad
		bassProgram:  38,
		drumPattern: []drumHit{
			{0, 36}, {4, 36}, {8, 36}, {12, 36},
			{2, 42}, {6, 42}, {10, 42}, {14, 42},
			{4, 39}, {12, 39},
		},
	},
}

// mood shapes dynamics and register.
type mood struct {
	bpm         float64
	baseVel     uint8
	octaveShift int
	density     float64 // probability of subdividing a melody beat
}

var moods = map[string]mood{
	"bright": {bpm: 128, baseVel: 96, octaveShift: 0, density: 0.6},
	"dark":   {bpm: 100, baseVel: 80, octaveShift: -12, density: 0.4},
	"calm":   {bpm: 84, baseVel: 64, octaveShift: 0, density: 0.25},
}
