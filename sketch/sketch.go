// Package sketch turns a GenerationConfig into an in-memory Song. The
// same config always produces the same Song; everything random flows
// from the seeded source. Pitches are generated in C — transposition is
// the writers' job.
package sketch

import (
	"fmt"
	"math/rand"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/util"
)

const (
	barTicks  = 4 * constants.DefaultDivision
	beatTicks = constants.DefaultDivision
)

// Styles lists the known style names.
func Styles() []string {
	return util.GetKeys(styles)
}

// Moods lists the known mood names.
func Moods() []string {
	return util.GetKeys(moods)
}

// Generate builds the arrangement described by config.
func Generate(config model.GenerationConfig) (*model.Song, error) {
	st, ok := styles[config.Style]
	if !ok {
		return nil, fmt.Errorf("unknown style %q (have %v)", config.Style, Styles())
	}
	md, ok := moods[config.Mood]
	if !ok {
		return nil, fmt.Errorf("unknown mood %q (have %v)", config.Mood, Moods())
	}
	if _, err := model.KeyOffset(config.Key); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(config.Seed))
	// Blueprint IDs wrap around the table; embedded metadata can carry
	// negative ones and Go's % keeps the dividend's sign.
	idx := config.BlueprintID % len(progressions)
	if idx < 0 {
		idx += len(progressions)
	}
	prog := progressions[idx]

	song := &model.Song{BPM: config.BPM}
	if song.BPM <= 0 {
		song.BPM = md.bpm
	}

	totalBars := 0
	for _, sec := range st.sections {
		song.Sections = append(song.Sections, model.SectionMark{
			Tick: uint32(totalBars * barTicks),
			Name: sec.name,
		})
		totalBars += sec.bars
	}

	// Odd blueprints modulate up two semitones for the final third of
	// the song.
	if config.BlueprintID%2 != 0 {
		song.ModulationAmount = 2
		song.ModulationTick = uint32(totalBars * barTicks * 2 / 3)
	}

	song.Tracks = []model.Track{
		vocalTrack(rng, st, md, prog, totalBars),
		chordTrack(st, md, prog, totalBars),
		bassTrack(rng, st, md, prog, totalBars),
		drumTrack(st, md, totalBars),
	}
	return song, nil
}

func chordAt(prog []chord, bar int) chord {
	return prog[bar%len(prog)]
}

// triad returns the three chord tones around middle C.
func triad(c chord) [3]int {
	third := 4
	if c.minor {
		third = 3
	}
	root := 60 + c.root
	return [3]int{root, root + third, root + 7}
}

func vocalTrack(rng *rand.Rand, st style, md mood, prog []chord, totalBars int) model.Track {
	t := model.Track{Name: "Vocal", Role: model.RoleVocal, Channel: 0, Program: st.vocalProgram}
	for bar := 0; bar < totalBars; bar++ {
		tones := triad(chordAt(prog, bar))
		for beat := 0; beat < 4; beat++ {
			start := uint32(bar*barTicks + beat*beatTicks)
			pitch := tones[rng.Intn(3)] + 12 + md.octaveShift
			dur := uint32(beatTicks)
			if rng.Float64() < md.density {
				dur = beatTicks / 2
			}
			t.Notes = append(t.Notes, model.NoteEvent{
				StartTick: start,
				Duration:  dur,
				Pitch:     uint8(util.Clamp(pitch, 0, 127)),
				Velocity:  jitterVel(rng, md.baseVel, 8),
			})
		}
	}
	return t
}

func chordTrack(st style, md mood, prog []chord, totalBars int) model.Track {
	t := model.Track{Name: "Chords", Role: model.RoleChord, Channel: 2, Program: st.chordProgram}
	for bar := 0; bar < totalBars; bar++ {
		tones := triad(chordAt(prog, bar))
		for _, p := range tones {
			t.Notes = append(t.Notes, model.NoteEvent{
				StartTick: uint32(bar * barTicks),
				Duration:  barTicks,
				Pitch:     uint8(util.Clamp(p+md.octaveShift, 0, 127)),
				Velocity:  md.baseVel - 16,
			})
		}
	}
	return t
}

func bassTrack(rng *rand.Rand, st style, md mood, prog []chord, totalBars int) model.Track {
	t := model.Track{Name: "Bass", Role: model.RoleBass, Channel: 1, Program: st.bassProgram}
	for bar := 0; bar < totalBars; bar++ {
		root := triad(chordAt(prog, bar))[0] - 24
		for beat := 0; beat < 4; beat++ {
			pitch := root
			// Walk to the fifth now and then on weak beats.
			if beat%2 == 1 && rng.Float64() < 0.3 {
				pitch += 7
			}
			t.Notes = append(t.Notes, model.NoteEvent{
				StartTick: uint32(bar*barTicks + beat*beatTicks),
				Duration:  beatTicks,
				Pitch:     uint8(util.Clamp(pitch, 0, 127)),
				Velocity:  jitterVel(rng, md.baseVel, 4),
			})
		}
	}
	return t
}

func drumTrack(st style, md mood, totalBars int) model.Track {
	t := model.Track{Name: "Drums", Role: model.RoleDrums, Channel: constants.DrumChannel}
	slot := barTicks / 16
	for bar := 0; bar < totalBars; bar++ {
		for _, hit := range st.drumPattern {
			t.Notes = append(t.Notes, model.NoteEvent{
				StartTick: uint32(bar*barTicks + hit.slot*slot),
				Duration:  uint32(slot),
				Pitch:     hit.pitch,
				Velocity:  md.baseVel,
			})
		}
	}
	return t
}

func jitterVel(rng *rand.Rand, base uint8, spread int) uint8 {
	v := int(base) + rng.Intn(2*spread+1) - spread
	return uint8(util.Clamp(v, 1, 127))
}
