package cmd

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/model"
)

var generateFlags struct {
	style     string
	mood      string
	key       string
	seed      int64
	bpm       float64
	blueprint int
	format    string
	preview   bool
	out       string
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.style, "style", "pop", "arrangement style (pop, ballad, edm)")
	f.StringVar(&generateFlags.mood, "mood", "bright", "mood preset (bright, dark, calm)")
	f.StringVar(&generateFlags.key, "key", "C", "key the output is transposed to")
	f.Int64Var(&generateFlags.seed, "seed", 0, "random seed (0 picks one)")
	f.Float64Var(&generateFlags.bpm, "bpm", 0, "tempo override (0 uses the mood's tempo)")
	f.IntVar(&generateFlags.blueprint, "blueprint", 0, "arrangement blueprint id")
	f.StringVar(&generateFlags.format, "format", "smf1", "output format: smf1 or smf2")
	f.BoolVar(&generateFlags.preview, "preview", false, "write a vocal+bass preview instead of the full arrangement")
	f.StringVar(&generateFlags.out, "out", "sketch.mid", "output path")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new sketch MIDI file",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := generateFlags.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		config := model.GenerationConfig{
			ID:          uuid.New().String(),
			Version:     model.ConfigVersion,
			Style:       generateFlags.style,
			Mood:        generateFlags.mood,
			Key:         generateFlags.key,
			Seed:        seed,
			BPM:         generateFlags.bpm,
			BlueprintID: generateFlags.blueprint,
		}
		data, err := renderSong(config, generateFlags.format, generateFlags.preview)
		if err != nil {
			return err
		}
		if err := writeOut(generateFlags.out, data); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"out":   generateFlags.out,
			"bytes": len(data),
			"seed":  seed,
		}).Info("generated sketch")
		return nil
	},
}
