package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/midi"
)

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Summarize an SMF file with an independent decoder",
	Long: `Inspect parses FILE with the gomidi library rather than our own
reader, so its output can be diffed against validate to cross-check
the codec.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		sum := midi.Summarize(parsed)

		if inspectJSON {
			out, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("MIDI file: %s\n", args[0])
		fmt.Printf("Format: %d\n", sum.Format)
		fmt.Printf("Ticks per quarter note: %d\n", sum.TicksPQN)
		fmt.Printf("Tracks: %d\n", sum.NumTracks)
		for _, t := range sum.Tracks {
			name := t.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("  #%d %s: %d events, %d note-ons, last tick %d, channels %v\n",
				t.Index, name, t.Events, t.NoteOns, t.LastTick, t.ChannelIn)
		}
		return nil
	},
}
