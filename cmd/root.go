package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midisketch",
	Short: "Generate, validate and regenerate sketch MIDI files",
	Long: `midisketch renders short arrangements to MIDI (SMF1 or MIDI 2.0),
embeds the generation settings in the file, and can validate or
deterministically regenerate any file it wrote.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
