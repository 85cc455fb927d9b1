package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/util"
	"github.com/libraz/midi-sketch-sub003/validate"
)

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as compact JSON")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Structurally validate a MIDI file",
	Long: `Validate runs the format-specific structural checks over FILE and
prints the full report. The exit code is zero only when the file is
valid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := util.ReadFileBytes(args[0])
		if err != nil {
			return err
		}
		report := validate.Validate(data)
		if validateJSON {
			out, err := validate.RenderJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			fmt.Print(validate.RenderText(report))
		}
		if !report.Valid {
			os.Exit(1)
		}
		return nil
	},
}
