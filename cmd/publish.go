package cmd

import (
	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/bucket"
)

var publishFlags struct {
	bucket string
	key    string
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&publishFlags.bucket, "bucket", "", "target S3 bucket")
	f.StringVar(&publishFlags.key, "key", "", "object key (default: file base name)")
	publishCmd.MarkFlagRequired("bucket")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish FILE",
	Short: "Upload a generated MIDI file to S3",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bucket.Upload(args[0], publishFlags.bucket, publishFlags.key)
	},
}
