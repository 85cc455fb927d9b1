package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/model"
)

var watchFlags struct {
	out    string
	format string
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.out, "out", "sketch.mid", "output path rendered on every change")
	f.StringVar(&watchFlags.format, "format", "smf1", "output format: smf1 or smf2")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch CONFIG",
	Short: "Re-render the output whenever a config file changes",
	Long: `Watch reads a GenerationConfig JSON file and rebuilds --out each time
the file is saved, debounced so editors that write in bursts trigger a
single rebuild.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		if err := watcher.Add(configPath); err != nil {
			return err
		}

		rebuild := func() {
			if err := renderFromConfigFile(configPath); err != nil {
				logrus.WithError(err).Error("rebuild failed")
				return
			}
			logrus.WithField("out", watchFlags.out).Info("rebuilt")
		}
		rebuild()

		debounced := debounce.New(300 * time.Millisecond)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					debounced(rebuild)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logrus.WithError(err).Warn("watch error")
			}
		}
	},
}

func renderFromConfigFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var config model.GenerationConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		return err
	}
	if config.Version == 0 {
		config.Version = model.ConfigVersion
	}
	data, err := renderSong(config, watchFlags.format, false)
	if err != nil {
		return err
	}
	return writeOut(watchFlags.out, data)
}
