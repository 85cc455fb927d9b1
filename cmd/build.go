package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/libraz/midi-sketch-sub003/constants"
	"github.com/libraz/midi-sketch-sub003/model"
	"github.com/libraz/midi-sketch-sub003/sketch"
	"github.com/libraz/midi-sketch-sub003/smf1"
	"github.com/libraz/midi-sketch-sub003/ump"
)

// renderSong generates the song for config and encodes it in the
// requested format ("smf1" or "smf2"). Preview builds skip the
// metadata and reduce the arrangement to vocal plus bass.
func renderSong(config model.GenerationConfig, outFormat string, preview bool) ([]byte, error) {
	song, err := sketch.Generate(config)
	if err != nil {
		return nil, err
	}

	if preview {
		return smf1.BuildPreview(song, config.Key)
	}

	metadata, err := model.EncodeConfig(config)
	if err != nil {
		return nil, err
	}

	switch outFormat {
	case "", "smf1":
		return smf1.Build(song, smf1.BuildOptions{Key: config.Key, Metadata: metadata})
	case "smf2":
		return ump.BuildContainer(song, ump.BuildOptions{Key: config.Key, Metadata: metadata})
	default:
		return nil, fmt.Errorf("unknown output format %q (want smf1 or smf2)", outFormat)
	}
}

// writeOut writes under the configured output directory unless the
// path is already absolute.
func writeOut(path string, data []byte) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(constants.GetOutDir(), path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
