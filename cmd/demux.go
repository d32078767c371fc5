package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/braheezy/gcdsp/pkg/dsp"
	"github.com/spf13/cobra"
)

var demuxOutDir string
var demuxRaw bool

var demuxCmd = &cobra.Command{
	Use:   "demux <input-file>",
	Short: "Split a DSP container into one mono .dsp per channel",
	Long: "Identify the input file and write each channel's ADPCM data, in playback order, to its own file. " +
		"Each output carries a standard DSPADPCM header unless --raw is given.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		s, err := dsp.ProbeFile(inputFile, dsp.WithLogger(logger))
		if err != nil {
			return err
		}
		defer s.Release()
		logger.Info("Input format is "+s.Meta.String(), "channels", s.ChannelCount(), "layout", s.Layout)

		outDir := demuxOutDir
		if outDir == "" {
			outDir = filepath.Dir(inputFile)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))

		for ch := range s.Channels {
			outputFile, err := demuxChannel(s, ch, filepath.Join(outDir, fmt.Sprintf("%s_ch%d", base, ch)))
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			fmt.Fprintln(stdout(cmd), outputFile)
		}
		return nil
	},
}

func init() {
	demuxCmd.Flags().StringVarP(&demuxOutDir, "out-dir", "o", "", "Directory for the channel files (default: next to the input)")
	demuxCmd.Flags().BoolVar(&demuxRaw, "raw", false, "Write bare ADPCM frames without a header")
	rootCmd.AddCommand(demuxCmd)
}

// demuxChannel writes channel ch to name plus an extension and returns the
// path written.
func demuxChannel(s *dsp.Stream, ch int, name string) (string, error) {
	r, err := dsp.NewChannelReader(s, ch)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if want := dsp.SamplesToBytes(s.NumSamples); int64(len(data)) < want {
		logger.Warn("channel data ends early", "channel", ch, "bytes", len(data), "expected", want)
	}

	outputFile := name + ".adpcm"
	out := data
	if !demuxRaw {
		h := s.StandardHeader(ch)
		h.SetPredictorScales(data)
		header, err := h.MarshalBinary()
		if err != nil {
			return "", err
		}
		outputFile = name + ".dsp"
		out = make([]byte, dsp.PaddedHeaderSize, dsp.PaddedHeaderSize+len(data))
		copy(out, header)
		out = append(out, data...)
	}

	if err := os.WriteFile(outputFile, out, 0o644); err != nil {
		return "", err
	}
	logger.Debug(outputFile, "bytes", len(out), "size", formatSize(len(out)))
	return outputFile, nil
}

// formatSize converts the inputSize to a human readable format
func formatSize(inputSize int) string {
	const unit = 1024
	if inputSize < unit {
		return fmt.Sprintf("%d B", inputSize)
	}
	div, exp := int64(unit), 0
	for n := inputSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(inputSize)/float64(div), "KMGTPE"[exp])
}
