package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe <file>...",
	Short: "Identify DSP ADPCM files and describe their streams",
	Long:  "Run each file through the detector chain and print the stream description of the first detector that accepts it.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := stdout(cmd)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		unrecognized := 0
		for _, path := range args {
			info := probePath(path)
			if info.Error != "" {
				unrecognized++
				logger.Debug("probe failed", "file", path, "err", info.Error)
			} else {
				logger.Debug(path, "format", info.Format, "channels", info.Channels, "samples", info.Samples)
			}

			if probeJSON {
				if err := enc.Encode(info); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(out, info.render())
		}
		if unrecognized > 0 {
			return fmt.Errorf("%d of %d files not recognized", unrecognized, len(args))
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Print stream descriptions as JSON")
	rootCmd.AddCommand(probeCmd)
}
