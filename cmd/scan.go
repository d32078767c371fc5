package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var scanPlain bool
var scanAll bool

var scanCmd = &cobra.Command{
	Use:   "scan <file/directories>...",
	Short: "Identify every DSP file under the given paths",
	Long: "Walk the given files and directories, probe every file with a known DSP extension and print a summary table. " +
		"A progress bar is shown when writing to a terminal.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := stdout(cmd)
		files, err := findFiles(args, scanAll)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "No candidate files found :(")
			return nil
		}
		logger.Debug("scanning", "files", len(files))

		var results []streamInfo
		if scanPlain || quiet || !isTerminal(cmd.OutOrStdout()) {
			for _, f := range files {
				results = append(results, probePath(f))
			}
		} else {
			results, err = runScanTUI(cmd.OutOrStdout(), files)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(out, scanTable(results))
		recognized := 0
		for _, r := range results {
			if r.Error == "" {
				recognized++
			}
		}
		fmt.Fprintf(out, "%d of %d files recognized\n", recognized, len(files))
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "Never show the progress bar")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Probe every file, not only known extensions")
	rootCmd.AddCommand(scanCmd)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// scanTable lays the results out one file per row.
func scanTable(results []streamInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("FILE", "FORMAT", "CH", "RATE", "DURATION", "LOOP")
	for _, r := range results {
		if r.Error != "" {
			t.Row(r.File, "unrecognized", "", "", "", "")
			continue
		}
		loop := "no"
		if r.Loop {
			loop = "yes"
		}
		t.Row(r.File, r.Format, fmt.Sprint(r.Channels), fmt.Sprint(r.SampleRate), r.Duration, loop)
	}
	return t.String()
}
