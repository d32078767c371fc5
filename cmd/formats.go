package cmd

import (
	"fmt"
	"strings"

	"github.com/braheezy/gcdsp/pkg/dsp"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the recognized container variants",
	Long:  "List the detectors in the order they are tried, with the extensions each accepts.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tableBorderStyle).
			Headers("#", "DETECTOR", "EXTENSIONS", "DESCRIPTION")
		for i, d := range dsp.Detectors() {
			exts := make([]string, len(d.Extensions()))
			for n, ext := range d.Extensions() {
				if !strings.HasPrefix(ext, "_") {
					ext = "." + ext
				}
				exts[n] = ext
			}
			t.Row(fmt.Sprint(i+1), d.Name(), strings.Join(exts, " "), d.Description())
		}
		fmt.Fprintln(stdout(cmd), t.String())
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
