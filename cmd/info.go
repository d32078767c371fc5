package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/braheezy/gcdsp/pkg/dsp"
	"github.com/charmbracelet/lipgloss"
)

// streamInfo is the printable summary of a probed stream.
type streamInfo struct {
	File          string  `json:"file"`
	Format        string  `json:"format"`
	Description   string  `json:"description"`
	Coding        string  `json:"coding"`
	Layout        string  `json:"layout"`
	Interleave    int64   `json:"interleave,omitempty"`
	Channels      int     `json:"channels"`
	SampleRate    int     `json:"sample_rate"`
	Samples       int     `json:"samples"`
	Duration      string  `json:"duration"`
	Loop          bool    `json:"loop"`
	LoopStart     int     `json:"loop_start,omitempty"`
	LoopEnd       int     `json:"loop_end,omitempty"`
	ChannelStarts []int64 `json:"channel_starts"`
	Error         string  `json:"error,omitempty"`
}

func newStreamInfo(path string, s *dsp.Stream) streamInfo {
	info := streamInfo{
		File:        path,
		Format:      s.Meta.String(),
		Description: s.Meta.Description(),
		Coding:      s.Coding.String(),
		Layout:      s.Layout.String(),
		Channels:    s.ChannelCount(),
		SampleRate:  s.SampleRate,
		Samples:     s.NumSamples,
		Duration:    s.Duration().Round(time.Millisecond).String(),
		Loop:        s.Loop,
	}
	if s.Layout == dsp.LayoutInterleave {
		info.Interleave = s.InterleaveBlockSize
	}
	if s.Loop {
		info.LoopStart = s.LoopStartSample
		info.LoopEnd = s.LoopEndSample
	}
	for _, c := range s.Channels {
		info.ChannelStarts = append(info.ChannelStarts, c.ChannelStart)
	}
	return info
}

// probePath identifies one file and summarizes it. The stream is released
// before returning.
func probePath(path string) streamInfo {
	s, err := dsp.ProbeFile(path, dsp.WithLogger(logger))
	if err != nil {
		return streamInfo{File: path, Error: err.Error()}
	}
	defer s.Release()
	return newStreamInfo(path, s)
}

// render draws the summary as a bordered list.
func (i streamInfo) render() string {
	var b strings.Builder
	b.WriteString(listTitleStyle.Render(i.File))
	b.WriteString("\n\n")
	if i.Error != "" {
		b.WriteString(errorStyle.Render(i.Error))
		return listStyle.Render(b.String())
	}

	row := func(label, value string) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
		b.WriteString("\n")
	}
	row("Format", fmt.Sprintf("%s (%s)", i.Format, i.Description))
	row("Coding", i.Coding)
	layout := i.Layout
	if i.Interleave > 0 {
		layout = fmt.Sprintf("%s 0x%x", layout, i.Interleave)
	}
	row("Layout", layout)
	row("Channels", fmt.Sprint(i.Channels))
	row("Sample rate", fmt.Sprintf("%d Hz", i.SampleRate))
	row("Samples", fmt.Sprintf("%d (%s)", i.Samples, i.Duration))
	if i.Loop {
		row("Loop", fmt.Sprintf("%d - %d", i.LoopStart, i.LoopEnd))
	} else {
		row("Loop", "none")
	}
	starts := make([]string, len(i.ChannelStarts))
	for n, off := range i.ChannelStarts {
		starts[n] = fmt.Sprintf("0x%x", off)
	}
	row("Data", strings.Join(starts, ", "))
	return listStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

// candidateExtensions collects every extension a built-in detector accepts.
func candidateExtensions() []string {
	var exts []string
	for _, d := range dsp.Detectors() {
		exts = append(exts, d.Extensions()...)
	}
	return exts
}

func isCandidate(path string, exts []string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range exts {
		if strings.HasPrefix(ext, "_") {
			if strings.HasSuffix(name, ext) {
				return true
			}
		} else if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}
	return false
}

// findFiles expands the arguments into files, walking directories
// recursively. Unless all is set, only files with a known extension are kept.
func findFiles(args []string, all bool) ([]string, error) {
	exts := candidateExtensions()
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (all || isCandidate(path, exts)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
