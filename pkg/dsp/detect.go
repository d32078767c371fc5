package dsp

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Detector recognizes one container variant.
type Detector interface {
	// Name is the short identifier of the variant, e.g. "dsp_std".
	Name() string
	// Extensions lists the file extensions the detector accepts.
	Extensions() []string
	// Description is a human readable name for the variant.
	Description() string
	// Detect returns a ready stream, or an error wrapping ErrNoMatch when
	// the file is not this variant. Any other error is a resource failure.
	// The caller owns the returned stream and must Release it.
	Detect(f StreamFile) (*Stream, error)
}

// Detectors returns the built-in detectors in probe order. The order
// matters: a stereo _lr.dsp must fail dsp_std before dsp_std_int sees it,
// and an .stm renamed to .dsp must fail dsp_std before dsp_stm sees it.
func Detectors() []Detector {
	return []Detector{
		StdDetector{},
		STMDetector{},
		MPDSPDetector{},
		InterleavedDetector{},
		STRDetector{},
		SADBDetector{},
		AMTSDetector{},
		WSIDetector{},
		SWDDetector{},
	}
}

type probeConfig struct {
	logger     *log.Logger
	detectors  []Detector
	bufferSize int
}

// ProbeOption configures Probe and ProbeFile.
type ProbeOption func(*probeConfig)

// WithLogger logs matches and resource failures at debug level.
// Classification failures are never logged.
func WithLogger(l *log.Logger) ProbeOption {
	return func(c *probeConfig) { c.logger = l }
}

// WithDetectors replaces the detector chain. Detectors are tried in order.
func WithDetectors(d ...Detector) ProbeOption {
	return func(c *probeConfig) { c.detectors = d }
}

// WithBufferSize sets the buffer size of the handle ProbeFile opens.
func WithBufferSize(n int) ProbeOption {
	return func(c *probeConfig) { c.bufferSize = n }
}

func newProbeConfig(opts []ProbeOption) *probeConfig {
	c := &probeConfig{
		detectors:  Detectors(),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe runs f through the detector chain and returns the first match.
// It returns an error wrapping ErrUnrecognized if nothing matches.
func Probe(f StreamFile, opts ...ProbeOption) (*Stream, error) {
	return newProbeConfig(opts).probe(f)
}

func (c *probeConfig) probe(f StreamFile) (*Stream, error) {
	for _, d := range c.detectors {
		s, err := d.Detect(f)
		if err == nil {
			if c.logger != nil {
				c.logger.Debug("matched", "file", f.Name(), "detector", d.Name(), "meta", s.Meta)
			}
			return s, nil
		}
		if !IsNoMatch(err) && c.logger != nil {
			c.logger.Debug("detector aborted", "file", f.Name(), "detector", d.Name(), "err", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnrecognized, f.Name())
}

// ProbeFile opens path, probes it and closes the probing handle. The
// returned stream holds its own handles.
func ProbeFile(path string, opts ...ProbeOption) (*Stream, error) {
	c := newProbeConfig(opts)
	f, err := OpenFile(path, c.bufferSize)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.probe(f)
}

// build allocates a stream, lets fill populate it and releases it if fill
// fails part way, so no handle opened by fill outlives a failed detection.
func build(channels int, loop bool, fill func(s *Stream) error) (*Stream, error) {
	s, err := allocateStream(channels, loop)
	if err != nil {
		return nil, err
	}
	if err := fill(s); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}
