package dsp

import (
	"encoding/binary"
	"path/filepath"
)

// StdDetector recognizes the mono .dsp written by DSPADPCM.
type StdDetector struct{}

func (StdDetector) Name() string         { return "dsp_std" }
func (StdDetector) Extensions() []string { return []string{"dsp"} }
func (StdDetector) Description() string  { return MetaDSPStd.Description() }

func (StdDetector) Detect(f StreamFile) (*Stream, error) {
	const start = PaddedHeaderSize

	if !hasExtension(f.Name(), "dsp") {
		return nil, noMatch("extension")
	}
	h, err := ReadChannelHeader(f, 0)
	if err != nil {
		return nil, err
	}
	if err := checkInitialPS(f, &h, start); err != nil {
		return nil, err
	}
	if err := checkFormatGain(&h); err != nil {
		return nil, err
	}

	// A matching header where a second channel's would be means this is a
	// stereo variant, even if the first data byte happened to match.
	if h2, err := ReadChannelHeader(f, PaddedHeaderSize); err == nil && looksLikeSecondHeader(&h, &h2) {
		return nil, noMatch("second channel header at 0x%x", PaddedHeaderSize)
	}

	if err := checkLoopPS(f, &h, start); err != nil {
		return nil, err
	}

	return build(1, h.Looped(), func(s *Stream) error {
		s.NumSamples = int(h.SampleCount)
		s.SampleRate = int(h.SampleRate)
		s.setLoop(&h)
		s.Layout = LayoutNone
		s.Meta = MetaDSPStd
		s.setDecoderState(0, &h)

		if err := s.openChannel(0, f, DefaultBufferSize); err != nil {
			return err
		}
		s.setStart(0, start)
		return nil
	})
}

// STMDetector recognizes the Intelligent Systems .stm (Paper Mario 2, Fire
// Emblem: Path of Radiance). These were often renamed to .dsp to avoid
// clashing with Scream Tracker modules.
type STMDetector struct{}

func (STMDetector) Name() string         { return "dsp_stm" }
func (STMDetector) Extensions() []string { return []string{"stm", "dsp"} }
func (STMDetector) Description() string  { return MetaDSPSTM.Description() }

func (STMDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		start   = 0x100
		magic   = 0x0200
		align   = 0x20
		header0 = 0x40
		header1 = 0xa0
	)

	if !hasExtension(f.Name(), "stm", "dsp") {
		return nil, noMatch("extension")
	}

	var intro [12]byte
	if err := readFull(f, intro[:], 0); err != nil {
		return nil, err
	}
	if binary.BigEndian.Uint16(intro[0:]) != magic {
		return nil, noMatch("stm magic")
	}
	stmRate := uint32(binary.BigEndian.Uint16(intro[2:]))
	channels := int(binary.BigEndian.Uint32(intro[4:]))
	if channels != 1 && channels != 2 {
		return nil, noMatch("channel count %d", channels)
	}
	firstSize := int64(binary.BigEndian.Uint32(intro[8:]))
	// Always skips at least one byte past the first channel, even when it
	// is already aligned.
	secondStart := (start + firstSize + align) / align * align

	starts := []int64{start, secondStart}
	offsets := []int64{header0, header1}
	headers := make([]ChannelHeader, channels)
	for i := range headers {
		h, err := ReadChannelHeader(f, offsets[i])
		if err != nil {
			return nil, err
		}
		headers[i] = h
	}

	for i := range headers {
		h := &headers[i]
		if h.SampleRate != stmRate {
			return nil, noMatch("channel %d rate %d, stm header says %d", i, h.SampleRate, stmRate)
		}
		if i > 0 {
			if err := checkAgreement(&headers[0], h); err != nil {
				return nil, err
			}
		}
		if err := checkInitialPS(f, h, starts[i]); err != nil {
			return nil, err
		}
		if err := checkFormatGain(h); err != nil {
			return nil, err
		}
		if err := checkLoopPS(f, h, starts[i]); err != nil {
			return nil, err
		}
	}

	h0 := &headers[0]
	return build(channels, h0.Looped(), func(s *Stream) error {
		s.NumSamples = int(h0.SampleCount)
		s.SampleRate = int(h0.SampleRate)
		s.setLoop(h0)
		s.Layout = LayoutNone
		s.Meta = MetaDSPSTM

		for i := range headers {
			s.setDecoderState(i, &headers[i])
			if err := s.openChannel(i, f, DefaultBufferSize); err != nil {
				return err
			}
			s.setStart(i, starts[i])
		}
		return nil
	})
}

// MPDSPDetector recognizes .mpdsp: a standard mono header in front of
// stereo data interleaved every 0xF000 bytes. Both channels share the
// header, and its sample count covers both.
type MPDSPDetector struct{}

func (MPDSPDetector) Name() string         { return "dsp_mpdsp" }
func (MPDSPDetector) Extensions() []string { return []string{"mpdsp"} }
func (MPDSPDetector) Description() string  { return MetaDSPMPDSP.Description() }

func (MPDSPDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		start      = PaddedHeaderSize
		interleave = 0xf000
	)

	if !hasExtension(f.Name(), "mpdsp") {
		return nil, noMatch("extension")
	}
	h, err := ReadChannelHeader(f, 0)
	if err != nil {
		return nil, err
	}
	// None are known to loop, which spares us interleaved loop math.
	if h.Looped() {
		return nil, noMatch("mpdsp with loop flag")
	}
	if err := checkInitialPS(f, &h, start); err != nil {
		return nil, err
	}
	if err := checkFormatGain(&h); err != nil {
		return nil, err
	}

	return build(2, false, func(s *Stream) error {
		s.NumSamples = int(h.SampleCount / 2)
		s.SampleRate = int(h.SampleRate)
		s.Layout = LayoutInterleave
		s.InterleaveBlockSize = interleave
		s.Meta = MetaDSPMPDSP

		for i := range s.Channels {
			s.setDecoderState(i, &h)
			if err := s.openChannel(i, f, interleave); err != nil {
				return err
			}
			s.setStart(i, start+int64(i)*interleave)
		}
		return nil
	})
}

// STRDetector recognizes the headerless-DSP .str: a small fixed header with
// the coefficients of both channels and an implicit loop over everything.
type STRDetector struct{}

func (STRDetector) Name() string         { return "dsp_str" }
func (STRDetector) Extensions() []string { return []string{"str"} }
func (STRDetector) Description() string  { return MetaDSPSTR.Description() }

func (STRDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		start = PaddedHeaderSize
		magic = 0xFAAF0001
	)

	if !hasExtension(f.Name(), "str") {
		return nil, noMatch("extension")
	}
	var hdr [0x50]byte
	if err := readFull(f, hdr[:], 0); err != nil {
		return nil, err
	}
	be := binary.BigEndian
	if be.Uint32(hdr[0x00:]) != magic {
		return nil, noMatch("str magic")
	}
	interleave := int64(be.Uint32(hdr[0x0c:]))
	if interleave == 0 {
		return nil, noMatch("zero interleave")
	}

	return build(2, true, func(s *Stream) error {
		s.SampleRate = int(be.Uint32(hdr[0x04:]))
		s.NumSamples = int(be.Uint32(hdr[0x08:]))
		s.LoopStartSample = 0
		s.LoopEndSample = s.NumSamples
		s.Layout = LayoutInterleave
		s.InterleaveBlockSize = interleave
		s.Meta = MetaDSPSTR

		for i := range s.Channels {
			for j := range s.Channels[i].Coef {
				s.Channels[i].Coef[j] = int16(be.Uint16(hdr[0x10+i*0x20+j*2:]))
			}
			if err := s.openChannel(i, f, int(interleave)); err != nil {
				return err
			}
			s.setStart(i, start+int64(i)*interleave)
		}
		return nil
	})
}

// InterleavedDetector recognizes stereo files made of two standard headers
// followed by fixed-interleave data. The interleave is only known from the
// file name.
type InterleavedDetector struct{}

func (InterleavedDetector) Name() string { return "dsp_std_int" }
func (InterleavedDetector) Extensions() []string {
	return []string{"_lr.dsp", "mss", "gcm"}
}
func (InterleavedDetector) Description() string {
	return "Double DSP header stereo, interleave by extension"
}

// interleaveFor picks the sub-kind from the file name.
func interleaveFor(name string) (int64, MetaType, bool) {
	switch {
	case hasSuffixFold(filepath.Base(name), "_lr.dsp"):
		// Bomberman Jetters
		return 0x14180, MetaDSPJetters, true
	case hasExtension(name, "mss"):
		return 0x1000, MetaDSPMSS, true
	case hasExtension(name, "gcm"):
		return 0x8000, MetaDSPGCM, true
	}
	return 0, 0, false
}

func (InterleavedDetector) Detect(f StreamFile) (*Stream, error) {
	const start = 2 * PaddedHeaderSize

	interleave, meta, ok := interleaveFor(f.Name())
	if !ok {
		return nil, noMatch("extension")
	}
	headers, err := readHeaders(f, 0, PaddedHeaderSize)
	if err != nil {
		return nil, err
	}
	if err := checkChannels(f, headers, start, interleave); err != nil {
		return nil, err
	}
	return buildInterleaved(headers, start, interleave, meta, f, false)
}

// readHeaders reads one channel header at each offset.
func readHeaders(f StreamFile, offsets ...int64) ([]ChannelHeader, error) {
	headers := make([]ChannelHeader, len(offsets))
	for i, off := range offsets {
		h, err := ReadChannelHeader(f, off)
		if err != nil {
			return nil, err
		}
		headers[i] = h
	}
	return headers, nil
}

// buildInterleaved builds a fixed-interleave stream with one channel per
// header. With shared set, every channel reads through the first channel's
// handle.
func buildInterleaved(headers []ChannelHeader, start, interleave int64, meta MetaType, f StreamFile, shared bool) (*Stream, error) {
	h0 := &headers[0]
	return build(len(headers), h0.Looped(), func(s *Stream) error {
		s.NumSamples = int(h0.SampleCount)
		s.SampleRate = int(h0.SampleRate)
		s.setLoop(h0)
		s.Layout = LayoutInterleave
		s.InterleaveBlockSize = interleave
		s.Meta = meta

		for i := range headers {
			s.setDecoderState(i, &headers[i])
			if i > 0 && shared {
				s.shareChannel(i, 0)
			} else if err := s.openChannel(i, f, DefaultBufferSize); err != nil {
				return err
			}
			s.setStart(i, start+int64(i)*interleave)
		}
		return nil
	})
}
