package dsp

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/audio"
)

// CodingType names the sample encoding of a stream.
type CodingType int

const (
	// CodingNGCDSP is GameCube ADPCM, the only coding this package produces.
	CodingNGCDSP CodingType = iota
)

func (c CodingType) String() string {
	if c == CodingNGCDSP {
		return "Nintendo GameCube ADPCM"
	}
	return fmt.Sprintf("CodingType(%d)", int(c))
}

// LayoutType describes how channel data is arranged in the file.
type LayoutType int

const (
	// LayoutNone means each channel is one contiguous run of frames.
	LayoutNone LayoutType = iota
	// LayoutInterleave alternates InterleaveBlockSize bytes per channel.
	LayoutInterleave
	// LayoutBlockedWSI is the self-describing per-channel block layout of .wsi.
	LayoutBlockedWSI
)

func (l LayoutType) String() string {
	switch l {
	case LayoutNone:
		return "flat"
	case LayoutInterleave:
		return "interleave"
	case LayoutBlockedWSI:
		return "blocked (wsi)"
	default:
		return fmt.Sprintf("LayoutType(%d)", int(l))
	}
}

// MetaType tags which detector produced a stream.
type MetaType int

const (
	MetaDSPStd MetaType = iota
	MetaDSPSTM
	MetaDSPMPDSP
	MetaDSPSTR
	MetaDSPJetters
	MetaDSPMSS
	MetaDSPGCM
	MetaDSPSADB
	MetaDSPAMTS
	MetaDSPWSI
	MetaNGCSWD
)

var metaNames = map[MetaType][2]string{
	MetaDSPStd:     {"DSP_STD", "Nintendo DSPADPCM header"},
	MetaDSPSTM:     {"DSP_STM", "Intelligent Systems STM header"},
	MetaDSPMPDSP:   {"DSP_MPDSP", "Single DSP header stereo by .mpdsp extension"},
	MetaDSPSTR:     {"DSP_STR", "assumed Conan Gamecube STR File by .str extension"},
	MetaDSPJetters: {"DSP_JETTERS", "Double DSP header stereo by _lr.dsp extension"},
	MetaDSPMSS:     {"DSP_MSS", "Double DSP header stereo by .mss extension"},
	MetaDSPGCM:     {"DSP_GCM", "Double DSP header stereo by .gcm extension"},
	MetaDSPSADB:    {"DSP_SADB", "sadb header"},
	MetaDSPAMTS:    {"DSP_AMTS", "AMTS header"},
	MetaDSPWSI:     {"DSP_WSI", ".wsi header"},
	MetaNGCSWD:     {"NGC_SWD", "PSF + Standard DSP header"},
}

func (m MetaType) String() string {
	if n, ok := metaNames[m]; ok {
		return n[0]
	}
	return fmt.Sprintf("MetaType(%d)", int(m))
}

// Description is a human readable name for the container.
func (m MetaType) Description() string {
	if n, ok := metaNames[m]; ok {
		return n[1]
	}
	return m.String()
}

// Channel is the per-channel decoder state of a Stream.
type Channel struct {
	// File is the handle this channel reads from. It may be shared with
	// other channels of the same stream; only the stream closes it.
	File StreamFile

	Coef     [CoefCount]int16
	History1 int16
	History2 int16

	// ChannelStart is the absolute offset of the channel's first frame.
	ChannelStart int64
	// Offset is the decode cursor.
	Offset int64
}

// Stream is the description of one recognized file.
type Stream struct {
	Channels        []Channel
	Loop            bool
	NumSamples      int
	SampleRate      int
	LoopStartSample int
	LoopEndSample   int

	Coding              CodingType
	Layout              LayoutType
	InterleaveBlockSize int64
	Meta                MetaType

	// Blocks tracks the current block of every channel for LayoutBlockedWSI.
	Blocks *BlockTracker

	// owned lists every handle this stream must close, once each.
	owned    []StreamFile
	released bool
}

// allocateStream returns a zeroed stream with channelCount channels.
func allocateStream(channelCount int, loop bool) (*Stream, error) {
	if channelCount <= 0 {
		return nil, fmt.Errorf("dsp: invalid channel count %d", channelCount)
	}
	return &Stream{
		Channels: make([]Channel, channelCount),
		Loop:     loop,
		Coding:   CodingNGCDSP,
	}, nil
}

// ChannelCount returns the number of channels.
func (s *Stream) ChannelCount() int {
	return len(s.Channels)
}

// Format returns the PCM format the stream decodes to.
func (s *Stream) Format() *audio.Format {
	return &audio.Format{
		NumChannels: len(s.Channels),
		SampleRate:  s.SampleRate,
	}
}

// Duration is the play time of one pass through the stream.
func (s *Stream) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(s.NumSamples) * time.Second / time.Duration(s.SampleRate)
}

// LoopDuration is the play time of the looped region, or 0 if not looping.
func (s *Stream) LoopDuration() time.Duration {
	if !s.Loop || s.SampleRate == 0 || s.LoopEndSample <= s.LoopStartSample {
		return 0
	}
	return time.Duration(s.LoopEndSample-s.LoopStartSample) * time.Second / time.Duration(s.SampleRate)
}

// openChannel opens a new handle on src for channel i, owned by the stream.
func (s *Stream) openChannel(i int, src StreamFile, bufferSize int) error {
	f, err := src.Open(bufferSize)
	if err != nil {
		return fmt.Errorf("opening %s for channel %d: %w", src.Name(), i, err)
	}
	s.owned = append(s.owned, f)
	s.Channels[i].File = f
	return nil
}

// shareChannel points channel i at channel from's handle without taking ownership.
func (s *Stream) shareChannel(i, from int) {
	s.Channels[i].File = s.Channels[from].File
}

// setStart places channel i's start and cursor at offset.
func (s *Stream) setStart(i int, offset int64) {
	s.Channels[i].ChannelStart = offset
	s.Channels[i].Offset = offset
}

// setLoop fills the loop points from a header and clamps the loop end.
func (s *Stream) setLoop(h *ChannelHeader) {
	if !s.Loop {
		return
	}
	s.LoopStartSample = NibblesToSamples(h.LoopStartOffset)
	s.LoopEndSample = NibblesToSamples(h.LoopEndOffset) + 1
	// Some encoders write a loop end one frame past the data.
	if s.LoopEndSample > s.NumSamples {
		s.LoopEndSample = s.NumSamples
	}
}

// setDecoderState copies coefficients and initial history from h into channel i.
func (s *Stream) setDecoderState(i int, h *ChannelHeader) {
	s.Channels[i].Coef = h.Coef
	s.Channels[i].History1 = h.InitialHist1
	s.Channels[i].History2 = h.InitialHist2
}

// StandardHeader rebuilds a mono DSPADPCM header for channel ch. The
// predictor/scale fields depend on the data and are left zero; see
// SetPredictorScales. Loop histories are not known without decoding.
func (s *Stream) StandardHeader(ch int) ChannelHeader {
	c := &s.Channels[ch]
	h := ChannelHeader{
		SampleCount:    uint32(s.NumSamples),
		NibbleCount:    SamplesToNibbles(s.NumSamples),
		SampleRate:     uint32(s.SampleRate),
		CurrentAddress: 2,
		Coef:           c.Coef,
		InitialHist1:   c.History1,
		InitialHist2:   c.History2,
	}
	if s.Loop && s.LoopEndSample > 0 {
		h.LoopFlag = 1
		h.LoopStartOffset = NibbleAddress(s.LoopStartSample)
		h.LoopEndOffset = NibbleAddress(s.LoopEndSample - 1)
	}
	return h
}

// Release closes every handle the stream owns. It is safe to call more than
// once and on a partially built stream.
func (s *Stream) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	var errs []error
	for _, f := range s.owned {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.owned = nil
	for i := range s.Channels {
		s.Channels[i].File = nil
	}
	return errors.Join(errs...)
}

// Released reports whether Release has been called.
func (s *Stream) Released() bool {
	return s.released
}
