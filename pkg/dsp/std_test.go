package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stdFile is a mono .dsp with 800 bytes of data.
func stdFile(name string, h ChannelHeader) *MemFile {
	return newFile(PaddedHeaderSize+int(SamplesToBytes(int(h.SampleCount)))).
		header(0, h).
		frameBytes(h, PaddedHeaderSize).
		file(name)
}

func TestStdDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)
	h.InitialHist1, h.InitialHist2 = 12, -34

	s, err := StdDetector{}.Detect(stdFile("song.DSP", h))
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, 1, s.ChannelCount())
	assert.Equal(t, MetaDSPStd, s.Meta)
	assert.Equal(t, LayoutNone, s.Layout)
	assert.Equal(t, CodingNGCDSP, s.Coding)
	assert.Equal(t, testSamples, s.NumSamples)
	assert.Equal(t, testRate, s.SampleRate)
	assert.True(t, s.Loop)
	assert.Equal(t, 28, s.LoopStartSample)
	assert.Equal(t, testSamples, s.LoopEndSample)

	c := s.Channels[0]
	assert.Equal(t, h.Coef, c.Coef)
	assert.Equal(t, int16(12), c.History1)
	assert.Equal(t, int16(-34), c.History2)
	assert.Equal(t, int64(PaddedHeaderSize), c.ChannelStart)
	assert.Equal(t, int64(PaddedHeaderSize), c.Offset)
	require.NotNil(t, c.File)
}

func TestStdDetectorRejects(t *testing.T) {
	looped := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		desc   string
		name   string
		mutate func(b []byte)
	}{
		{"Wrong extension", "song.wav", nil},
		{"Initial ps mismatch", "song.dsp", func(b []byte) { b[PaddedHeaderSize] ^= 0xff }},
		{"Loop ps mismatch", "song.dsp", func(b []byte) { b[PaddedHeaderSize+16] ^= 0xff }},
		{"Non-ADPCM format", "song.dsp", func(b []byte) { b[0x0f] = 1 }},
		{"Non-zero gain", "song.dsp", func(b []byte) { b[0x3d] = 1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			f := stdFile(tc.name, looped)
			if tc.mutate != nil {
				tc.mutate(f.data)
			}
			s, err := StdDetector{}.Detect(f)
			assert.Nil(t, s)
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}

func TestStdDetectorShortFile(t *testing.T) {
	f := NewMemFile("song.dsp", make([]byte, 0x20))
	_, err := StdDetector{}.Detect(f)
	require.Error(t, err)
	assert.False(t, IsNoMatch(err))
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestStdDetectorRejectsStereoHeader(t *testing.T) {
	// With initial_ps 0 the first data byte matches the high byte of the
	// second header's sample count.
	h := newHeader(testSamples)
	h.InitialPS = 0
	f := newFile(0x2000).header(0, h).header(PaddedHeaderSize, h).file("song.dsp")

	_, err := StdDetector{}.Detect(f)
	assert.True(t, IsNoMatch(err), "got %v", err)

	// A differing second header is just audio data.
	other := h
	other.SampleRate = 22050
	f = newFile(0x2000).header(0, h).header(PaddedHeaderSize, other).file("song.dsp")
	s, err := StdDetector{}.Detect(f)
	require.NoError(t, err)
	s.Release()
}

func TestStdDetectorNoRoomForSecondHeader(t *testing.T) {
	h := newHeader(14)
	h.InitialPS = 0
	// Data ends well before a second header would.
	f := newFile(PaddedHeaderSize+FrameSize).header(0, h).file("tiny.dsp")

	s, err := StdDetector{}.Detect(f)
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, 14, s.NumSamples)
	assert.False(t, s.Loop)
}

// stmFile builds a .stm with channels channels of h, 800 data bytes each.
func stmFile(channels int, h ChannelHeader) *fileBuilder {
	const firstSize = 800
	fb := newFile(0x100).
		u16(0, 0x0200).
		u16(2, uint16(h.SampleRate)).
		u32(4, uint32(channels)).
		u32(8, firstSize)
	starts := []int64{0x100, 0x440}
	for i := 0; i < channels; i++ {
		fb.header([]int64{0x40, 0xa0}[i], h)
		fb.fill(starts[i]+1, firstSize-1, 0x0f)
		fb.frameBytes(h, starts[i])
	}
	return fb
}

func TestSTMDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	for _, name := range []string{"bgm.stm", "bgm.dsp"} {
		t.Run(name, func(t *testing.T) {
			s, err := STMDetector{}.Detect(stmFile(2, h).file(name))
			require.NoError(t, err)
			defer s.Release()

			assert.Equal(t, MetaDSPSTM, s.Meta)
			assert.Equal(t, LayoutNone, s.Layout)
			assert.Equal(t, 2, s.ChannelCount())
			assert.Equal(t, testSamples, s.NumSamples)
			assert.Equal(t, 28, s.LoopStartSample)
			assert.Equal(t, int64(0x100), s.Channels[0].ChannelStart)
			assert.Equal(t, int64(0x440), s.Channels[1].ChannelStart)
			assert.NotSame(t, s.Channels[0].File, s.Channels[1].File)
		})
	}
}

func TestSTMDetectorMono(t *testing.T) {
	s, err := STMDetector{}.Detect(stmFile(1, newHeader(testSamples)).file("a.stm"))
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, 1, s.ChannelCount())
	assert.False(t, s.Loop)
}

func TestSTMSecondChannelAlignment(t *testing.T) {
	// An already aligned first channel still skips a full 0x20.
	h := newHeader(14 * 4)
	fb := stmFile(2, h).u32(8, 0x20)
	fb.frameBytes(h, 0x140)

	s, err := STMDetector{}.Detect(fb.file("a.stm"))
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, int64(0x140), s.Channels[1].ChannelStart)
}

func TestSTMDetectorRejects(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		desc   string
		mutate func(fb *fileBuilder)
	}{
		{"Bad magic", func(fb *fileBuilder) { fb.u16(0, 0x0300) }},
		{"Three channels", func(fb *fileBuilder) { fb.u32(4, 3) }},
		{"Rate disagrees with stm header", func(fb *fileBuilder) { fb.u16(2, 44100) }},
		{"Second channel sample count", func(fb *fileBuilder) { fb.u32(0xa0, testSamples+14) }},
		{"Second channel initial ps", func(fb *fileBuilder) { fb.u8(0x440, 0x77) }},
		{"Second channel loop ps", func(fb *fileBuilder) { fb.u8(0x450, 0x77) }},
		{"Second channel gain", func(fb *fileBuilder) { fb.u16(0xa0+0x3c, 3) }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fb := stmFile(2, h)
			tc.mutate(fb)
			_, err := STMDetector{}.Detect(fb.file("a.stm"))
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}

func TestMPDSPDetector(t *testing.T) {
	h := newHeader(2 * testSamples)
	f := newFile(PaddedHeaderSize+2*0xf000).header(0, h).frameBytes(h, PaddedHeaderSize).file("voice.mpdsp")

	s, err := MPDSPDetector{}.Detect(f)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, MetaDSPMPDSP, s.Meta)
	assert.Equal(t, LayoutInterleave, s.Layout)
	assert.Equal(t, int64(0xf000), s.InterleaveBlockSize)
	assert.Equal(t, testSamples, s.NumSamples)
	assert.False(t, s.Loop)
	assert.Equal(t, int64(0x60), s.Channels[0].ChannelStart)
	assert.Equal(t, int64(0xf060), s.Channels[1].ChannelStart)
	assert.Equal(t, h.Coef, s.Channels[1].Coef)
}

func TestMPDSPDetectorRejectsLoop(t *testing.T) {
	h := withLoop(newHeader(2*testSamples), testLoopFrame)
	f := newFile(0x1000).header(0, h).frameBytes(h, PaddedHeaderSize).file("voice.mpdsp")

	_, err := MPDSPDetector{}.Detect(f)
	assert.True(t, IsNoMatch(err), "got %v", err)
}

func strFile(interleave uint32) *fileBuilder {
	fb := newFile(0x400).
		u32(0x00, 0xfaaf0001).
		u32(0x04, 32000).
		u32(0x08, testSamples).
		u32(0x0c, interleave)
	for ch := 0; ch < 2; ch++ {
		for j := 0; j < CoefCount; j++ {
			fb.u16(int64(0x10+ch*0x20+j*2), uint16(ch*0x100+j))
		}
	}
	return fb
}

func TestSTRDetector(t *testing.T) {
	s, err := STRDetector{}.Detect(strFile(0x100).file("conan.str"))
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, MetaDSPSTR, s.Meta)
	assert.Equal(t, 2, s.ChannelCount())
	assert.True(t, s.Loop)
	assert.Equal(t, testSamples, s.NumSamples)
	assert.Equal(t, 32000, s.SampleRate)
	assert.Equal(t, 0, s.LoopStartSample)
	assert.Equal(t, testSamples, s.LoopEndSample)
	assert.Equal(t, int64(0x100), s.InterleaveBlockSize)
	assert.Equal(t, int64(0x60), s.Channels[0].ChannelStart)
	assert.Equal(t, int64(0x160), s.Channels[1].ChannelStart)
	assert.Equal(t, int16(5), s.Channels[0].Coef[5])
	assert.Equal(t, int16(0x105), s.Channels[1].Coef[5])
	assert.Zero(t, s.Channels[1].History1)
}

func TestSTRDetectorRejects(t *testing.T) {
	_, err := STRDetector{}.Detect(strFile(0x100).u32(0, 0xfaaf0002).file("conan.str"))
	assert.True(t, IsNoMatch(err))

	_, err = STRDetector{}.Detect(strFile(0).file("conan.str"))
	assert.True(t, IsNoMatch(err))

	_, err = STRDetector{}.Detect(strFile(0x100).file("conan.stx"))
	assert.True(t, IsNoMatch(err))

	_, err = STRDetector{}.Detect(NewMemFile("conan.str", []byte{0xfa, 0xaf, 0x00, 0x01}))
	assert.ErrorIs(t, err, ErrShortRead)
}

// interleavedFile is a two-header file with data interleaved by stride from
// 0xC0.
func interleavedFile(h0, h1 ChannelHeader, stride int64) *fileBuilder {
	headers := []ChannelHeader{h0, h1}
	return newFile(0).
		header(0, h0).
		header(PaddedHeaderSize, h1).
		interleavedFrameBytes(headers, 2*PaddedHeaderSize, stride).
		fill(2*PaddedHeaderSize+2*stride, 1, 0)
}

func TestInterleavedDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		name       string
		interleave int64
		meta       MetaType
	}{
		{"boss_LR.DSP", 0x14180, MetaDSPJetters},
		{"menu.mss", 0x1000, MetaDSPMSS},
		{"Menu.GCM", 0x8000, MetaDSPGCM},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := interleavedFile(h, h, tc.interleave).file(tc.name)
			s, err := InterleavedDetector{}.Detect(f)
			require.NoError(t, err)
			defer s.Release()

			assert.Equal(t, tc.meta, s.Meta)
			assert.Equal(t, LayoutInterleave, s.Layout)
			assert.Equal(t, tc.interleave, s.InterleaveBlockSize)
			assert.Equal(t, int64(0xc0), s.Channels[0].ChannelStart)
			assert.Equal(t, 0xc0+tc.interleave, s.Channels[1].ChannelStart)
			assert.NotSame(t, s.Channels[0].File, s.Channels[1].File)
		})
	}

	_, err := InterleavedDetector{}.Detect(interleavedFile(h, h, 0x1000).file("menu.dsp"))
	assert.True(t, IsNoMatch(err))
}

func TestInterleavedDetectorLoopInSecondChunk(t *testing.T) {
	// Frame 600 is 0x12c0 bytes into the channel, which lands in the
	// second 0x1000 chunk: 0xc0 + 0x22c0 for the left channel.
	h := withLoop(newHeader(14*700), 600)
	fb := interleavedFile(h, h, 0x1000)
	f := fb.file("menu.mss")
	require.Equal(t, byte(testLoopPS), f.data[0xc0+0x22c0])
	require.Equal(t, byte(testLoopPS), f.data[0xc0+0x32c0])

	s, err := InterleavedDetector{}.Detect(f)
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, 600*14, s.LoopStartSample)
	assert.Equal(t, 14*700, s.LoopEndSample)

	fb.u8(0xc0+0x32c0, 0)
	_, err = InterleavedDetector{}.Detect(fb.file("menu.mss"))
	assert.True(t, IsNoMatch(err), "got %v", err)
}

func TestInterleavedDetectorAgreement(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		desc   string
		mutate func(h *ChannelHeader)
	}{
		{"Sample count", func(h *ChannelHeader) { h.SampleCount++ }},
		{"Nibble count", func(h *ChannelHeader) { h.NibbleCount++ }},
		{"Sample rate", func(h *ChannelHeader) { h.SampleRate = 48000 }},
		{"Loop flag", func(h *ChannelHeader) { h.LoopFlag = 0 }},
		{"Loop start", func(h *ChannelHeader) { h.LoopStartOffset += NibblesPerFrame }},
		{"Loop end", func(h *ChannelHeader) { h.LoopEndOffset-- }},
		{"Format", func(h *ChannelHeader) { h.Format = 2 }},
		{"Gain", func(h *ChannelHeader) { h.Gain = 1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			h1 := h
			tc.mutate(&h1)
			f := interleavedFile(h, h1, 0x1000).file("menu.mss")
			_, err := InterleavedDetector{}.Detect(f)
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}

func TestInterleavedDetectorReleasesOnOpenFailure(t *testing.T) {
	h := newHeader(testSamples)
	src := newCountingFile(interleavedFile(h, h, 0x1000).file("menu.mss"), 1)

	s, err := InterleavedDetector{}.Detect(src)
	assert.Nil(t, s)
	require.ErrorIs(t, err, errOpen)
	assert.False(t, IsNoMatch(err))
	assert.Equal(t, 1, *src.opens)
	assert.Equal(t, 1, *src.closes)
}
