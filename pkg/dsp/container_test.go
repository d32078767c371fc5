package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sadbStart = 0x140

func sadbFile(h0, h1 ChannelHeader) *fileBuilder {
	headers := []ChannelHeader{h0, h1}
	return newFile(sadbStart+0x400).
		u32(0, 0x73616462).
		u32(0x48, sadbStart).
		header(0x80, h0).
		header(0xe0, h1).
		interleavedFrameBytes(headers, sadbStart, 16)
}

func TestSADBDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)
	src := newCountingFile(sadbFile(h, h).file("se.sad"), -1)

	s, err := SADBDetector{}.Detect(src)
	require.NoError(t, err)

	assert.Equal(t, MetaDSPSADB, s.Meta)
	assert.Equal(t, LayoutInterleave, s.Layout)
	assert.Equal(t, int64(16), s.InterleaveBlockSize)
	assert.Equal(t, int64(sadbStart), s.Channels[0].ChannelStart)
	assert.Equal(t, int64(sadbStart+16), s.Channels[1].ChannelStart)
	assert.True(t, s.Loop)
	assert.Equal(t, 28, s.LoopStartSample)

	// Both channels read through one handle, closed once.
	assert.Same(t, s.Channels[0].File, s.Channels[1].File)
	assert.Equal(t, 1, *src.opens)
	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
	assert.Equal(t, 1, *src.closes)
}

func TestSADBDetectorRejects(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		desc   string
		name   string
		mutate func(fb *fileBuilder)
	}{
		{"Wrong extension", "se.sadb", func(*fileBuilder) {}},
		{"Bad magic", "se.sad", func(fb *fileBuilder) { fb.u32(0, 0x73616463) }},
		{"Data offset moved", "se.sad", func(fb *fileBuilder) { fb.u32(0x48, sadbStart+8) }},
		// Frame 2 is in the second round of 16 byte chunks: 0x140 + 2*16 + 16.
		{"Right channel loop ps", "se.sad", func(fb *fileBuilder) { fb.u8(sadbStart+48, 0) }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fb := sadbFile(h, h)
			tc.mutate(fb)
			_, err := SADBDetector{}.Detect(fb.file(tc.name))
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}

func amtsFile(channels int, interleave uint32, h ChannelHeader) *fileBuilder {
	headers := make([]ChannelHeader, channels)
	fb := newFile(0x800).
		u32(0, 0x414d5453).
		u32(0x08, interleave).
		u32(0x14, uint32(channels))
	for i := range headers {
		headers[i] = h
		fb.header([]int64{0x20, 0x80}[i], h)
	}
	return fb.interleavedFrameBytes(headers, 0x800, int64(interleave))
}

func TestAMTSDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	t.Run("Stereo", func(t *testing.T) {
		s, err := AMTSDetector{}.Detect(amtsFile(2, 0x400, h).file("bgm.amts"))
		require.NoError(t, err)
		defer s.Release()

		assert.Equal(t, MetaDSPAMTS, s.Meta)
		assert.Equal(t, 2, s.ChannelCount())
		assert.Equal(t, int64(0x400), s.InterleaveBlockSize)
		assert.Equal(t, int64(0x800), s.Channels[0].ChannelStart)
		assert.Equal(t, int64(0xc00), s.Channels[1].ChannelStart)
		assert.Same(t, s.Channels[0].File, s.Channels[1].File)
	})

	t.Run("Mono", func(t *testing.T) {
		s, err := AMTSDetector{}.Detect(amtsFile(1, 0x400, h).file("bgm.amts"))
		require.NoError(t, err)
		defer s.Release()

		assert.Equal(t, 1, s.ChannelCount())
		assert.True(t, s.Loop)
		assert.Equal(t, int64(0x800), s.Channels[0].ChannelStart)
	})
}

func TestAMTSDetectorRejects(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)

	testCases := []struct {
		desc   string
		mutate func(fb *fileBuilder)
	}{
		{"Bad magic", func(fb *fileBuilder) { fb.u32(0, 0x414d5454) }},
		{"No channels", func(fb *fileBuilder) { fb.u32(0x14, 0) }},
		{"Six channels", func(fb *fileBuilder) { fb.u32(0x14, 6) }},
		{"Zero interleave", func(fb *fileBuilder) { fb.u32(0x08, 0) }},
		{"Second header gain", func(fb *fileBuilder) { fb.u16(0x80+0x3c, 1) }},
		{"Second header rate", func(fb *fileBuilder) { fb.u32(0x80+0x08, 22050) }},
		{"Second channel initial ps", func(fb *fileBuilder) { fb.u8(0xc00, 0) }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fb := amtsFile(2, 0x400, h)
			tc.mutate(fb)
			_, err := AMTSDetector{}.Detect(fb.file("bgm.amts"))
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}

func swdFile(magic string, h ChannelHeader) *fileBuilder {
	fb := newFile(0x200).header(0x08, h).header(0x68, h).
		interleavedFrameBytes([]ChannelHeader{h, h}, 0xc8, 8)
	copy(fb.b, magic)
	return fb
}

func TestSWDDetector(t *testing.T) {
	h := withLoop(newHeader(testSamples), testLoopFrame)
	f := swdFile("PSF", h).file("voice.swd")
	// Loop frame 2 sits two 8 byte rounds in.
	require.Equal(t, byte(testLoopPS), f.data[0xc8+32])
	require.Equal(t, byte(testLoopPS), f.data[0xc8+40])

	s, err := SWDDetector{}.Detect(f)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, MetaNGCSWD, s.Meta)
	assert.Equal(t, int64(8), s.InterleaveBlockSize)
	assert.Equal(t, int64(0xc8), s.Channels[0].ChannelStart)
	assert.Equal(t, int64(0xd0), s.Channels[1].ChannelStart)
	assert.Same(t, s.Channels[0].File, s.Channels[1].File)
}

func TestSWDDetectorMagic(t *testing.T) {
	h := newHeader(testSamples)

	testCases := []struct {
		magic string
		match bool
	}{
		{"PSF", true},
		{"PSx", true},
		{"xxF", true},
		{"xSF", true},
		{"xxx", false},
	}

	for _, tc := range testCases {
		t.Run(tc.magic, func(t *testing.T) {
			s, err := SWDDetector{}.Detect(swdFile(tc.magic, h).file("voice.swd"))
			if tc.match {
				require.NoError(t, err)
				s.Release()
				return
			}
			assert.True(t, IsNoMatch(err), "got %v", err)
		})
	}
}
