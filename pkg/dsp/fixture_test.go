package dsp

import (
	"encoding/binary"
	"errors"
)

const (
	testRate    = 32000
	testSamples = 1400 // 100 frames, 800 bytes per channel
	testPS      = 0x17
	testLoopPS  = 0x25
	// testLoopFrame is the frame holding the loop start.
	testLoopFrame = 2
)

// newHeader returns a valid, non-looping header for samples samples.
func newHeader(samples uint32) ChannelHeader {
	h := ChannelHeader{
		SampleCount: samples,
		NibbleCount: SamplesToNibbles(int(samples)),
		SampleRate:  testRate,
		InitialPS:   testPS,
		LoopPS:      testLoopPS,
	}
	for i := range h.Coef {
		h.Coef[i] = int16(i*100 - 700)
	}
	return h
}

// withLoop sets a loop from the first sample of frame to the last sample.
func withLoop(h ChannelHeader, frame int) ChannelHeader {
	h.LoopFlag = 1
	h.LoopStartOffset = uint32(frame*NibblesPerFrame + 2)
	h.LoopEndOffset = h.NibbleCount - 1
	return h
}

// fileBuilder assembles a synthetic container byte by byte.
type fileBuilder struct {
	b []byte
}

func newFile(size int) *fileBuilder {
	return &fileBuilder{b: make([]byte, size)}
}

func (fb *fileBuilder) grow(end int64) {
	if int64(len(fb.b)) < end {
		fb.b = append(fb.b, make([]byte, end-int64(len(fb.b)))...)
	}
}

func (fb *fileBuilder) header(off int64, h ChannelHeader) *fileBuilder {
	fb.grow(off + HeaderSize)
	h.encode(fb.b[off:])
	return fb
}

func (fb *fileBuilder) u8(off int64, v uint8) *fileBuilder {
	fb.grow(off + 1)
	fb.b[off] = v
	return fb
}

func (fb *fileBuilder) u16(off int64, v uint16) *fileBuilder {
	fb.grow(off + 2)
	binary.BigEndian.PutUint16(fb.b[off:], v)
	return fb
}

func (fb *fileBuilder) u32(off int64, v uint32) *fileBuilder {
	fb.grow(off + 4)
	binary.BigEndian.PutUint32(fb.b[off:], v)
	return fb
}

func (fb *fileBuilder) fill(off, n int64, v byte) *fileBuilder {
	fb.grow(off + n)
	for i := off; i < off+n; i++ {
		fb.b[i] = v
	}
	return fb
}

// frameBytes marks the predictor/scale bytes a header promises: the first
// frame at start and, if looped, the loop frame.
func (fb *fileBuilder) frameBytes(h ChannelHeader, start int64) *fileBuilder {
	fb.u8(start, uint8(h.InitialPS))
	if h.Looped() {
		fb.u8(start+frameByteOffset(h.LoopStartOffset), uint8(h.LoopPS))
	}
	return fb
}

// interleavedFrameBytes does the same for channels interleaved by stride.
func (fb *fileBuilder) interleavedFrameBytes(headers []ChannelHeader, start, stride int64) *fileBuilder {
	for i, h := range headers {
		fb.u8(start+int64(i)*stride, uint8(h.InitialPS))
		if h.Looped() {
			phys := interleavedOffset(frameByteOffset(h.LoopStartOffset), stride, len(headers))
			fb.u8(start+phys+int64(i)*stride, uint8(h.LoopPS))
		}
	}
	return fb
}

func (fb *fileBuilder) file(name string) *MemFile {
	return NewMemFile(name, fb.b)
}

// countingFile records opens and closes across every handle derived from it.
type countingFile struct {
	*MemFile
	opens, closes *int
	// limit makes Open fail once limit handles have been opened.
	// Negative means no limit.
	limit int
}

func newCountingFile(m *MemFile, limit int) *countingFile {
	return &countingFile{MemFile: m, opens: new(int), closes: new(int), limit: limit}
}

var errOpen = errors.New("open refused")

func (c *countingFile) Open(n int) (StreamFile, error) {
	if c.limit >= 0 && *c.opens >= c.limit {
		return nil, errOpen
	}
	f, err := c.MemFile.Open(n)
	if err != nil {
		return nil, err
	}
	*c.opens++
	return &countingFile{MemFile: f.(*MemFile), opens: c.opens, closes: c.closes, limit: c.limit}, nil
}

func (c *countingFile) Close() error {
	*c.closes++
	return c.MemFile.Close()
}
