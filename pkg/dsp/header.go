package dsp

import (
	"encoding/binary"
	"fmt"
)

// ChannelHeader is one decoded DSPADPCM channel header.
type ChannelHeader struct {
	SampleCount     uint32
	NibbleCount     uint32
	SampleRate      uint32
	LoopFlag        uint16
	Format          uint16
	LoopStartOffset uint32 // nibbles
	LoopEndOffset   uint32 // nibbles
	CurrentAddress  uint32
	Coef            [CoefCount]int16
	Gain            uint16
	InitialPS       uint16
	InitialHist1    int16
	InitialHist2    int16
	LoopPS          uint16
	LoopHist1       int16
	LoopHist2       int16
}

// ReadChannelHeader reads the 0x4A byte header at offset. The only failure is
// a short read.
func ReadChannelHeader(f StreamFile, offset int64) (ChannelHeader, error) {
	var buf [HeaderSize]byte
	var h ChannelHeader
	if err := readFull(f, buf[:], offset); err != nil {
		return h, fmt.Errorf("reading header at 0x%x: %w", offset, err)
	}
	h.decode(buf[:])
	return h, nil
}

func (h *ChannelHeader) decode(b []byte) {
	be := binary.BigEndian
	h.SampleCount = be.Uint32(b[0x00:])
	h.NibbleCount = be.Uint32(b[0x04:])
	h.SampleRate = be.Uint32(b[0x08:])
	h.LoopFlag = be.Uint16(b[0x0c:])
	h.Format = be.Uint16(b[0x0e:])
	h.LoopStartOffset = be.Uint32(b[0x10:])
	h.LoopEndOffset = be.Uint32(b[0x14:])
	h.CurrentAddress = be.Uint32(b[0x18:])
	for i := range h.Coef {
		h.Coef[i] = int16(be.Uint16(b[0x1c+i*2:]))
	}
	h.Gain = be.Uint16(b[0x3c:])
	h.InitialPS = be.Uint16(b[0x3e:])
	h.InitialHist1 = int16(be.Uint16(b[0x40:]))
	h.InitialHist2 = int16(be.Uint16(b[0x42:]))
	h.LoopPS = be.Uint16(b[0x44:])
	h.LoopHist1 = int16(be.Uint16(b[0x46:]))
	h.LoopHist2 = int16(be.Uint16(b[0x48:]))
}

func (h *ChannelHeader) encode(b []byte) {
	be := binary.BigEndian
	be.PutUint32(b[0x00:], h.SampleCount)
	be.PutUint32(b[0x04:], h.NibbleCount)
	be.PutUint32(b[0x08:], h.SampleRate)
	be.PutUint16(b[0x0c:], h.LoopFlag)
	be.PutUint16(b[0x0e:], h.Format)
	be.PutUint32(b[0x10:], h.LoopStartOffset)
	be.PutUint32(b[0x14:], h.LoopEndOffset)
	be.PutUint32(b[0x18:], h.CurrentAddress)
	for i, c := range h.Coef {
		be.PutUint16(b[0x1c+i*2:], uint16(c))
	}
	be.PutUint16(b[0x3c:], h.Gain)
	be.PutUint16(b[0x3e:], h.InitialPS)
	be.PutUint16(b[0x40:], uint16(h.InitialHist1))
	be.PutUint16(b[0x42:], uint16(h.InitialHist2))
	be.PutUint16(b[0x44:], h.LoopPS)
	be.PutUint16(b[0x46:], uint16(h.LoopHist1))
	be.PutUint16(b[0x48:], uint16(h.LoopHist2))
}

// MarshalBinary encodes the header into its 0x4A byte big-endian form.
func (h ChannelHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	h.encode(b)
	return b, nil
}

// UnmarshalBinary decodes the first 0x4A bytes of data.
func (h *ChannelHeader) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortRead, HeaderSize, len(data))
	}
	h.decode(data)
	return nil
}

// Looped reports whether the loop flag is set.
func (h *ChannelHeader) Looped() bool {
	return h.LoopFlag != 0
}

// SetPredictorScales takes InitialPS and LoopPS from a channel's encoded
// data, the same bytes the detectors check them against.
func (h *ChannelHeader) SetPredictorScales(data []byte) {
	if len(data) > 0 {
		h.InitialPS = uint16(data[0])
	}
	if h.Looped() {
		if off := frameByteOffset(h.LoopStartOffset); off < int64(len(data)) {
			h.LoopPS = uint16(data[off])
		}
	}
}
