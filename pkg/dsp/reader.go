package dsp

import (
	"errors"
	"fmt"
	"io"
)

// ChannelReader is an io.Reader over one channel's encoded ADPCM frames, in
// playback order. It follows the stream's layout, jumping over other
// channels' interleave chunks or moving to the channel's next block, and
// advances the channel's Offset as it goes.
type ChannelReader struct {
	s  *Stream
	ch int

	// remaining is the number of bytes left for the channel's samples.
	remaining int64
	// chunkLeft is what is left in the current interleave chunk or block.
	chunkLeft int64
	read      int64
}

// NewChannelReader returns a reader for channel ch of a freshly probed
// stream.
func NewChannelReader(s *Stream, ch int) (*ChannelReader, error) {
	if ch < 0 || ch >= len(s.Channels) {
		return nil, fmt.Errorf("dsp: channel %d out of range (%d channels)", ch, len(s.Channels))
	}
	if s.released {
		return nil, ErrReleased
	}
	r := &ChannelReader{
		s:         s,
		ch:        ch,
		remaining: SamplesToBytes(s.NumSamples),
	}
	c := &s.Channels[ch]
	switch s.Layout {
	case LayoutNone:
		r.chunkLeft = r.remaining
	case LayoutInterleave:
		if s.InterleaveBlockSize <= 0 {
			return nil, fmt.Errorf("dsp: interleave size %d", s.InterleaveBlockSize)
		}
		r.chunkLeft = s.InterleaveBlockSize - (c.Offset-c.ChannelStart)%s.InterleaveBlockSize
	case LayoutBlockedWSI:
		r.chunkLeft = s.Blocks.Current(ch).End() - c.Offset
	default:
		return nil, fmt.Errorf("dsp: unsupported layout %s", s.Layout)
	}
	return r, nil
}

// nextChunk moves the cursor to the channel's next run of data.
func (r *ChannelReader) nextChunk() error {
	c := &r.s.Channels[r.ch]
	switch r.s.Layout {
	case LayoutInterleave:
		c.Offset += r.s.InterleaveBlockSize * int64(len(r.s.Channels)-1)
		r.chunkLeft = r.s.InterleaveBlockSize
	case LayoutBlockedWSI:
		if err := r.s.NextBlock(r.ch); err != nil {
			return err
		}
		r.chunkLeft = r.s.Blocks.Current(r.ch).DataSize
	default:
		r.chunkLeft = r.remaining
	}
	return nil
}

// Read implements the io.Reader interface.
func (r *ChannelReader) Read(p []byte) (int, error) {
	if r.s.released {
		return 0, ErrReleased
	}
	if r.remaining == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && r.remaining > 0 {
		if r.chunkLeft <= 0 {
			if err := r.nextChunk(); err != nil {
				if errors.Is(err, ErrEndOfBlocks) {
					// The blocks ran out before the header's sample count.
					r.remaining = 0
					break
				}
				return n, err
			}
			continue
		}
		want := min(int64(len(p)-n), r.chunkLeft, r.remaining)
		c := &r.s.Channels[r.ch]
		if err := readFull(c.File, p[n:n+int(want)], c.Offset); err != nil {
			return n, err
		}
		c.Offset += want
		n += int(want)
		r.chunkLeft -= want
		r.remaining -= want
		r.read += want
	}
	if n == 0 && r.remaining == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// BytesRead returns the number of encoded bytes delivered so far.
func (r *ChannelReader) BytesRead() int64 {
	return r.read
}
