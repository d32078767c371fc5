package dsp

import (
	"encoding/binary"
	"fmt"
)

// BlockHeaderSize is the size of the prefix on every .wsi block:
// block size, a reserved word, the 1-based channel id and padding.
const BlockHeaderSize = 0x10

// Block is the block currently backing one channel's cursor.
type Block struct {
	// Offset is where the block, including its prefix, starts.
	Offset int64
	// Size is the block's declared size, prefix included.
	Size int64
	// DataOffset and DataSize describe the usable ADPCM bytes.
	DataOffset int64
	DataSize   int64
}

// End is the offset just past the block's usable data.
func (b Block) End() int64 {
	return b.DataOffset + b.DataSize
}

// BlockTracker follows each channel of a blocked stream from block to block.
// Movement is forward only.
type BlockTracker struct {
	file   StreamFile
	blocks []Block
}

type blockPrefix struct {
	size    int64
	channel int
}

func readBlockPrefix(f StreamFile, off int64) (blockPrefix, error) {
	var b [12]byte
	if err := readFull(f, b[:], off); err != nil {
		return blockPrefix{}, err
	}
	return blockPrefix{
		size:    int64(binary.BigEndian.Uint32(b[0:])),
		channel: int(binary.BigEndian.Uint32(b[8:])),
	}, nil
}

// newBlockTracker primes a tracker for channels channels, starting with the
// block at first. Each channel gets the first block that carries its id.
func newBlockTracker(f StreamFile, channels int, first int64) (*BlockTracker, error) {
	t := &BlockTracker{file: f, blocks: make([]Block, channels)}
	for ch := range t.blocks {
		b, err := t.find(ch, first)
		if err != nil {
			return nil, err
		}
		t.blocks[ch] = b
	}
	return t, nil
}

// find scans forward from off for the next block tagged with ch. Blocks of
// different channels alternate, so it gives up after one block per channel.
func (t *BlockTracker) find(ch int, off int64) (Block, error) {
	for range t.blocks {
		p, err := readBlockPrefix(t.file, off)
		if err != nil {
			return Block{}, fmt.Errorf("%w: %v", ErrEndOfBlocks, err)
		}
		if p.size < BlockHeaderSize {
			return Block{}, fmt.Errorf("%w: block at 0x%x has size 0x%x", ErrEndOfBlocks, off, p.size)
		}
		if p.channel == ch+1 {
			return Block{
				Offset:     off,
				Size:       p.size,
				DataOffset: off + BlockHeaderSize,
				DataSize:   p.size - BlockHeaderSize,
			}, nil
		}
		off += p.size
	}
	return Block{}, fmt.Errorf("%w: no block for channel %d near 0x%x", ErrEndOfBlocks, ch+1, off)
}

// Channels returns the number of tracked channels.
func (t *BlockTracker) Channels() int {
	return len(t.blocks)
}

// Current returns the block backing channel ch.
func (t *BlockTracker) Current(ch int) Block {
	return t.blocks[ch]
}

// skipHeader marks the first dsp header bytes of channel ch's current block
// as consumed.
func (t *BlockTracker) skipHeader(ch int, n int64) {
	t.blocks[ch].DataOffset += n
	t.blocks[ch].DataSize -= n
}

// Advance moves channel ch to its next block and returns it.
func (t *BlockTracker) Advance(ch int) (Block, error) {
	cur := t.blocks[ch]
	b, err := t.find(ch, cur.Offset+cur.Size)
	if err != nil {
		return Block{}, err
	}
	t.blocks[ch] = b
	return b, nil
}

// NextBlock moves channel ch to its next block and re-homes its cursor there.
func (s *Stream) NextBlock(ch int) error {
	if s.Blocks == nil {
		return fmt.Errorf("dsp: %s stream has no blocks", s.Layout)
	}
	if s.released {
		return ErrReleased
	}
	b, err := s.Blocks.Advance(ch)
	if err != nil {
		return err
	}
	s.Channels[ch].Offset = b.DataOffset
	return nil
}
