package dsp

// WSIDetector recognizes .wsi from Alone in the Dark (Wii): standard DSP
// headers, with the audio split into blocks that each belong to one channel.
// The first block of every channel starts with that channel's header.
type WSIDetector struct{}

func (WSIDetector) Name() string         { return "dsp_wsi" }
func (WSIDetector) Extensions() []string { return []string{"wsi"} }
func (WSIDetector) Description() string  { return MetaDSPWSI.Description() }

// wsiProbeSets is how many rounds of channel blocks are checked for
// consistency before the file is accepted.
const wsiProbeSets = 4

func (WSIDetector) Detect(f StreamFile) (*Stream, error) {
	if !hasExtension(f.Name(), "wsi") {
		return nil, noMatch("extension")
	}

	first, err := readU32BE(f, 0x00)
	if err != nil {
		return nil, err
	}
	// Possibly a block type for the first block rather than a channel
	// count. Only stereo files are known.
	channels, err := readU32BE(f, 0x04)
	if err != nil {
		return nil, err
	}
	if channels != 2 {
		return nil, noMatch("channel count %d", channels)
	}
	if first < 8 {
		return nil, noMatch("first block offset 0x%x", first)
	}

	largest, err := checkWSIBlocks(f, int64(first), int(channels))
	if err != nil {
		return nil, err
	}

	headers := make([]ChannelHeader, channels)
	starts := make([]int64, channels)
	off := int64(first)
	for i := range headers {
		p, err := readBlockPrefix(f, off)
		if err != nil {
			return nil, err
		}
		// Room for the header and at least one frame.
		if p.size < BlockHeaderSize+PaddedHeaderSize+FrameSize {
			return nil, noMatch("block at 0x%x too small for a header", off)
		}
		h, err := ReadChannelHeader(f, off+BlockHeaderSize)
		if err != nil {
			return nil, err
		}
		starts[i] = off + BlockHeaderSize + PaddedHeaderSize
		if err := checkInitialPS(f, &h, starts[i]); err != nil {
			return nil, err
		}
		if err := checkFormatGain(&h); err != nil {
			return nil, err
		}
		headers[i] = h
		off += p.size
	}
	for i := 1; i < len(headers); i++ {
		if err := checkAgreement(&headers[0], &headers[i]); err != nil {
			return nil, err
		}
	}

	h0 := &headers[0]
	return build(int(channels), h0.Looped(), func(s *Stream) error {
		s.NumSamples = int(h0.SampleCount)
		s.SampleRate = int(h0.SampleRate)
		s.setLoop(h0)
		s.Layout = LayoutBlockedWSI
		s.Meta = MetaDSPWSI

		if err := s.openChannel(0, f, int(largest)*4); err != nil {
			return err
		}
		for i := range headers {
			s.setDecoderState(i, &headers[i])
			if i > 0 {
				s.shareChannel(i, 0)
			}
			s.setStart(i, starts[i])
		}

		t, err := newBlockTracker(s.Channels[0].File, len(headers), int64(first))
		if err != nil {
			return err
		}
		// The first block of each channel opens with its header.
		for i := range headers {
			t.skipHeader(i, PaddedHeaderSize)
		}
		s.Blocks = t
		return nil
	})
}

// checkWSIBlocks walks the first wsiProbeSets rounds of blocks. Channel ids
// must cycle 1..channels and all blocks of a round must share one size.
// It returns the largest block size seen.
func checkWSIBlocks(f StreamFile, off int64, channels int) (int64, error) {
	var largest, roundSize int64
	for i := 0; i < wsiProbeSets*channels; i++ {
		p, err := readBlockPrefix(f, off)
		if err != nil {
			return 0, err
		}
		if p.size < BlockHeaderSize {
			return 0, noMatch("block at 0x%x smaller than its prefix", off)
		}
		if p.channel != i%channels+1 {
			return 0, noMatch("block at 0x%x has channel %d, want %d", off, p.channel, i%channels+1)
		}
		if i%channels == 0 {
			roundSize = p.size
		} else if p.size != roundSize {
			return 0, noMatch("block at 0x%x size 0x%x differs from 0x%x", off, p.size, roundSize)
		}
		largest = max(largest, p.size)
		off += p.size
	}
	return largest, nil
}
