package dsp

// NibblesToSamples converts a nibble count into the number of PCM samples it
// decodes to. The first two nibbles of each frame are the predictor/scale byte.
func NibblesToSamples(nibbles uint32) int {
	whole := int(nibbles / NibblesPerFrame)
	rem := int(nibbles % NibblesPerFrame)
	samples := whole * SamplesPerFrame
	if rem > 2 {
		samples += rem - 2
	}
	return samples
}

// SamplesToNibbles is the inverse of NibblesToSamples for sample counts that
// end inside a frame. A count that ends on a frame boundary gives whole frames.
func SamplesToNibbles(samples int) uint32 {
	if samples <= 0 {
		return 0
	}
	whole := samples / SamplesPerFrame
	rem := samples % SamplesPerFrame
	nibbles := uint32(whole) * NibblesPerFrame
	if rem > 0 {
		nibbles += uint32(rem) + 2
	}
	return nibbles
}

// SamplesToBytes returns the number of encoded bytes needed to hold samples,
// rounded up to a whole frame.
func SamplesToBytes(samples int) int64 {
	if samples <= 0 {
		return 0
	}
	frames := (samples + SamplesPerFrame - 1) / SamplesPerFrame
	return int64(frames) * FrameSize
}

// frameByteOffset is the byte offset of the frame that holds nibble.
func frameByteOffset(nibble uint32) int64 {
	return int64(nibble/NibblesPerFrame) * FrameSize
}

// NibbleAddress is the nibble offset of sample within a channel, skipping the
// predictor/scale byte of its frame. Header loop offsets are addresses.
func NibbleAddress(sample int) uint32 {
	if sample < 0 {
		return 0
	}
	return uint32(sample/SamplesPerFrame*NibblesPerFrame + sample%SamplesPerFrame + 2)
}
