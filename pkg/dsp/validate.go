package dsp

import "fmt"

// noMatch wraps ErrNoMatch with the rule that rejected the file.
func noMatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoMatch, fmt.Sprintf(format, args...))
}

// checkFormatGain requires ADPCM coding and no gain.
func checkFormatGain(h *ChannelHeader) error {
	if h.Format != 0 {
		return noMatch("format %d is not ADPCM", h.Format)
	}
	if h.Gain != 0 {
		return noMatch("gain %d is not zero", h.Gain)
	}
	return nil
}

// checkPS compares the low byte of ps with the frame header byte at offset.
func checkPS(f StreamFile, ps uint16, offset int64, what string) error {
	b, err := readU8(f, offset)
	if err != nil {
		return err
	}
	if uint8(ps) != b {
		return noMatch("%s 0x%02x does not match frame byte 0x%02x at 0x%x", what, uint8(ps), b, offset)
	}
	return nil
}

// checkInitialPS ties the header to the first frame of its channel data.
func checkInitialPS(f StreamFile, h *ChannelHeader, dataOffset int64) error {
	return checkPS(f, h.InitialPS, dataOffset, "initial predictor/scale")
}

// checkLoopPS checks the frame holding the loop start of a non-interleaved
// channel that begins at dataOffset. Headers without a loop always pass.
func checkLoopPS(f StreamFile, h *ChannelHeader, dataOffset int64) error {
	if !h.Looped() {
		return nil
	}
	return checkPS(f, h.LoopPS, dataOffset+frameByteOffset(h.LoopStartOffset), "loop predictor/scale")
}

// interleavedOffset maps a byte offset within one channel's logical data to
// its position in a file where channelCount channels alternate stride bytes.
// The result is relative to the first channel's start.
func interleavedOffset(logical, stride int64, channelCount int) int64 {
	return logical/stride*stride*int64(channelCount) + logical%stride
}

// checkInterleavedLoopPS checks every channel's loop predictor/scale in a
// fixed interleave layout starting at dataOffset.
func checkInterleavedLoopPS(f StreamFile, headers []ChannelHeader, dataOffset, stride int64) error {
	if !headers[0].Looped() {
		return nil
	}
	base := dataOffset + interleavedOffset(frameByteOffset(headers[0].LoopStartOffset), stride, len(headers))
	for i := range headers {
		if err := checkPS(f, headers[i].LoopPS, base+int64(i)*stride, "loop predictor/scale"); err != nil {
			return err
		}
	}
	return nil
}

// checkAgreement requires two channel headers to describe the same stream.
func checkAgreement(a, b *ChannelHeader) error {
	switch {
	case a.SampleCount != b.SampleCount:
		return noMatch("sample counts differ (%d, %d)", a.SampleCount, b.SampleCount)
	case a.NibbleCount != b.NibbleCount:
		return noMatch("nibble counts differ (%d, %d)", a.NibbleCount, b.NibbleCount)
	case a.SampleRate != b.SampleRate:
		return noMatch("sample rates differ (%d, %d)", a.SampleRate, b.SampleRate)
	case a.LoopFlag != b.LoopFlag:
		return noMatch("loop flags differ (%d, %d)", a.LoopFlag, b.LoopFlag)
	case a.LoopStartOffset != b.LoopStartOffset:
		return noMatch("loop starts differ (%d, %d)", a.LoopStartOffset, b.LoopStartOffset)
	case a.LoopEndOffset != b.LoopEndOffset:
		return noMatch("loop ends differ (%d, %d)", a.LoopEndOffset, b.LoopEndOffset)
	}
	return nil
}

// looksLikeSecondHeader reports whether h2 duplicates h's stream parameters,
// which is what the second channel header of a stereo file looks like.
func looksLikeSecondHeader(h, h2 *ChannelHeader) bool {
	return h.SampleCount == h2.SampleCount &&
		h.NibbleCount == h2.NibbleCount &&
		h.SampleRate == h2.SampleRate &&
		h.LoopFlag == h2.LoopFlag
}

// checkChannels runs the per-header rules and pair agreement for an
// interleaved multi-header layout. Channel i's data begins at
// dataOffset + i*stride.
func checkChannels(f StreamFile, headers []ChannelHeader, dataOffset, stride int64) error {
	for i := range headers {
		if err := checkFormatGain(&headers[i]); err != nil {
			return err
		}
		if err := checkInitialPS(f, &headers[i], dataOffset+int64(i)*stride); err != nil {
			return err
		}
		if i > 0 {
			if err := checkAgreement(&headers[0], &headers[i]); err != nil {
				return err
			}
		}
	}
	return checkInterleavedLoopPS(f, headers, dataOffset, stride)
}
