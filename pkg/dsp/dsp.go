/*
Package dsp identifies Nintendo GameCube ADPCM ("DSP") audio containers and
builds the stream description a decoder needs to play them.

# Data Format

GameCube ADPCM encodes 14 samples of 16 bit PCM into frames of 8 bytes. The
first byte of every frame holds the predictor index (high nibble) and the
scale (low nibble); the remaining 7 bytes hold 14 four-bit residuals. Offsets
inside a stream are counted in nibbles, so one frame spans 16 nibbles.

Nearly every container in this package reuses the header written by Nintendo's
DSPADPCM tool. It is 0x4A bytes long, big endian, and is usually padded to
0x60 bytes on disk:

	struct {
		uint32_t sample_count;
		uint32_t nibble_count;
		uint32_t sample_rate;
		uint16_t loop_flag;
		uint16_t format;            // 0 = ADPCM
		uint32_t loop_start_offset; // nibbles
		uint32_t loop_end_offset;   // nibbles
		uint32_t current_address;
		int16_t  coef[16];          // 8 predictor pairs
		uint16_t gain;              // always 0
		uint16_t initial_ps;
		int16_t  initial_hist1;
		int16_t  initial_hist2;
		uint16_t loop_ps;
		int16_t  loop_hist1;
		int16_t  loop_hist2;
	} dsp_header;

Most of the containers have no magic number of their own. Detection relies on
redundancy instead: initial_ps must equal the first byte of the audio data,
loop_ps must equal the first byte of the frame holding the loop start, and the
headers of a stereo file must agree with each other.

# Variants

	std     .dsp              mono, header at 0x00, data at 0x60
	stm     .stm/.dsp         magic 0x0200, 1-2 channels, data at 0x100
	mpdsp   .mpdsp            mono header over 0xF000 interleaved stereo
	str     .str              magic 0xFAAF0001, implicit full loop
	std_int _lr.dsp/.mss/.gcm two headers, fixed interleave
	sadb    .sad              "sadb", interleave 16
	amts    .amts             "AMTS", interleave from the file
	wsi     .wsi              per-channel blocks, one header per channel
	swd     .swd              "PS"/"F", interleave 8

Probe tries the detectors in that order and returns the first match.
*/
package dsp

import "errors"

const (
	// HeaderSize is the number of meaningful bytes in a DSP header.
	HeaderSize = 0x4A
	// PaddedHeaderSize is the on-disk footprint of a DSP header.
	PaddedHeaderSize = 0x60
	// FrameSize is the size in bytes of one ADPCM frame.
	FrameSize = 8
	// SamplesPerFrame is the number of PCM samples decoded from one frame.
	SamplesPerFrame = 14
	// NibblesPerFrame is the number of nibbles in one frame, header included.
	NibblesPerFrame = 16
	// CoefCount is the number of predictor coefficients per channel.
	CoefCount = 16

	// DefaultBufferSize is the buffer hint used when opening channel files.
	DefaultBufferSize = 0x8000
)

var (
	// ErrNoMatch reports that a detector does not recognize the file.
	ErrNoMatch = errors.New("dsp: not this format")
	// ErrShortRead reports that the file ended before a fixed-size read completed.
	ErrShortRead = errors.New("dsp: short read")
	// ErrUnrecognized is returned by Probe when no detector accepts the file.
	ErrUnrecognized = errors.New("dsp: unrecognized file")
	// ErrEndOfBlocks is returned when a blocked stream has no further block for a channel.
	ErrEndOfBlocks = errors.New("dsp: no more blocks")
	// ErrReleased is returned when reading from a stream after Release.
	ErrReleased = errors.New("dsp: stream released")
)

// IsNoMatch reports whether err is a classification failure.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
