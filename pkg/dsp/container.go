package dsp

// Containers that wrap standard DSP headers behind a small header of their
// own. All of them read every channel through one shared handle.

// SADBDetector recognizes .sad files.
type SADBDetector struct{}

func (SADBDetector) Name() string         { return "dsp_sadb" }
func (SADBDetector) Extensions() []string { return []string{"sad"} }
func (SADBDetector) Description() string  { return MetaDSPSADB.Description() }

func (SADBDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		magic      = 0x73616462 // "sadb"
		interleave = 16
	)

	if !hasExtension(f.Name(), "sad") {
		return nil, noMatch("extension")
	}
	headers, err := readHeaders(f, 0x80, 0xe0)
	if err != nil {
		return nil, err
	}
	if m, err := readU32BE(f, 0); err != nil {
		return nil, err
	} else if m != magic {
		return nil, noMatch("sadb magic")
	}
	start, err := readU32BE(f, 0x48)
	if err != nil {
		return nil, err
	}
	if err := checkChannels(f, headers, int64(start), interleave); err != nil {
		return nil, err
	}
	return buildInterleaved(headers, int64(start), interleave, MetaDSPSADB, f, true)
}

// AMTSDetector recognizes .amts files.
type AMTSDetector struct{}

func (AMTSDetector) Name() string         { return "dsp_amts" }
func (AMTSDetector) Extensions() []string { return []string{"amts"} }
func (AMTSDetector) Description() string  { return MetaDSPAMTS.Description() }

func (AMTSDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		magic = 0x414D5453 // "AMTS"
		start = 0x800
	)

	if !hasExtension(f.Name(), "amts") {
		return nil, noMatch("extension")
	}
	if m, err := readU32BE(f, 0); err != nil {
		return nil, err
	} else if m != magic {
		return nil, noMatch("AMTS magic")
	}
	channels, err := readU32BE(f, 0x14)
	if err != nil {
		return nil, err
	}
	if channels != 1 && channels != 2 {
		return nil, noMatch("channel count %d", channels)
	}
	interleave, err := readU32BE(f, 0x08)
	if err != nil {
		return nil, err
	}
	if interleave == 0 {
		return nil, noMatch("zero interleave")
	}

	offsets := []int64{0x20, 0x80}[:channels]
	headers, err := readHeaders(f, offsets...)
	if err != nil {
		return nil, err
	}
	if err := checkChannels(f, headers, start, int64(interleave)); err != nil {
		return nil, err
	}
	return buildInterleaved(headers, start, int64(interleave), MetaDSPAMTS, f, true)
}

// SWDDetector recognizes .swd files from Conflict: Desert Storm.
type SWDDetector struct{}

func (SWDDetector) Name() string         { return "ngc_swd" }
func (SWDDetector) Extensions() []string { return []string{"swd"} }
func (SWDDetector) Description() string  { return MetaNGCSWD.Description() }

func (SWDDetector) Detect(f StreamFile) (*Stream, error) {
	const (
		magicPS    = 0x5053 // "PS"
		magicF     = 0x46   // "F"
		start      = 0xc8
		interleave = 8
	)

	if !hasExtension(f.Name(), "swd") {
		return nil, noMatch("extension")
	}
	headers, err := readHeaders(f, 0x08, 0x68)
	if err != nil {
		return nil, err
	}
	ps, err := readU16BE(f, 0)
	if err != nil {
		return nil, err
	}
	letter, err := readU8(f, 2)
	if err != nil {
		return nil, err
	}
	if ps != magicPS && letter != magicF {
		return nil, noMatch("swd magic")
	}
	if err := checkChannels(f, headers, start, interleave); err != nil {
		return nil, err
	}
	return buildInterleaved(headers, start, interleave, MetaNGCSWD, f, true)
}
