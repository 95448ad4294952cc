// Package mtn implements the OMTN motion container format.
//
// An MTN file is a 4-byte magic followed by a fixed header (block 0) and
// section_count-1 length-framed blocks. The payload schema of a block is decided
// by its position in the file, never by the block number it declares:
// position 1 carries identity strings, position 2 the joint-code table and
// position 3 the keyframe stream. Later blocks are carried as raw bytes.
//
// All integers are little-endian.
package mtn

import "fmt"

// Container constants must never change.
const (
	// Magic is the expected file signature. Producers are known to vary here,
	// so a mismatch is reported as a warning rather than an error.
	Magic = "OMTN"

	// HeaderSize is the encoded size of block 0 without the magic.
	HeaderSize = 24

	// BlockHeaderSize is the encoded size of a block header.
	BlockHeaderSize = 8

	// Align is the write-side alignment of block headers.
	Align = 4

	// MaxShortString is the largest payload a 1-byte length prefix can describe.
	MaxShortString = 255
)

// Positional block indices.
const (
	IndexIdentity   = 1
	IndexJointTable = 2
	IndexKeyframes  = 3
)

// Header is block 0.
type Header struct {
	BlockNumber  uint32
	BlockSize    uint32
	SectionCount uint32
	Major        uint16
	Minor        uint16
	TileCount    uint16
	FrameRateMs  uint16
	Options      uint32
}

// Valid reports whether the header can frame at least block 0.
func (h *Header) Valid() bool {
	return h.SectionCount >= 1
}

// Version formats the container version as "major.minor".
func (h *Header) Version() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

// BlockHeader precedes every block after block 0.
type BlockHeader struct {
	Number uint32
	Length uint32
}

// KeyframeLayout selects the width of the per-keyframe header.
type KeyframeLayout int

const (
	// LayoutAuto picks short or wide from the declared keyframe block length.
	LayoutAuto KeyframeLayout = iota
	// LayoutShort is u16 time delta, u16, u32, u32.
	LayoutShort
	// LayoutWide is u32 time delta, u32, u32, u32.
	LayoutWide
)

// HeaderSize returns the encoded size of one keyframe header. LayoutAuto has no size.
func (l KeyframeLayout) HeaderSize() int {
	switch l {
	case LayoutShort:
		return 12
	case LayoutWide:
		return 16
	default:
		return 0
	}
}

func (l KeyframeLayout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutShort:
		return "short"
	case LayoutWide:
		return "wide"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// ParseKeyframeLayout maps a configuration value to a layout.
func ParseKeyframeLayout(s string) (KeyframeLayout, error) {
	switch s {
	case "", "auto":
		return LayoutAuto, nil
	case "short", "hhii":
		return LayoutShort, nil
	case "wide", "iiii":
		return LayoutWide, nil
	default:
		return LayoutAuto, fmt.Errorf("mtn: unknown keyframe layout %q", s)
	}
}

// resolveLayout picks the keyframe header layout for a keyframe block of
// payloadLen bytes. Short wins when neither layout fits exactly.
func resolveLayout(l KeyframeLayout, payloadLen uint32, tiles uint16, joints int) KeyframeLayout {
	if l != LayoutAuto {
		return l
	}
	body := 4 * joints
	if uint64(tiles)*uint64(LayoutWide.HeaderSize()+body) == uint64(payloadLen) &&
		uint64(tiles)*uint64(LayoutShort.HeaderSize()+body) != uint64(payloadLen) {
		return LayoutWide
	}
	return LayoutShort
}

// Framing decides the block_length written for re-encoded blocks.
type Framing int

const (
	// FramingRecompute declares the encoded payload length plus its trailing
	// DWORD padding, so offset+length framing lands on the next block header.
	FramingRecompute Framing = iota
	// FramingPreserve writes the source block_length unchanged. Length-changing
	// substitutions then leave the declared length out of step with the bytes.
	FramingPreserve
)

func (f Framing) String() string {
	switch f {
	case FramingRecompute:
		return "recompute"
	case FramingPreserve:
		return "preserve"
	default:
		return fmt.Sprintf("framing(%d)", int(f))
	}
}

// ParseFraming maps a configuration value to a framing policy.
func ParseFraming(s string) (Framing, error) {
	switch s {
	case "", "recompute":
		return FramingRecompute, nil
	case "preserve":
		return FramingPreserve, nil
	default:
		return FramingRecompute, fmt.Errorf("mtn: unknown framing %q", s)
	}
}
