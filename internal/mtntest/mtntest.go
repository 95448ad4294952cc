// Package mtntest builds MTN byte streams for tests.
package mtntest

import (
	"bytes"
	"encoding/binary"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// Block is a raw block to place in a fixture. Length overrides the declared
// block_length when non-nil; otherwise the payload length is declared.
type Block struct {
	Number  uint32
	Payload []byte
	Length  *uint32
}

// File assembles magic, header and blocks with no padding between blocks,
// the way some producers emit them.
func File(magic string, h mtn.Header, blocks ...Block) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, h)
	for _, b := range blocks {
		n := uint32(len(b.Payload))
		if b.Length != nil {
			n = *b.Length
		}
		_ = binary.Write(&buf, binary.LittleEndian, b.Number)
		_ = binary.Write(&buf, binary.LittleEndian, n)
		buf.Write(b.Payload)
	}
	return buf.Bytes()
}

func shortString(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

// Identity encodes a block 1 payload.
func Identity(action, author, platform string) []byte {
	var buf bytes.Buffer
	shortString(&buf, action)
	shortString(&buf, author)
	shortString(&buf, platform)
	return buf.Bytes()
}

// Joints encodes a block 2 payload.
func Joints(codes ...string) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(codes)))
	for _, c := range codes {
		shortString(&buf, c)
	}
	return buf.Bytes()
}

// Keyframes encodes a block 3 payload with the short (u16,u16,u32,u32) or
// wide (u32 x4) keyframe header. Each frame gets time delta equal to its index.
func Keyframes(wide bool, frames ...[]int32) []byte {
	var buf bytes.Buffer
	for i, angles := range frames {
		if wide {
			_ = binary.Write(&buf, binary.LittleEndian, [4]uint32{uint32(i), 0, 0, 0})
		} else {
			_ = binary.Write(&buf, binary.LittleEndian, uint16(i))
			_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
			_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{0, 0})
		}
		_ = binary.Write(&buf, binary.LittleEndian, angles)
	}
	return buf.Bytes()
}

// ScenarioHeader is block 0 of the walk/sit fixture.
var ScenarioHeader = mtn.Header{
	BlockNumber:  0,
	BlockSize:    mtn.HeaderSize,
	SectionCount: 4,
	Major:        1,
	Minor:        0,
	TileCount:    3,
	FrameRateMs:  32,
	Options:      0,
}

// ScenarioAngles is each keyframe of the walk/sit fixture: 0 and roughly 90 degrees.
var ScenarioAngles = []int32{0, 1570796}

// Scenario returns an ERS-7 motion with two joints and three identical keyframes.
func Scenario() []byte {
	return File(mtn.Magic, ScenarioHeader,
		Block{Number: 1, Payload: Identity("a##walk_sit", "doggo", "ERS-7")},
		Block{Number: 2, Payload: Joints("PRM:1001", "PRM:1002")},
		Block{Number: 3, Payload: Keyframes(false, ScenarioAngles, ScenarioAngles, ScenarioAngles)},
	)
}
