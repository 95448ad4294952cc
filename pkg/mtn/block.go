package mtn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Block is one framed section after block 0. Exactly one payload field is set,
// chosen by Index.
type Block struct {
	// Index is the 1-based position of the block in the file.
	Index int
	// Header is the block header as declared by the source.
	Header BlockHeader
	// Offset is the absolute offset of the block header in the source.
	Offset int64
	// PayloadLen is the payload length implied by Header.Length.
	PayloadLen uint32

	Identity  *IdentityBlock
	Joints    *JointTable
	Keyframes *KeyframeStream
	Raw       []byte
}

// Kind names the payload schema for diagnostics.
func (b *Block) Kind() string {
	switch {
	case b.Identity != nil:
		return "identity"
	case b.Joints != nil:
		return "joints"
	case b.Keyframes != nil:
		return "keyframes"
	default:
		return "raw"
	}
}

// IdentityBlock is positional block 1.
type IdentityBlock struct {
	ActionName ShortString
	Author     ShortString
	// Platform is the raw on-disk platform identifier. Depending on the
	// producer this is an internal code or a public model name.
	Platform ShortString
}

// JointTable is positional block 2.
type JointTable struct {
	Codes []ShortString
}

// Count returns the number of joints in the table.
func (t *JointTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.Codes)
}

// KeyframeStream is positional block 3.
type KeyframeStream struct {
	Layout KeyframeLayout
	Frames []Keyframe
}

// Keyframe is one snapshot of every joint. Angles are in microradians and
// follow the joint table order.
type Keyframe struct {
	TimeDelta uint32
	Reserved  [3]uint32
	Angles    []int32
}

// ElapsedMs is the time between this keyframe and the previous one.
func (k *Keyframe) ElapsedMs(frameRateMs uint16) uint64 {
	return (uint64(k.TimeDelta) + 1) * uint64(frameRateMs)
}

// Degrees returns the keyframe angles converted to degrees.
func (k *Keyframe) Degrees() []float64 {
	out := make([]float64, len(k.Angles))
	for i, v := range k.Angles {
		out[i] = URadToDegrees(v)
	}
	return out
}

func (r *reader) readIdentity() (*IdentityBlock, error) {
	action, err := r.readShortString()
	if err != nil {
		return nil, fmt.Errorf("action name: %w", err)
	}
	author, err := r.readShortString()
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	platform, err := r.readShortString()
	if err != nil {
		return nil, fmt.Errorf("platform: %w", err)
	}
	return &IdentityBlock{ActionName: action, Author: author, Platform: platform}, nil
}

func (r *reader) readJointTable() (*JointTable, error) {
	n, err := r.readU16()
	if err != nil {
		return nil, fmt.Errorf("joint count: %w", err)
	}
	codes := make([]ShortString, 0, n)
	for i := 0; i < int(n); i++ {
		s, err := r.readShortString()
		if err != nil {
			return &JointTable{Codes: codes}, fmt.Errorf("joint %d: %w", i, err)
		}
		codes = append(codes, s)
	}
	return &JointTable{Codes: codes}, nil
}

// readKeyframes reads up to tiles keyframes. Exhausting the stream exactly at
// a keyframe boundary ends the stream early without error.
func (r *reader) readKeyframes(layout KeyframeLayout, tiles uint16, joints int) (*KeyframeStream, error) {
	ks := &KeyframeStream{Layout: layout, Frames: make([]Keyframe, 0, tiles)}
	for i := 0; i < int(tiles); i++ {
		hdr, err := r.readN(layout.HeaderSize())
		if err != nil {
			var te *TruncatedError
			if errors.As(err, &te) && te.Got == 0 {
				return ks, nil
			}
			return ks, fmt.Errorf("keyframe %d header: %w", i, err)
		}
		kf := decodeKeyframeHeader(layout, hdr)
		kf.Angles = make([]int32, joints)
		for j := range kf.Angles {
			v, err := r.readI32()
			if err != nil {
				return ks, fmt.Errorf("keyframe %d joint %d: %w", i, j, err)
			}
			kf.Angles[j] = v
		}
		ks.Frames = append(ks.Frames, kf)
	}
	return ks, nil
}

func decodeKeyframeHeader(layout KeyframeLayout, b []byte) Keyframe {
	var kf Keyframe
	if layout == LayoutWide {
		kf.TimeDelta = binary.LittleEndian.Uint32(b[0:4])
		kf.Reserved[0] = binary.LittleEndian.Uint32(b[4:8])
		kf.Reserved[1] = binary.LittleEndian.Uint32(b[8:12])
		kf.Reserved[2] = binary.LittleEndian.Uint32(b[12:16])
		return kf
	}
	kf.TimeDelta = uint32(binary.LittleEndian.Uint16(b[0:2]))
	kf.Reserved[0] = uint32(binary.LittleEndian.Uint16(b[2:4]))
	kf.Reserved[1] = binary.LittleEndian.Uint32(b[4:8])
	kf.Reserved[2] = binary.LittleEndian.Uint32(b[8:12])
	return kf
}

// encodePayload serialises the block payload without its header.
func encodePayload(b *Block) ([]byte, error) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	switch {
	case b.Identity != nil:
		id := b.Identity
		for _, s := range []ShortString{id.ActionName, id.Author, id.Platform} {
			if err := w.writeShortString(s); err != nil {
				return nil, err
			}
		}
	case b.Joints != nil:
		if len(b.Joints.Codes) > math.MaxUint16 {
			return nil, fmt.Errorf("mtn: %d joints exceed table capacity", len(b.Joints.Codes))
		}
		if err := w.writeU16(uint16(len(b.Joints.Codes))); err != nil {
			return nil, err
		}
		for i, code := range b.Joints.Codes {
			if err := w.writeShortString(code); err != nil {
				return nil, fmt.Errorf("joint %d: %w", i, err)
			}
		}
	case b.Keyframes != nil:
		layout := b.Keyframes.Layout
		if layout == LayoutAuto {
			layout = LayoutShort
		}
		for i := range b.Keyframes.Frames {
			if err := writeKeyframe(w, layout, &b.Keyframes.Frames[i]); err != nil {
				return nil, fmt.Errorf("keyframe %d: %w", i, err)
			}
		}
	default:
		if err := w.write(b.Raw); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeKeyframe(w *writer, layout KeyframeLayout, kf *Keyframe) error {
	if layout == LayoutWide {
		for _, v := range []uint32{kf.TimeDelta, kf.Reserved[0], kf.Reserved[1], kf.Reserved[2]} {
			if err := w.writeU32(v); err != nil {
				return err
			}
		}
	} else {
		if kf.TimeDelta > math.MaxUint16 || kf.Reserved[0] > math.MaxUint16 {
			return fmt.Errorf("mtn: keyframe header does not fit %s layout", layout)
		}
		if err := w.writeU16(uint16(kf.TimeDelta)); err != nil {
			return err
		}
		if err := w.writeU16(uint16(kf.Reserved[0])); err != nil {
			return err
		}
		if err := w.writeU32(kf.Reserved[1]); err != nil {
			return err
		}
		if err := w.writeU32(kf.Reserved[2]); err != nil {
			return err
		}
	}
	for _, a := range kf.Angles {
		if err := w.writeI32(a); err != nil {
			return err
		}
	}
	return nil
}
