package mtn

import (
	"errors"
	"io"
)

// Document is a fully decoded MTN stream. It lives for one parse or convert
// pass and is never cached.
type Document struct {
	Magic    [4]byte
	Header   Header
	Blocks   []*Block
	Warnings []Warning
}

// Parse decodes every block of rs. On a terminal block error the blocks
// decoded before it, including the partial failing block, are returned along
// with the error.
func Parse(rs io.ReadSeeker, opts Options) (*Document, error) {
	dec, err := NewDecoder(rs, opts)
	if err != nil {
		return nil, err
	}
	doc := &Document{Magic: dec.Magic(), Header: dec.Header()}
	for {
		blk, err := dec.Next()
		if blk != nil {
			doc.Blocks = append(doc.Blocks, blk)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			doc.Warnings = dec.Warnings()
			return doc, err
		}
	}
	doc.Warnings = dec.Warnings()
	return doc, nil
}

// Block returns the block at positional index i, or nil.
func (d *Document) Block(i int) *Block {
	for _, b := range d.Blocks {
		if b.Index == i {
			return b
		}
	}
	return nil
}

// Identity returns block 1's payload, or nil when absent.
func (d *Document) Identity() *IdentityBlock {
	if b := d.Block(IndexIdentity); b != nil {
		return b.Identity
	}
	return nil
}

// Joints returns block 2's payload, or nil when absent.
func (d *Document) Joints() *JointTable {
	if b := d.Block(IndexJointTable); b != nil {
		return b.Joints
	}
	return nil
}

// Keyframes returns block 3's payload, or nil when absent.
func (d *Document) Keyframes() *KeyframeStream {
	if b := d.Block(IndexKeyframes); b != nil {
		return b.Keyframes
	}
	return nil
}

// Encode writes the document unchanged apart from recomputed padding and,
// under FramingRecompute, recomputed block lengths.
func (d *Document) Encode(w io.Writer, opts EncoderOptions) (int64, error) {
	enc := NewEncoder(w, opts)
	if err := enc.WriteHeader(d.Magic, d.Header); err != nil {
		return enc.Offset(), err
	}
	for _, b := range d.Blocks {
		if err := enc.WriteBlock(b); err != nil {
			return enc.Offset(), err
		}
	}
	return enc.Offset(), nil
}
