package mtn

import (
	"fmt"
	"io"
)

// Options control how a stream is framed and decoded.
type Options struct {
	// Layout selects the keyframe header width. LayoutAuto infers it from
	// the keyframe block length.
	Layout KeyframeLayout
	// LengthIncludesHeader treats block_length as covering the 8-byte block
	// header rather than the payload alone.
	LengthIncludesHeader bool
}

// Decoder reads an MTN stream one block at a time.
//
// Blocks are framed strictly by the source: after each block the cursor moves
// to payload start plus the declared payload length, whatever the payload
// decoder consumed. Block 3 needs the joint count from block 2, so blocks
// must be read in order.
type Decoder struct {
	r      *reader
	opts   Options
	magic  [4]byte
	header Header

	index      int
	jointCount int
	warnings   []Warning
	done       bool
}

// NewDecoder reads the magic and block 0 from rs. A magic mismatch is recorded
// as a warning; only a stream too short to hold block 0 is an error.
func NewDecoder(rs io.ReadSeeker, opts Options) (*Decoder, error) {
	r, err := newReader(rs)
	if err != nil {
		return nil, err
	}
	d := &Decoder{r: r, opts: opts}

	sig, err := r.readN(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("mtn: signature: %w", err)
	}
	copy(d.magic[:], sig)
	if string(sig) != Magic {
		d.warnings = append(d.warnings, Warning{
			Offset: 0,
			Err:    ErrSignatureMismatch,
			Detail: fmt.Sprintf("got %q, want %q", sig, Magic),
		})
	}

	h, err := r.readHeader()
	if err != nil {
		return nil, fmt.Errorf("mtn: block 0: %w", err)
	}
	if !h.Valid() {
		return nil, fmt.Errorf("%w: section count %d", ErrInvalidHeader, h.SectionCount)
	}
	d.header = h
	return d, nil
}

// Magic returns the signature bytes exactly as read.
func (d *Decoder) Magic() [4]byte { return d.magic }

// Header returns block 0.
func (d *Decoder) Header() Header { return d.header }

// Warnings returns the non-fatal diagnostics collected so far.
func (d *Decoder) Warnings() []Warning { return d.warnings }

// JointCount is the joint count declared by block 2, or 0 before it is read.
func (d *Decoder) JointCount() int { return d.jointCount }

// Next returns the next block. It returns io.EOF once section_count-1 blocks
// have been read or when the stream ends before a block header; both are
// normal termination. Any other error is terminal and wrapped in *BlockError.
// On a payload error the partially decoded block is returned with the error.
func (d *Decoder) Next() (*Block, error) {
	if d.done {
		return nil, io.EOF
	}
	if d.index+1 >= int(d.header.SectionCount) {
		d.done = true
		return nil, io.EOF
	}

	start := d.r.off
	bh, err := d.r.readBlockHeader()
	if err == io.EOF {
		d.done = true
		d.warnings = append(d.warnings, Warning{
			Offset: start,
			Err:    io.EOF,
			Detail: fmt.Sprintf("stream ended after %d of %d declared sections", d.index+1, d.header.SectionCount),
		})
		return nil, io.EOF
	}
	if err != nil {
		d.done = true
		return nil, &BlockError{Index: d.index + 1, Err: err}
	}
	d.index++

	payloadLen := bh.Length
	if d.opts.LengthIncludesHeader {
		if payloadLen < BlockHeaderSize {
			payloadLen = 0
		} else {
			payloadLen -= BlockHeaderSize
		}
	}
	payloadStart := d.r.off
	blk := &Block{Index: d.index, Header: bh, Offset: start, PayloadLen: payloadLen}

	if err := d.decodePayload(blk); err != nil {
		d.done = true
		return blk, &BlockError{Index: d.index, Err: err}
	}

	if err := d.r.seek(payloadStart + int64(payloadLen)); err != nil {
		d.done = true
		return blk, &BlockError{Index: d.index, Err: err}
	}
	return blk, nil
}

func (d *Decoder) decodePayload(blk *Block) error {
	var err error
	switch blk.Index {
	case IndexIdentity:
		blk.Identity, err = d.r.readIdentity()
	case IndexJointTable:
		blk.Joints, err = d.r.readJointTable()
		d.jointCount = blk.Joints.Count()
	case IndexKeyframes:
		layout := resolveLayout(d.opts.Layout, blk.PayloadLen, d.header.TileCount, d.jointCount)
		blk.Keyframes, err = d.r.readKeyframes(layout, d.header.TileCount, d.jointCount)
	default:
		blk.Raw, err = d.r.readN(int(blk.PayloadLen))
	}
	return err
}
