package mtn

import (
	"errors"
	"io"
	"math"
)

// EncoderOptions control how blocks are framed on output.
type EncoderOptions struct {
	Framing Framing
	// LengthIncludesHeader adds the block header to recomputed lengths.
	LengthIncludesHeader bool
}

// Encoder writes an MTN stream one block at a time. Alignment padding is
// computed from the output offset, never copied from the source.
type Encoder struct {
	w          *writer
	opts       EncoderOptions
	wroteHead  bool
	blockCount int
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts EncoderOptions) *Encoder {
	return &Encoder{w: newWriter(w), opts: opts}
}

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int64 { return e.w.off }

// Blocks returns the number of blocks written after block 0.
func (e *Encoder) Blocks() int { return e.blockCount }

// WriteHeader writes the signature and block 0 verbatim.
func (e *Encoder) WriteHeader(magic [4]byte, h Header) error {
	if e.wroteHead {
		return errors.New("mtn: header already written")
	}
	var buf [len(Magic) + HeaderSize]byte
	copy(buf[:4], magic[:])
	encodeHeader(buf[4:], h)
	if err := e.w.write(buf[:]); err != nil {
		return err
	}
	e.wroteHead = true
	return nil
}

// WriteBlock aligns the cursor to a DWORD boundary and writes the block header
// and payload. The payload is fully encoded before anything is written, so an
// encoding failure such as an oversized string leaves the output at the
// previous block boundary plus padding.
func (e *Encoder) WriteBlock(b *Block) error {
	if !e.wroteHead {
		return errors.New("mtn: block written before header")
	}
	payload, err := encodePayload(b)
	if err != nil {
		return &BlockError{Index: b.Index, Err: err}
	}
	if _, err := e.w.padTo(Align); err != nil {
		return &BlockError{Index: b.Index, Err: err}
	}

	length := b.Header.Length
	var tail int64
	if e.opts.Framing == FramingRecompute {
		payloadStart := e.w.off + BlockHeaderSize
		tail = Padding(payloadStart+int64(len(payload)), Align)
		n := int64(len(payload)) + tail
		if e.opts.LengthIncludesHeader {
			n += BlockHeaderSize
		}
		if n > math.MaxUint32 {
			return &BlockError{Index: b.Index, Err: errors.New("mtn: block payload too large")}
		}
		length = uint32(n)
	}

	if err := e.w.writeU32(b.Header.Number); err != nil {
		return &BlockError{Index: b.Index, Err: err}
	}
	if err := e.w.writeU32(length); err != nil {
		return &BlockError{Index: b.Index, Err: err}
	}
	if err := e.w.write(payload); err != nil {
		return &BlockError{Index: b.Index, Err: err}
	}
	if tail > 0 {
		if err := e.w.write(zeroPad[:tail]); err != nil {
			return &BlockError{Index: b.Index, Err: err}
		}
	}
	e.blockCount++
	return nil
}
