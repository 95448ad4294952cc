package mtn

import (
	"encoding/binary"
	"errors"
	"io"
)

var zeroPad [Align]byte

// writer counts bytes so alignment padding can be computed on the output
// offset, independent of the source file's offsets.
type writer struct {
	w   io.Writer
	off int64
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) write(p []byte) error {
	for len(p) > 0 {
		n, err := w.w.Write(p)
		w.off += int64(n)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

func (w *writer) writeU16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return w.write(b[:])
}

func (w *writer) writeU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return w.write(b[:])
}

func (w *writer) writeI32(v int32) error {
	return w.writeU32(uint32(v))
}

// writeShortString rejects payloads that do not fit a 1-byte length prefix
// before writing anything.
func (w *writer) writeShortString(s []byte) error {
	if len(s) > MaxShortString {
		return &StringTooLongError{Len: len(s)}
	}
	if err := w.write([]byte{byte(len(s))}); err != nil {
		return err
	}
	return w.write(s)
}

// padTo zero-fills up to the next multiple of align and returns the new offset.
func (w *writer) padTo(align int64) (int64, error) {
	if align > int64(len(zeroPad)) {
		return w.off, errors.New("mtn: alignment too large")
	}
	n := Padding(w.off, align)
	if n > 0 {
		if err := w.write(zeroPad[:n]); err != nil {
			return w.off, err
		}
	}
	return w.off, nil
}

func encodeHeader(b []byte, h Header) {
	binary.LittleEndian.PutUint32(b[0:4], h.BlockNumber)
	binary.LittleEndian.PutUint32(b[4:8], h.BlockSize)
	binary.LittleEndian.PutUint32(b[8:12], h.SectionCount)
	binary.LittleEndian.PutUint16(b[12:14], h.Major)
	binary.LittleEndian.PutUint16(b[14:16], h.Minor)
	binary.LittleEndian.PutUint16(b[16:18], h.TileCount)
	binary.LittleEndian.PutUint16(b[18:20], h.FrameRateMs)
	binary.LittleEndian.PutUint32(b[20:24], h.Options)
}
