package mtn

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type reader struct {
	r    io.ReadSeeker
	off  int64
	size int64
}

func newReader(rs io.ReadSeeker) (*reader, error) {
	off, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	return &reader{r: rs, off: off, size: size}, nil
}

// readN reads exactly n bytes. A short read is a *TruncatedError; any other
// stream failure propagates unchanged.
func (r *reader) readN(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("mtn: invalid read length %d", n)
	}
	// Declared lengths are untrusted; never allocate past the end of the stream.
	if r.off+int64(n) > r.size {
		avail := r.size - r.off
		if avail < 0 {
			avail = 0
		}
		return nil, &TruncatedError{Offset: r.off, Want: n, Got: int(avail)}
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	start := r.off
	r.off += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return buf[:got], &TruncatedError{Offset: start, Want: n, Got: got}
		}
		return nil, err
	}
	return buf, nil
}

func (r *reader) readU8() (uint8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readU16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) readU32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

// readShortString reads a 1-byte length prefix and that many raw bytes.
func (r *reader) readShortString() (ShortString, error) {
	n, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return ShortString{}, nil
	}
	b, err := r.readN(int(n))
	if err != nil {
		return nil, err
	}
	return ShortString(b), nil
}

func (r *reader) readHeader() (Header, error) {
	b, err := r.readN(HeaderSize)
	if err != nil {
		return Header{}, err
	}
	return decodeHeader(b), nil
}

// readBlockHeader returns io.EOF when the stream is exhausted exactly at a
// block boundary. A partial header is a truncation.
func (r *reader) readBlockHeader() (BlockHeader, error) {
	b, err := r.readN(BlockHeaderSize)
	if err != nil {
		var te *TruncatedError
		if errors.As(err, &te) && te.Got == 0 {
			return BlockHeader{}, io.EOF
		}
		return BlockHeader{}, err
	}
	return BlockHeader{
		Number: binary.LittleEndian.Uint32(b[0:4]),
		Length: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

func (r *reader) seek(off int64) error {
	if _, err := r.r.Seek(off, io.SeekStart); err != nil {
		return err
	}
	r.off = off
	return nil
}

func decodeHeader(b []byte) Header {
	return Header{
		BlockNumber:  binary.LittleEndian.Uint32(b[0:4]),
		BlockSize:    binary.LittleEndian.Uint32(b[4:8]),
		SectionCount: binary.LittleEndian.Uint32(b[8:12]),
		Major:        binary.LittleEndian.Uint16(b[12:14]),
		Minor:        binary.LittleEndian.Uint16(b[14:16]),
		TileCount:    binary.LittleEndian.Uint16(b[16:18]),
		FrameRateMs:  binary.LittleEndian.Uint16(b[18:20]),
		Options:      binary.LittleEndian.Uint32(b[20:24]),
	}
}
