package mtn

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestHeaderEncodingLittleEndian(t *testing.T) {
	t.Parallel()

	h := Header{
		BlockNumber:  0x01020304,
		BlockSize:    0x11121314,
		SectionCount: 4,
		Major:        0x2122,
		Minor:        0x3132,
		TileCount:    0x4142,
		FrameRateMs:  32,
		Options:      0x51525354,
	}
	var raw [HeaderSize]byte
	encodeHeader(raw[:], h)
	if raw[0] != 0x04 || raw[3] != 0x01 {
		t.Fatalf("block number is not little-endian: %x", raw[0:4])
	}
	if raw[12] != 0x22 || raw[13] != 0x21 {
		t.Fatalf("major is not little-endian: %x", raw[12:14])
	}
	if got := decodeHeader(raw[:]); got != h {
		t.Fatalf("header round-trip mismatch: got %+v want %+v", got, h)
	}
}

func TestReadShortString(t *testing.T) {
	t.Parallel()

	r, err := newReader(bytes.NewReader([]byte{3, 'a', 'b', 'c', 0, 2, 'x'}))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	s, err := r.readShortString()
	if err != nil || s.Key() != "abc" {
		t.Fatalf("first string: %q %v", s, err)
	}
	s, err = r.readShortString()
	if err != nil || len(s) != 0 {
		t.Fatalf("empty string: %q %v", s, err)
	}
	_, err = r.readShortString()
	var te *TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("expected truncation, got %v", err)
	}
	if te.Want != 2 || te.Got != 1 || te.Offset != 6 {
		t.Fatalf("truncation detail: %+v", te)
	}
}

func TestWriteShortString(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := newWriter(&buf)
	if err := w.writeShortString([]byte("PRM:1001")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), append([]byte{8}, "PRM:1001"...)) {
		t.Fatalf("encoded: %x", buf.Bytes())
	}

	full := bytes.Repeat([]byte{'a'}, MaxShortString)
	if err := w.writeShortString(full); err != nil {
		t.Fatalf("255 bytes must fit: %v", err)
	}

	before := buf.Len()
	err := w.writeShortString(append(full, 'a'))
	if !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected string too long, got %v", err)
	}
	if buf.Len() != before {
		t.Fatalf("nothing may be written for an oversized string")
	}
}

func TestPadTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		written int
		pad     int
	}{
		{0, 0}, {1, 3}, {2, 2}, {3, 1}, {4, 0}, {5, 3},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		w := newWriter(&buf)
		_ = w.write(bytes.Repeat([]byte{0xff}, tt.written))
		off, err := w.padTo(Align)
		if err != nil {
			t.Fatalf("pad: %v", err)
		}
		if off != int64(tt.written+tt.pad) || buf.Len() != tt.written+tt.pad {
			t.Fatalf("written=%d: got offset %d len %d, want %d", tt.written, off, buf.Len(), tt.written+tt.pad)
		}
		for _, b := range buf.Bytes()[tt.written:] {
			if b != 0 {
				t.Fatalf("padding must be zero: %x", buf.Bytes())
			}
		}
	}
}

func TestShortStringText(t *testing.T) {
	t.Parallel()

	s := ShortString{0xff, 'P', 'R', 'M', ':', '1'}
	if got := s.Text(); !strings.HasSuffix(got, "PRM:1") || !strings.Contains(got, "�") {
		t.Fatalf("lossy decode: %q", got)
	}
	if s.Key() != "\xffPRM:1" {
		t.Fatalf("key must keep raw bytes: %q", s.Key())
	}
	if got := s.PRMCode().Key(); got != "PRM:1" {
		t.Fatalf("prm code: %q", got)
	}
	plain := ShortString("PRM:2")
	if got := plain.PRMCode().Key(); got != "PRM:2" {
		t.Fatalf("prm code without prefix: %q", got)
	}
}

func TestAngleConversion(t *testing.T) {
	t.Parallel()

	if got := URadToDegrees(1570796); math.Abs(got-90) > 1e-4 {
		t.Fatalf("1570796 urad: got %v degrees", got)
	}

	boundaries := []int32{0, 1, -1, 1_000_000, -1_000_000, 1570796, -3141592, 3141593}
	for _, v := range boundaries {
		got := DegreesToURad(URadToDegrees(v))
		if d := int64(got) - int64(v); d < -1 || d > 1 {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}
	for v := int32(-4_000_000); v <= 4_000_000; v += 997 {
		got := DegreesToURad(URadToDegrees(v))
		if d := int64(got) - int64(v); d < -1 || d > 1 {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}

	// Truncation is toward zero.
	if got := DegreesToURad(URadToDegrees(1_000_000) - 1e-9); got != 999_999 {
		t.Fatalf("expected truncation to 999999, got %d", got)
	}
	if got := DegreesToURad(-(URadToDegrees(1_000_000) - 1e-9)); got != -999_999 {
		t.Fatalf("expected truncation to -999999, got %d", got)
	}
	if got := DegreesToURad(1e12); got != math.MaxInt32 {
		t.Fatalf("expected saturation, got %d", got)
	}
}

func TestResolveLayout(t *testing.T) {
	t.Parallel()

	if got := resolveLayout(LayoutAuto, 3*(12+8), 3, 2); got != LayoutShort {
		t.Fatalf("short payload: got %v", got)
	}
	if got := resolveLayout(LayoutAuto, 3*(16+8), 3, 2); got != LayoutWide {
		t.Fatalf("wide payload: got %v", got)
	}
	if got := resolveLayout(LayoutAuto, 7, 3, 2); got != LayoutShort {
		t.Fatalf("unknown payload must default to short: got %v", got)
	}
	if got := resolveLayout(LayoutWide, 3*(12+8), 3, 2); got != LayoutWide {
		t.Fatalf("explicit layout must win: got %v", got)
	}
}
