package mtn

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated         = errors.New("mtn: truncated input")
	ErrStringTooLong     = errors.New("mtn: string too long")
	ErrSignatureMismatch = errors.New("mtn: signature mismatch")
	ErrInvalidHeader     = errors.New("mtn: invalid header")
)

// TruncatedError reports a fixed-size read that the stream could not satisfy.
type TruncatedError struct {
	Offset int64
	Want   int
	Got    int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("mtn: truncated input at offset %d: want %d bytes, got %d", e.Offset, e.Want, e.Got)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncated
}

// StringTooLongError reports a short string whose payload exceeds the length prefix.
type StringTooLongError struct {
	Len int
}

func (e *StringTooLongError) Error() string {
	return fmt.Sprintf("mtn: string of %d bytes exceeds %d byte limit", e.Len, MaxShortString)
}

func (e *StringTooLongError) Unwrap() error {
	return ErrStringTooLong
}

// BlockError attaches the positional block index to a decode or encode failure.
type BlockError struct {
	Index int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("mtn: block %d: %v", e.Index, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal integrity diagnostic raised while decoding.
type Warning struct {
	Offset int64
	Err    error
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return w.Err.Error()
	}
	return w.Err.Error() + ": " + w.Detail
}
