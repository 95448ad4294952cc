package mtn

import (
	"bytes"
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is an MTN file held in memory for decoding.
type File struct {
	Path    string
	Data    []byte
	mmapped bool
}

// Open maps path read-only. If mmap is unavailable the file is read into
// memory instead. The returned file must be closed to release the mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, errors.New("mtn: file too large to map")
	}
	size := int(size64)
	if size == 0 {
		return &File{Path: path, Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &File{Path: path, Data: data, mmapped: true}, nil
	}

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Data: data}, nil
}

// Reader returns a fresh seekable view of the file contents. The reader must
// not be used after Close.
func (f *File) Reader() io.ReadSeeker {
	return bytes.NewReader(f.Data)
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}
