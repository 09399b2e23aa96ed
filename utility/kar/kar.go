// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar reads and writes asset archives in which every file is lz4
// compressed on its own. The index sits in front of the data, so a file
// can be located and streamed without scanning the archive, and an open
// archive serves concurrent readers.
//
// An archive starts with a 12 byte preamble: the bytes "KAR\x00" and the
// little endian uint64 length of the gob encoded Header that follows.
// File data comes after the header. Entry offsets count from the first
// byte after the header.
package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// Archive errors.
var (
	ErrFileFormat = errors.New("kar: not an archive or archive is damaged")
	ErrTempFail   = errors.New("kar: cannot stage file in temporary directory")
	ErrNotFound   = errors.New("kar: no such file in archive")
)

const (
	preambleSize = 12

	// maxHeaderSize bounds the header allocation of damaged archives.
	maxHeaderSize = 1 << 26
)

var signature = []byte("KAR\x00")

// IndexEntry locates one file in the archive.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header describes an archive. Index is filled in by the Builder.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

// Lookup returns the entry stored under name.
func (h *Header) Lookup(name string) (IndexEntry, bool) {
	for i := range h.Index {
		if h.Index[i].Name == name {
			return h.Index[i], true
		}
	}
	return IndexEntry{}, false
}

// DataSize is the number of compressed bytes following the header.
func (h *Header) DataSize() int64 {
	var n int64
	for _, e := range h.Index {
		n += e.CompressedSize
	}
	return n
}

// encode writes the preamble and the header to w.
func (h *Header) encode(w io.Writer) (int64, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(h); err != nil {
		return 0, fmt.Errorf("kar: encode header: %s", err)
	}

	pre := make([]byte, preambleSize)
	copy(pre, signature)
	binary.LittleEndian.PutUint64(pre[len(signature):], uint64(body.Len()))

	n, err := w.Write(pre)
	if err != nil {
		return int64(n), err
	}
	m, err := body.WriteTo(w)
	return int64(n) + m, err
}

// decodeHeader reads the preamble and header of an archive. It returns
// the position of the first data byte.
func decodeHeader(r io.ReaderAt) (Header, int64, error) {
	pre := make([]byte, preambleSize)
	if err := readFull(r, pre, 0); err != nil {
		return Header{}, 0, err
	}
	if !bytes.Equal(pre[:len(signature)], signature) {
		return Header{}, 0, ErrFileFormat
	}
	size := binary.LittleEndian.Uint64(pre[len(signature):])
	if size == 0 || size > maxHeaderSize {
		return Header{}, 0, fmt.Errorf("%w: header size %d", ErrFileFormat, size)
	}

	body := make([]byte, size)
	if err := readFull(r, body, preambleSize); err != nil {
		return Header{}, 0, err
	}
	var h Header
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&h); err != nil {
		return Header{}, 0, fmt.Errorf("%w: %s", ErrFileFormat, err)
	}
	return h, preambleSize + int64(size), nil
}

// readFull fills p from off. A short read is a format error, other read
// failures are returned as they are.
func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return ErrFileFormat
	}
	return err
}
