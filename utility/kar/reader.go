// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"fmt"
	"io"
	"io/ioutil"
	"sort"

	"github.com/pierrec/lz4"
)

// Open opens the archive held by r. It fails with ErrFileFormat when r
// does not hold a kar archive.
func Open(r io.ReaderAt) (*Archive, error) {
	header, dataStart, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}
	return &Archive{
		reader:    r,
		header:    header,
		dataStart: dataStart,
	}, nil
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader    io.ReaderAt
	header    Header
	dataStart int64
}

// Header returns the archive header including its index.
func (a *Archive) Header() Header {
	return a.header
}

// List returns the names of all files, sorted.
func (a *Archive) List() []string {
	names := make([]string, 0, len(a.header.Index))
	for _, e := range a.header.Index {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the archive contains a file.
func (a *Archive) Has(name string) bool {
	_, ok := a.header.Lookup(name)
	return ok
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != r.entry.Size {
		return nil, ErrFileFormat
	}
	return data, nil
}

// Find is ReadAll under the name asset finders use.
func (a *Archive) Find(name string) ([]byte, error) {
	return a.ReadAll(name)
}

// FindString returns the contents of a file as a string.
func (a *Archive) FindString(name string) (string, error) {
	data, err := a.ReadAll(name)
	return string(data), err
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	entry, ok := a.header.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	section := io.NewSectionReader(a.reader, a.dataStart+entry.Offset, entry.CompressedSize)
	return &Reader{
		entry:  entry,
		reader: lz4.NewReader(section),
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	entry  IndexEntry
	reader io.Reader
}

var _ io.Reader = &Reader{}

// Size is the uncompressed size of the file.
func (r *Reader) Size() int64 {
	return r.entry.Size
}

// Read reads already decompressed data
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.reader.Read(p)
}
