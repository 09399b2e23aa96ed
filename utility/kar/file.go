// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"golang.org/x/exp/mmap"
)

// OpenFile memory maps the archive at path.
func OpenFile(path string) (*File, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := Open(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &File{
		Archive: ar,
		mapped:  r,
		path:    path,
	}, nil
}

// File is an Archive backed by a memory mapped file.
type File struct {
	*Archive

	mapped *mmap.ReaderAt
	path   string
}

// Path returns the path the archive was opened from.
func (f *File) Path() string {
	return f.path
}

// Close unmaps the file. Readers opened from it must not be used afterwards.
func (f *File) Close() error {
	return f.mapped.Close()
}
