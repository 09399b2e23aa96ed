// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader parses annotated GLSL sources into a version line,
// capability metadata and per-stage section bodies.
//
// A source looks like:
//
//	#version 450 core
//	#supports instancing
//
//	#section vertex
//	...
//	#endsection
//
//	#section fragment
//	...
//	#endsection
//
// Directives are matched case-sensitively on the first token of a line.
// Anything not recognised is treated as ordinary source text.
package shader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Stage names every shader must provide.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
)

// Directives recognised by the parser.
const (
	directiveVersion    = "#version"
	directiveSupports   = "#supports"
	directiveSection    = "#section"
	directiveEndSection = "#endsection"
	directiveEnd        = "#end"
)

// ErrNoSection is returned when a required stage section is missing.
var ErrNoSection = errors.New("shader section not found")

var capabilities = map[string]Flags{
	"instancing": FlagInstanced,
	"batching":   FlagInstanced,
	"skinning":   FlagCanSkin,
}

// Source is a parsed shader source.
type Source struct {
	Version   string
	Supported Flags
	Vertex    string
	Fragment  string
}

// Parse reads the metadata and both stage sections from r.
// The cursor of r is left where it was found.
func Parse(r io.ReadSeeker) (*Source, error) {
	version, supported, err := ExtractMeta(r)
	if err != nil {
		return nil, err
	}
	vertex, err := ExtractSection(r, StageVertex)
	if err != nil {
		return nil, err
	}
	fragment, err := ExtractSection(r, StageFragment)
	if err != nil {
		return nil, err
	}
	return &Source{
		Version:   version,
		Supported: supported,
		Vertex:    vertex,
		Fragment:  fragment,
	}, nil
}

// Permutations returns the flag combinations this source compiles to.
func (s *Source) Permutations() []Flags {
	return Permutations(s.Supported)
}

// StageText assembles the text handed to the compiler for one stage
// of the permutation selected by flags.
func (s *Source) StageText(stage string, flags Flags) string {
	body := s.Vertex
	if stage == StageFragment {
		body = s.Fragment
	}
	return s.Version + Defines(flags) + body
}

// ExtractMeta scans the whole of r for the version line and capability
// directives. FlagNormal is always supported.
func ExtractMeta(r io.ReadSeeker) (version string, supported Flags, err error) {
	supported = FlagNormal
	err = rewound(r, func(scanner *bufio.Scanner) {
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case directiveVersion:
				version = directiveVersion + " " + strings.Join(fields[1:], " ") + "\n"
			case directiveSupports:
				for _, c := range fields[1:] {
					supported |= capabilities[c]
				}
			}
		}
	})
	return version, supported, err
}

// ExtractSection returns the lines between "#section name" and the next
// "#endsection" or "#end". Version and capability lines inside the
// section are dropped.
func ExtractSection(r io.ReadSeeker, name string) (string, error) {
	var (
		lines  []string
		inside bool
		found  bool
	)
	err := rewound(r, func(scanner *bufio.Scanner) {
		for scanner.Scan() {
			line := scanner.Text()
			fields := strings.Fields(line)
			var first string
			if len(fields) > 0 {
				first = fields[0]
			}

			if !inside {
				if first == directiveSection && len(fields) > 1 && fields[1] == name {
					inside, found = true, true
				}
				continue
			}

			switch first {
			case directiveEndSection, directiveEnd:
				return
			case directiveSupports, directiveVersion:
				continue
			}
			lines = append(lines, line)
		}
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrNoSection, name)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// rewound runs scan over the whole stream and restores the cursor.
func rewound(r io.ReadSeeker, scan func(*bufio.Scanner)) error {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	scanner := bufio.NewScanner(r)
	scan(scanner)
	scanErr := scanner.Err()
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	return scanErr
}
