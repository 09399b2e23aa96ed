// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package assets resolves asset names to their contents by searching
// loose directories, kar archives and the built-in box in order.
package assets

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/devblok/glbox/utility/kar"
	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no source holds the asset.
var ErrNotFound = errors.New("asset not found")

// DefaultShaderPath is the built-in shader every renderer starts with.
const DefaultShaderPath = "shaders/default.glsl"

var builtin = packr.NewBox("./builtin")

// Builtin returns the box of assets compiled into the binary.
func Builtin() packd.Finder {
	return &builtin
}

// Dir serves files below a directory on disk.
type Dir string

// Find implements packd.Finder
func (d Dir) Find(name string) ([]byte, error) {
	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(string(d), path)
	}
	return ioutil.ReadFile(path)
}

// FindString implements packd.Finder
func (d Dir) FindString(name string) (string, error) {
	data, err := d.Find(name)
	return string(data), err
}

// Chain searches a list of finders, first match wins.
type Chain struct {
	finders []packd.Finder
}

var _ packd.Finder = &Chain{}

// NewChain creates a chain over finders.
func NewChain(finders ...packd.Finder) *Chain {
	return &Chain{finders: finders}
}

// Append adds a finder searched after the existing ones.
func (c *Chain) Append(f packd.Finder) {
	c.finders = append(c.finders, f)
}

// Len is the number of finders in the chain.
func (c *Chain) Len() int {
	return len(c.finders)
}

// Find implements packd.Finder
func (c *Chain) Find(name string) ([]byte, error) {
	for _, f := range c.finders {
		if data, err := f.Find(name); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindString implements packd.Finder
func (c *Chain) FindString(name string) (string, error) {
	data, err := c.Find(name)
	return string(data), err
}

// Has reports whether any finder holds name.
func (c *Chain) Has(name string) bool {
	_, err := c.Find(name)
	return err == nil
}

// Open builds the standard chain: the directory if set, then every
// archive in order, then the built-in box. Archives that fail to open
// are logged and skipped. The returned closer unmaps the archives.
func Open(dir string, archives []string) (*Chain, func()) {
	chain := NewChain()
	if dir != "" {
		chain.Append(Dir(dir))
	}

	var opened []*kar.File
	for _, path := range archives {
		ar, err := kar.OpenFile(path)
		if err != nil {
			log.WithField("archive", path).Warn("kar.OpenFile(): " + err.Error())
			continue
		}
		log.WithField("archive", path).WithField("files", len(ar.List())).Info("Asset archive opened")
		opened = append(opened, ar)
		chain.Append(ar)
	}
	chain.Append(Builtin())

	return chain, func() {
		for _, ar := range opened {
			ar.Close()
		}
	}
}
