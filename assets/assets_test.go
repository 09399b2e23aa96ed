// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package assets_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devblok/glbox/assets"
	"github.com/devblok/glbox/utility/kar"
	"github.com/gobuffalo/packd"
)

func TestBuiltinDefaultShader(t *testing.T) {
	src, err := assets.Builtin().FindString(assets.DefaultShaderPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "#section vertex") || !strings.Contains(src, "#supports instancing") {
		t.Fatal("default shader is missing its sections")
	}
}

func TestChainOrder(t *testing.T) {
	first := packd.NewMemoryBox()
	first.AddString("a.txt", "first")
	second := packd.NewMemoryBox()
	second.AddString("a.txt", "second")
	second.AddString("b.txt", "only second")

	chain := assets.NewChain(first, second)

	if s, err := chain.FindString("a.txt"); err != nil || s != "first" {
		t.Fatalf("incorrect a.txt: %s %v", s, err)
	}
	if s, err := chain.FindString("b.txt"); err != nil || s != "only second" {
		t.Fatalf("incorrect b.txt: %s %v", s, err)
	}
	if _, err := chain.Find("c.txt"); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("incorrect error: %v", err)
	}
	if chain.Has("c.txt") {
		t.Fatal("chain must not have c.txt")
	}
}

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "assettest")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if err := ioutil.WriteFile(filepath.Join(dir, "loose.txt"), []byte("loose"), 0644); err != nil {
		t.Fatal(err)
	}

	builder, err := kar.NewBuilder(kar.Header{Author: "test", DateCreated: time.Now().Unix(), Version: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()
	builder.Add("packed.txt", strings.NewReader("packed"))
	archivePath := filepath.Join(dir, "test.kar")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := builder.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	chain, closer := assets.Open(dir, []string{archivePath, filepath.Join(dir, "missing.kar")})
	defer closer()

	if chain.Len() != 3 {
		t.Fatalf("incorrect number of sources: %d", chain.Len())
	}
	for name, expected := range map[string]string{
		"loose.txt":  "loose",
		"packed.txt": "packed",
	} {
		if s, err := chain.FindString(name); err != nil || s != expected {
			t.Errorf("incorrect %s: %s %v", name, s, err)
		}
	}
	if !chain.Has(assets.DefaultShaderPath) {
		t.Fatal("built-in shader must be reachable through the chain")
	}
}
