// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"strings"
)

// Flags is a set of shader capabilities. Every compiled permutation
// of a shader corresponds to one combination of flags.
type Flags uint32

// Shader capability flags.
const (
	FlagNormal Flags = 1 << iota
	FlagInstanced
	FlagCanSkin
)

// Combinations is the fixed, ordered table of flag sets that
// a shader may be compiled for.
var Combinations = [...]Flags{
	FlagNormal,
	FlagNormal | FlagInstanced,
	FlagNormal | FlagCanSkin,
	FlagNormal | FlagInstanced | FlagCanSkin,
}

// defines lists the preprocessor symbol of each optional capability.
var defines = []struct {
	flag Flags
	name string
}{
	{FlagInstanced, "SHADER_INSTANCED"},
	{FlagCanSkin, "SHADER_SKINNED"},
}

// SubsetOf reports whether every flag in f is also set in other.
func (f Flags) SubsetOf(other Flags) bool {
	return f&other == f
}

// String lists the set flags, e.g. "normal|instanced".
func (f Flags) String() string {
	var names []string
	if f&FlagNormal != 0 {
		names = append(names, "normal")
	}
	if f&FlagInstanced != 0 {
		names = append(names, "instanced")
	}
	if f&FlagCanSkin != 0 {
		names = append(names, "skinned")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Permutations returns the entries of Combinations that are
// a subset of supported, in table order.
func Permutations(supported Flags) []Flags {
	var out []Flags
	for _, c := range Combinations {
		if c.SubsetOf(supported) {
			out = append(out, c)
		}
	}
	return out
}

// Defines builds the preprocessor block inserted after the version line,
// one define per optional capability set in f.
func Defines(f Flags) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, d := range defines {
		if f&d.flag != 0 {
			b.WriteString("#define ")
			b.WriteString(d.name)
			b.WriteString(" 1\n")
		}
	}
	return b.String()
}
