// Copyright 2026 The gitcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"fmt"
	"strings"

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/internal/scan"
)

// A Tree is a Git tree object: a flat list of files in a directory.
// The zero value is an empty tree.
//
// The format requires entries to be sorted by file name. The codec
// preserves insertion order and does not re-sort: callers supplying
// entries out of order produce a tree Git itself would reject, but the
// bytes still round-trip.
type Tree []TreeEntry

// A TreeEntry represents a single file in a Git tree object.
type TreeEntry struct {
	Mode     Mode
	Name     string
	ObjectID githash.SHA1
}

// ParseTree deserializes a tree in the Git object format. It is the same
// as calling UnmarshalBinary on a new tree.
func ParseTree(src []byte) (Tree, error) {
	var tree Tree
	err := tree.UnmarshalBinary(src)
	return tree, err
}

// Type returns TypeTree.
func (tree Tree) Type() Type {
	return TypeTree
}

// MarshalBinary serializes the tree into the Git tree object format,
// entries in their current order.
func (tree Tree) MarshalBinary() ([]byte, error) {
	var dst []byte
	for _, ent := range tree {
		var err error
		dst, err = ent.appendTo(dst)
		if err != nil {
			return nil, fmt.Errorf("marshal git tree: %w", err)
		}
	}
	return dst, nil
}

// UnmarshalBinary deserializes a tree from the Git object format.
func (tree *Tree) UnmarshalBinary(src []byte) error {
	*tree = nil
	cur := scan.New("git tree", src)
	for cur.Len() > 0 {
		ent, err := parseTreeEntry(cur)
		if err != nil {
			return err
		}
		*tree = append(*tree, ent)
	}
	return nil
}

// SHA1 computes the SHA-1 hash of the tree object. It panics if the tree
// cannot be serialized.
func (tree Tree) SHA1() githash.TreeID {
	buf, err := tree.MarshalBinary()
	if err != nil {
		panic(err)
	}
	sum := githash.Sum(append(AppendPrefix(nil, TypeTree, int64(len(buf))), buf...))
	return githash.TreeID(sum)
}

// String formats the tree in an ASCII-clean debugging format.
func (tree Tree) String() string {
	sb := new(strings.Builder)
	for i, ent := range tree {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(ent.String())
	}
	return sb.String()
}

func parseTreeEntry(cur *scan.Cursor) (TreeEntry, error) {
	modeASCII, err := cur.Until(' ')
	if err != nil {
		return TreeEntry{}, err
	}
	mode, ok := modesByASCII[string(modeASCII)]
	if !ok {
		return TreeEntry{}, cur.Errorf("entry: unknown mode %q", modeASCII)
	}
	name, err := cur.Until(0)
	if err != nil {
		return TreeEntry{}, err
	}
	raw, err := cur.Take(githash.SHA1Size)
	if err != nil {
		return TreeEntry{}, err
	}
	ent := TreeEntry{Mode: mode, Name: string(name)}
	copy(ent.ObjectID[:], raw)
	return ent, nil
}

// appendTo formats the entry in the manner Git expects.
func (ent TreeEntry) appendTo(dst []byte) ([]byte, error) {
	if !ent.Mode.IsValid() {
		return dst, fmt.Errorf("entry %q: unknown mode %#o", ent.Name, uint32(ent.Mode))
	}
	if strings.Contains(ent.Name, "\x00") {
		return dst, fmt.Errorf("entry %q contains NUL", ent.Name)
	}
	dst = append(dst, ent.Mode.String()...)
	dst = append(dst, ' ')
	dst = append(dst, ent.Name...)
	dst = append(dst, 0)
	dst = append(dst, ent.ObjectID[:]...)
	return dst, nil
}

// String formats the entry in an ASCII-clean format similar to the Git
// tree object format.
func (ent TreeEntry) String() string {
	sb := new(strings.Builder)
	sb.WriteString(ent.Mode.String())
	sb.WriteByte(' ')
	sb.WriteString(ent.Name)
	sb.WriteByte(' ')
	sb.Write(appendHex(nil, ent.ObjectID[:]))
	return sb.String()
}

// Mode is a tree entry file mode. Only the four modes below appear in
// tree objects handled by this package.
type Mode uint32

// Git tree entry modes.
const (
	// ModePlain indicates a non-executable file.
	ModePlain Mode = 0o100644
	// ModeExecutable indicates an executable file.
	ModeExecutable Mode = 0o100755
	// ModeSymlink indicates a symbolic link.
	ModeSymlink Mode = 0o120000
	// ModeDir indicates a subdirectory.
	ModeDir Mode = 0o040000
)

// modesByASCII maps the exact serialized form to its mode. Note that the
// directory mode is written without a leading zero.
var modesByASCII = map[string]Mode{
	"100644": ModePlain,
	"100755": ModeExecutable,
	"120000": ModeSymlink,
	"40000":  ModeDir,
}

// IsValid reports whether m is one of the known mode constants.
func (m Mode) IsValid() bool {
	switch m {
	case ModePlain, ModeExecutable, ModeSymlink, ModeDir:
		return true
	}
	return false
}

// IsDir reports whether m describes a directory.
func (m Mode) IsDir() bool {
	return m == ModeDir
}

// String formats the mode as it is serialized: octal with no leading
// zero.
func (m Mode) String() string {
	return fmt.Sprintf("%o", uint32(m))
}
