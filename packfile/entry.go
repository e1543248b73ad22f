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

package packfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/internal/scan"
	"gitcore.io/pkg/git/object"
)

// Error kinds shared by the packfile codecs. Malformed bytes are
// reported as *scan.ParseError.
var (
	// ErrNotFound reports an index lookup miss or an off-delta base that
	// has not been resolved.
	ErrNotFound = errors.New("packfile: object not found")
	// ErrUnsupported reports reserved entry kinds or a version outside
	// the supported set.
	ErrUnsupported = errors.New("packfile: unsupported")
	// ErrSizeMismatch reports a declared size that disagrees with the
	// actual bytes.
	ErrSizeMismatch = errors.New("packfile: size mismatch")
)

// An ObjectType holds the type of an object inside a packfile.
type ObjectType int8

// Object types.
const (
	Commit ObjectType = 1
	Tree   ObjectType = 2
	Blob   ObjectType = 3
	Tag    ObjectType = 4

	OffsetDelta ObjectType = 6
	RefDelta    ObjectType = 7
)

// NonDelta returns the corresponding loose object type, or the empty
// string if typ is a delta type.
func (typ ObjectType) NonDelta() object.Type {
	switch typ {
	case Commit:
		return object.TypeCommit
	case Tree:
		return object.TypeTree
	case Blob:
		return object.TypeBlob
	case Tag:
		return object.TypeTag
	default:
		return ""
	}
}

// String returns the Git object type constant name like "OBJ_COMMIT".
func (typ ObjectType) String() string {
	switch typ {
	case Commit:
		return "OBJ_COMMIT"
	case Tree:
		return "OBJ_TREE"
	case Blob:
		return "OBJ_BLOB"
	case Tag:
		return "OBJ_TAG"
	case OffsetDelta:
		return "OBJ_OFS_DELTA"
	case RefDelta:
		return "OBJ_REF_DELTA"
	default:
		return fmt.Sprintf("ObjectType(%d)", int8(typ))
	}
}

// An Entry is a single parsed packfile entry. Exactly one of the three
// representations is populated:
//
//   - a self-contained object: Value is non-nil;
//   - an offset delta: Type is OffsetDelta, BaseDistance and Delta are set;
//   - a ref delta: Type is RefDelta, BaseObject and Delta are set.
type Entry struct {
	// Offset is the location in the packfile this entry starts at.
	Offset int64

	Type ObjectType

	// Size is the inflated size of the entry's payload: the object
	// payload for non-delta entries, the hunk stream for deltas.
	Size int64

	// Value is the parsed object for non-delta entries.
	Value object.Value

	// BaseDistance is the positive distance from Offset back to the
	// base entry's start, for OffsetDelta entries.
	BaseDistance int64
	// BaseObject is the hash of the base object, for RefDelta entries.
	BaseObject githash.SHA1

	// Delta is the parsed hunk script for delta entries.
	Delta *Delta
}

// IsDelta reports whether the entry is delta-compressed.
func (e *Entry) IsDelta() bool {
	return e.Delta != nil
}

// A Delta is a parsed copy/insert script against a base object.
type Delta struct {
	// SourceLen is the expected payload size of the base object.
	SourceLen int64
	// ResultLen is the payload size of the reconstructed object.
	ResultLen int64
	// Hunks are applied in order to produce the result.
	Hunks []Hunk
}

// A Hunk is one step of a delta script: either an Insert of literal
// bytes or a Copy from the base object's payload.
type Hunk interface {
	isHunk()
}

// Insert appends literal bytes to the result.
type Insert []byte

func (Insert) isHunk() {}

// Copy appends Length bytes starting at Offset in the base object's
// payload.
type Copy struct {
	Offset uint32
	Length uint32
}

func (Copy) isHunk() {}

// parseEntry parses a single packfile entry from cur. offset is the
// entry's position from the start of the pack, used to fill
// Entry.Offset. version is the pack file version (2 or 3).
func parseEntry(cur *scan.Cursor, version uint32, offset int64) (*Entry, error) {
	typ, size, err := readLengthType(cur)
	if err != nil {
		return nil, err
	}
	e := &Entry{Offset: offset, Type: typ, Size: size}
	switch typ {
	case OffsetDelta:
		e.BaseDistance, err = readBaseDistance(cur)
		if err != nil {
			return nil, err
		}
		if e.BaseDistance > offset {
			return nil, cur.Errorf("off-delta distance %d exceeds entry offset %d", e.BaseDistance, offset)
		}
		e.Delta, err = parseDeltaBody(cur, version, size)
		if err != nil {
			return nil, err
		}
	case RefDelta:
		raw, err := cur.Take(githash.SHA1Size)
		if err != nil {
			return nil, err
		}
		copy(e.BaseObject[:], raw)
		e.Delta, err = parseDeltaBody(cur, version, size)
		if err != nil {
			return nil, err
		}
	default:
		payload, err := inflate(cur, size)
		if err != nil {
			return nil, err
		}
		e.Value, err = object.DecodePayload(typ.NonDelta(), payload)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func parseDeltaBody(cur *scan.Cursor, version uint32, size int64) (*Delta, error) {
	body, err := inflate(cur, size)
	if err != nil {
		return nil, err
	}
	return parseDeltaHunks(body, version)
}

// readLengthType parses the entry header byte(s): the low three bits of
// the upper nibble are the type, the rest is a size split across the
// first byte's low nibble and a little-endian base-128 continuation.
func readLengthType(cur *scan.Cursor) (ObjectType, int64, error) {
	first, err := cur.Byte()
	if err != nil {
		return 0, 0, err
	}
	typ := ObjectType(first >> 4 & 7)
	if typ == 0 || typ == 5 {
		return 0, 0, fmt.Errorf("packfile: entry type %d is reserved: %w", int(typ), ErrUnsupported)
	}
	size := int64(first & 0xf)
	if first&0x80 != 0 {
		ss, err := readUvarint(cur)
		if err != nil {
			return typ, 0, err
		}
		if ss >= 1<<(63-4) {
			return typ, 0, cur.Errorf("object size too large")
		}
		size |= int64(ss) << 4
	}
	return typ, size, nil
}

// readUvarint reads a little-endian base-128 integer: the low 7 bits of
// each byte contribute at increasing shifts, the high bit continues.
func readUvarint(cur *scan.Cursor) (uint64, error) {
	var x uint64
	for shift := uint(0); ; shift += 7 {
		b, err := cur.Byte()
		if err != nil {
			return 0, err
		}
		if shift > 63 || (shift == 63 && b&0x7f > 1) {
			return 0, cur.Errorf("varint overflows 64 bits")
		}
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
	}
}

// readBaseDistance reads a big-endian modified base-128 integer: bytes
// left to right, and after the first byte the accumulator is incremented
// before shifting in the next 7 bits. The +1 step makes each integer's
// representation unique.
func readBaseDistance(cur *scan.Cursor) (int64, error) {
	b, err := cur.Byte()
	if err != nil {
		return 0, err
	}
	d := int64(b & 0x7f)
	for b&0x80 != 0 {
		b, err = cur.Byte()
		if err != nil {
			return 0, err
		}
		if d+1 > (1<<56)-1 {
			return 0, cur.Errorf("base offset too large")
		}
		d = (d+1)<<7 | int64(b&0x7f)
	}
	return d, nil
}

// parseDeltaHunks parses an inflated delta payload: two varint lengths
// followed by the copy/insert stream.
func parseDeltaHunks(data []byte, version uint32) (*Delta, error) {
	cur := scan.New("delta", data)
	srcLen, err := readUvarint(cur)
	if err != nil {
		return nil, err
	}
	resLen, err := readUvarint(cur)
	if err != nil {
		return nil, err
	}
	d := &Delta{SourceLen: int64(srcLen), ResultLen: int64(resLen)}
	for cur.Len() > 0 {
		op, err := cur.Byte()
		if err != nil {
			return nil, err
		}
		switch {
		case op == 0:
			return nil, cur.Errorf("hunk opcode 0 is reserved")
		case op&0x80 == 0:
			data, err := cur.Take(int(op))
			if err != nil {
				return nil, err
			}
			d.Hunks = append(d.Hunks, Insert(data))
		default:
			if version == 2 && op&0x40 != 0 {
				return nil, cur.Errorf("copy length bit 6 set in version 2 pack")
			}
			var offset, length uint32
			for i := uint(0); i < 4; i++ {
				if op&(1<<i) == 0 {
					continue
				}
				b, err := cur.Byte()
				if err != nil {
					return nil, err
				}
				offset |= uint32(b) << (8 * i)
			}
			for i := uint(0); i < 3; i++ {
				if op&(1<<(4+i)) == 0 {
					continue
				}
				b, err := cur.Byte()
				if err != nil {
					return nil, err
				}
				length |= uint32(b) << (8 * i)
			}
			if length == 0 {
				length = 0x10000
			}
			if int64(offset)+int64(length) > d.SourceLen {
				return nil, cur.Errorf("copy [%d, %d) outside source of %d bytes",
					offset, int64(offset)+int64(length), d.SourceLen)
			}
			d.Hunks = append(d.Hunks, Copy{Offset: offset, Length: length})
		}
	}
	return d, nil
}

// inflate decompresses exactly size bytes of zlib-wrapped data starting
// at cur's position and advances cur past the compressed stream.
func inflate(cur *scan.Cursor, size int64) ([]byte, error) {
	br := bytes.NewReader(cur.Rest())
	total := br.Len()
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("packfile: inflate: %w", err)
	}
	defer zr.Close()
	buf := make([]byte, size)
	if _, err := io.ReadFull(zr, buf); err != nil {
		return nil, fmt.Errorf("packfile: inflate: declared %d bytes: %w", size, err)
	}
	// The stream must end exactly at the declared size. Reading the
	// final byte also consumes the zlib trailer from br.
	switch _, err := io.CopyN(io.Discard, zr, 1); err {
	case io.EOF:
	case nil:
		return nil, fmt.Errorf("packfile: inflate: stream longer than declared %d bytes: %w", size, ErrSizeMismatch)
	default:
		return nil, fmt.Errorf("packfile: inflate: %w", err)
	}
	if err := cur.Skip(total - br.Len()); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFileHeader parses the 12-byte pack header and returns the version
// and object count.
func readFileHeader(cur *scan.Cursor) (version, count uint32, _ error) {
	magic, err := cur.Take(4)
	if err != nil {
		return 0, 0, err
	}
	if !bytes.Equal(magic, []byte("PACK")) {
		return 0, 0, cur.Errorf("incorrect signature %q", magic)
	}
	version, err = cur.BEUint32()
	if err != nil {
		return 0, 0, err
	}
	if version != 2 && version != 3 {
		return 0, 0, fmt.Errorf("packfile: version %d (only 2 and 3 supported): %w", version, ErrUnsupported)
	}
	count, err = cur.BEUint32()
	if err != nil {
		return 0, 0, err
	}
	return version, count, nil
}
