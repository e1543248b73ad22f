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
	"encoding/binary"
	"sort"
	"testing"

	"github.com/klauspost/compress/zlib"

	"gitcore.io/pkg/git/githash"
)

// Helpers for synthesizing pack and index bytes in tests.

func hashLiteral(s string) githash.SHA1 {
	var h githash.SHA1
	if err := h.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return h
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// appendEntryHeader encodes an entry header: type in bits 4-6 of the
// first byte, size split across the low nibble and a little-endian
// base-128 continuation.
func appendEntryHeader(dst []byte, typ ObjectType, size int64) []byte {
	first := byte(typ)<<4 | byte(size&0xf)
	rest := uint64(size >> 4)
	if rest == 0 {
		return append(dst, first)
	}
	dst = append(dst, first|0x80)
	return binary.AppendUvarint(dst, rest)
}

// appendBaseDistance encodes a big-endian modified base-128 integer, the
// inverse of readBaseDistance.
func appendBaseDistance(dst []byte, d int64) []byte {
	var buf [10]byte
	i := len(buf) - 1
	buf[i] = byte(d & 0x7f)
	for d >>= 7; d > 0; d >>= 7 {
		d--
		i--
		buf[i] = 0x80 | byte(d&0x7f)
	}
	return append(dst, buf[i:]...)
}

// deltaBody builds an inflated delta payload: the two varint lengths
// followed by raw opcode bytes.
func deltaBody(srcLen, resLen uint64, ops ...byte) []byte {
	body := binary.AppendUvarint(nil, srcLen)
	body = binary.AppendUvarint(body, resLen)
	return append(body, ops...)
}

func rawEntry(t *testing.T, typ ObjectType, payload []byte) []byte {
	t.Helper()
	e := appendEntryHeader(nil, typ, int64(len(payload)))
	return append(e, deflate(t, payload)...)
}

func offDeltaEntry(t *testing.T, distance int64, body []byte) []byte {
	t.Helper()
	e := appendEntryHeader(nil, OffsetDelta, int64(len(body)))
	e = appendBaseDistance(e, distance)
	return append(e, deflate(t, body)...)
}

func refDeltaEntry(t *testing.T, base githash.SHA1, body []byte) []byte {
	t.Helper()
	e := appendEntryHeader(nil, RefDelta, int64(len(body)))
	e = append(e, base[:]...)
	return append(e, deflate(t, body)...)
}

// buildPack assembles a pack from pre-encoded entries and returns the
// pack bytes along with each entry's offset. The trailing checksum is
// zeroed: the readers do not verify it.
func buildPack(version uint32, entries ...[]byte) (data []byte, offsets []int64) {
	data = []byte{'P', 'A', 'C', 'K'}
	data = binary.BigEndian.AppendUint32(data, version)
	data = binary.BigEndian.AppendUint32(data, uint32(len(entries)))
	for _, e := range entries {
		offsets = append(offsets, int64(len(data)))
		data = append(data, e...)
	}
	data = append(data, make([]byte, githash.SHA1Size)...)
	return data, offsets
}

type indexEntry struct {
	id  githash.SHA1
	off int64
}

// buildIndexBytes assembles a version 2 index file. CRCs and the two
// trailing checksums are zeroed: the reader parses but does not verify
// them.
func buildIndexBytes(entries ...indexEntry) []byte {
	sorted := append([]indexEntry(nil), entries...)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].id.Compare(sorted[b].id) < 0
	})

	data := []byte{0o377, 't', 'O', 'c'}
	data = binary.BigEndian.AppendUint32(data, 2)
	var fanout [256]uint32
	for _, e := range sorted {
		for b := int(e.id[0]); b < 256; b++ {
			fanout[b]++
		}
	}
	for _, n := range fanout {
		data = binary.BigEndian.AppendUint32(data, n)
	}
	for _, e := range sorted {
		data = append(data, e.id[:]...)
	}
	data = append(data, make([]byte, 4*len(sorted))...) // CRCs
	var large []int64
	for _, e := range sorted {
		if e.off >= 1<<31 {
			data = binary.BigEndian.AppendUint32(data, 1<<31|uint32(len(large)))
			large = append(large, e.off)
			continue
		}
		data = binary.BigEndian.AppendUint32(data, uint32(e.off))
	}
	for _, off := range large {
		data = binary.BigEndian.AppendUint64(data, uint64(off))
	}
	data = append(data, make([]byte, 2*githash.SHA1Size)...) // pack + index checksums
	return data
}
