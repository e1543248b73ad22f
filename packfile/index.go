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
	"fmt"
	"sort"

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/internal/scan"
)

// Index is an in-memory mapping of object IDs to locations within a
// packfile, parsed from a version 2 index file as produced by
// git-index-pack(1).
type Index struct {
	// Offsets holds, for every object in the pack, the offset from the
	// start of the packfile at which its entry header starts.
	Offsets map[githash.SHA1]int64

	// Lengths holds the byte length of each object's entry in the pack,
	// derived by sorting entries by offset and subtracting consecutive
	// offsets. The object with the greatest offset has no Lengths entry:
	// its entry runs to the pack trailer.
	Lengths map[githash.SHA1]int64

	// PackfileSHA1 is a copy of the packfile checksum stored in the
	// index.
	PackfileSHA1 githash.SHA1
}

var indexV2Magic = [...]byte{0o377, 't', 'O', 'c'}

const fanOutEntryCount = 256

// ReadIndex parses a version 2 packfile index.
//
// The fanout table must be monotonic and consistent with the listed
// hashes, and the hashes must be sorted; the trailing checksums are
// length-checked but not recomputed.
func ReadIndex(data []byte) (*Index, error) {
	cur := scan.New("packfile index", data)
	magic, err := cur.Take(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, indexV2Magic[:]) {
		return nil, cur.Errorf("incorrect signature %q", magic)
	}
	version, err := cur.BEUint32()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("packfile index: version %d (only 2 supported): %w", version, ErrUnsupported)
	}

	var fanout [fanOutEntryCount]uint32
	for i := range fanout {
		fanout[i], err = cur.BEUint32()
		if err != nil {
			return nil, err
		}
		if i > 0 && fanout[i] < fanout[i-1] {
			return nil, cur.Errorf("fanout[%d] = %d decreases from %d", i, fanout[i], fanout[i-1])
		}
	}
	nobjs := int(fanout[fanOutEntryCount-1])

	names := make([]githash.SHA1, nobjs)
	for i := range names {
		raw, err := cur.Take(githash.SHA1Size)
		if err != nil {
			return nil, err
		}
		copy(names[i][:], raw)
		if i > 0 && names[i].Compare(names[i-1]) <= 0 {
			return nil, cur.Errorf("object IDs not sorted at %d", i)
		}
	}
	// Each hash must land in its fanout bucket.
	for i, id := range names {
		bucket := fanout[id[0]]
		var low uint32
		if id[0] > 0 {
			low = fanout[id[0]-1]
		}
		if uint32(i) < low || uint32(i) >= bucket {
			return nil, cur.Errorf("object %v outside fanout bucket %d", id, id[0])
		}
	}

	// CRC32 checksums of the packed entries. Read and discarded: the
	// index format requires them but this reader does not verify pack
	// contents.
	if err := cur.Skip(4 * nobjs); err != nil {
		return nil, err
	}

	offsets := make([]int64, nobjs)
	var large []int // positions needing a large-offset entry, in order
	for i := range offsets {
		off, err := cur.BEUint32()
		if err != nil {
			return nil, err
		}
		if off&(1<<31) != 0 {
			large = append(large, i)
			continue
		}
		offsets[i] = int64(off)
	}
	for _, i := range large {
		off, err := cur.BEUint64()
		if err != nil {
			return nil, err
		}
		if off&(1<<63) != 0 {
			return nil, cur.Errorf("large offset overflows int64")
		}
		offsets[i] = int64(off)
	}

	idx := &Index{
		Offsets: make(map[githash.SHA1]int64, nobjs),
		Lengths: make(map[githash.SHA1]int64, nobjs),
	}
	raw, err := cur.Take(githash.SHA1Size)
	if err != nil {
		return nil, err
	}
	copy(idx.PackfileSHA1[:], raw)
	// Index checksum: present, not recomputed.
	if err := cur.Skip(githash.SHA1Size); err != nil {
		return nil, err
	}
	if cur.Len() != 0 {
		return nil, cur.Errorf("%d trailing bytes", cur.Len())
	}

	for i, id := range names {
		idx.Offsets[id] = offsets[i]
	}
	byOffset := make([]int, nobjs)
	for i := range byOffset {
		byOffset[i] = i
	}
	sort.Slice(byOffset, func(a, b int) bool {
		return offsets[byOffset[a]] < offsets[byOffset[b]]
	})
	for k := 0; k+1 < nobjs; k++ {
		this, next := byOffset[k], byOffset[k+1]
		idx.Lengths[names[this]] = offsets[next] - offsets[this]
	}
	return idx, nil
}

// Len returns the number of objects in the index.
func (idx *Index) Len() int {
	return len(idx.Offsets)
}
