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
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gitcore.io/pkg/git/githash"
)

func TestReadIndex(t *testing.T) {
	zero := hashLiteral("0000000000000000000000000000000000000000")
	ones := hashLiteral("ffffffffffffffffffffffffffffffffffffffff")
	data := buildIndexBytes(
		indexEntry{id: zero, off: 12},
		indexEntry{id: ones, off: 100},
	)
	idx, err := ReadIndex(data)
	if err != nil {
		t.Fatal("ReadIndex:", err)
	}
	wantOffsets := map[githash.SHA1]int64{zero: 12, ones: 100}
	if diff := cmp.Diff(wantOffsets, idx.Offsets); diff != "" {
		t.Errorf("Offsets (-want +got):\n%s", diff)
	}
	// The object with the greatest offset has no length.
	wantLengths := map[githash.SHA1]int64{zero: 88}
	if diff := cmp.Diff(wantLengths, idx.Lengths); diff != "" {
		t.Errorf("Lengths (-want +got):\n%s", diff)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d; want 2", idx.Len())
	}
}

func TestReadIndexManyBuckets(t *testing.T) {
	// Hashes spread across fanout buckets, inserted out of offset order.
	entries := []indexEntry{
		{id: hashLiteral("0a00000000000000000000000000000000000000"), off: 200},
		{id: hashLiteral("0b00000000000000000000000000000000000000"), off: 12},
		{id: hashLiteral("7700000000000000000000000000000000000000"), off: 120},
		{id: hashLiteral("7701000000000000000000000000000000000000"), off: 60},
		{id: hashLiteral("f000000000000000000000000000000000000000"), off: 90},
	}
	idx, err := ReadIndex(buildIndexBytes(entries...))
	if err != nil {
		t.Fatal("ReadIndex:", err)
	}
	if idx.Len() != len(entries) {
		t.Fatalf("Len() = %d; want %d", idx.Len(), len(entries))
	}
	for _, e := range entries {
		if got := idx.Offsets[e.id]; got != e.off {
			t.Errorf("Offsets[%v] = %d; want %d", e.id, got, e.off)
		}
	}
	// Sorted by offset: 12, 60, 90, 120, 200.
	wantLengths := map[githash.SHA1]int64{
		entries[1].id: 48,  // 12 -> 60
		entries[3].id: 30,  // 60 -> 90
		entries[4].id: 30,  // 90 -> 120
		entries[2].id: 80,  // 120 -> 200
	}
	if diff := cmp.Diff(wantLengths, idx.Lengths); diff != "" {
		t.Errorf("Lengths (-want +got):\n%s", diff)
	}
}

func TestReadIndexLargeOffset(t *testing.T) {
	small := hashLiteral("1111111111111111111111111111111111111111")
	big := hashLiteral("2222222222222222222222222222222222222222")
	const bigOffset = int64(1) << 33
	idx, err := ReadIndex(buildIndexBytes(
		indexEntry{id: small, off: 12},
		indexEntry{id: big, off: bigOffset},
	))
	if err != nil {
		t.Fatal("ReadIndex:", err)
	}
	if got := idx.Offsets[big]; got != bigOffset {
		t.Errorf("Offsets[big] = %d; want %d", got, bigOffset)
	}
	if got := idx.Lengths[small]; got != bigOffset-12 {
		t.Errorf("Lengths[small] = %d; want %d", got, bigOffset-12)
	}
	if _, ok := idx.Lengths[big]; ok {
		t.Error("Lengths has an entry for the greatest offset")
	}
}

func TestReadIndexErrors(t *testing.T) {
	valid := buildIndexBytes(indexEntry{id: hashLiteral("1111111111111111111111111111111111111111"), off: 12})

	t.Run("BadMagic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[0] = 'x'
		if _, err := ReadIndex(data); err == nil {
			t.Error("ReadIndex accepted bad magic")
		}
	})

	t.Run("Version1", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.BigEndian.PutUint32(data[4:], 1)
		_, err := ReadIndex(data)
		if err == nil {
			t.Fatal("ReadIndex accepted version 1")
		}
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("error %v is not ErrUnsupported", err)
		}
	})

	t.Run("DecreasingFanout", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		// fanout[0x11] = 1; zero a later bucket.
		binary.BigEndian.PutUint32(data[8+4*0x80:], 0)
		if _, err := ReadIndex(data); err == nil {
			t.Error("ReadIndex accepted decreasing fanout")
		}
	})

	t.Run("UnsortedNames", func(t *testing.T) {
		data := buildIndexBytes(
			indexEntry{id: hashLiteral("1111111111111111111111111111111111111111"), off: 12},
			indexEntry{id: hashLiteral("1111111111111111111111111111111111111112"), off: 40},
		)
		// Swap the two 20-byte names in place.
		names := data[8+256*4:]
		for i := 0; i < githash.SHA1Size; i++ {
			names[i], names[githash.SHA1Size+i] = names[githash.SHA1Size+i], names[i]
		}
		if _, err := ReadIndex(data); err == nil {
			t.Error("ReadIndex accepted unsorted names")
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		if _, err := ReadIndex(valid[:len(valid)-10]); err == nil {
			t.Error("ReadIndex accepted truncated index")
		}
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		data := append(append([]byte(nil), valid...), 0x00)
		if _, err := ReadIndex(data); err == nil {
			t.Error("ReadIndex accepted trailing bytes")
		}
	})
}
