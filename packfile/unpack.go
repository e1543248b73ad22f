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
	"context"
	"fmt"

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/internal/scan"
	"gitcore.io/pkg/git/object"
)

// WriteValueFunc stores a reconstructed object and returns its content
// address.
type WriteValueFunc func(ctx context.Context, v object.Value) (githash.SHA1, error)

// Unpack walks every entry of a packfile in order, resolving deltas and
// writing each reconstructed object through write. Off-delta bases are
// located via an offset map built as entries resolve, so they can only
// reference earlier entries; ref-delta bases are fetched through read,
// which is expected to serve everything write has stored plus any
// out-of-pack objects.
//
// Entries are written strictly in pack order. It returns the hashes of
// the written objects, in order. A malformed entry aborts the walk;
// objects written before the failure are not rolled back.
func Unpack(ctx context.Context, data []byte, read ReadInflatedFunc, write WriteValueFunc) ([]githash.SHA1, error) {
	cur := scan.New("packfile", data)
	version, count, err := readFileHeader(cur)
	if err != nil {
		return nil, err
	}
	offsets := make(map[int64]githash.SHA1, count)
	ids := make([]githash.SHA1, 0, count)
	for i := uint32(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		off := int64(cur.Offset())
		e, err := parseEntry(cur, version, off)
		if err != nil {
			return nil, fmt.Errorf("packfile: unpack entry %d: %w", i, err)
		}
		var id githash.SHA1
		switch {
		case !e.IsDelta():
			id, err = write(ctx, e.Value)
			if err != nil {
				return nil, fmt.Errorf("packfile: unpack entry %d: %w", i, err)
			}
		case e.Type == RefDelta:
			base, err := read(ctx, e.BaseObject)
			if err != nil {
				return nil, fmt.Errorf("packfile: unpack entry %d: base %v: %w", i, e.BaseObject, err)
			}
			id, err = applyAndWrite(ctx, base, e.Delta, write)
			if err != nil {
				return nil, fmt.Errorf("packfile: unpack entry %d: %w", i, err)
			}
		default: // OffsetDelta
			target := off - e.BaseDistance
			baseID, ok := offsets[target]
			if !ok {
				return nil, fmt.Errorf("packfile: unpack entry %d: no earlier entry at offset %d: %w", i, target, ErrNotFound)
			}
			base, err := read(ctx, baseID)
			if err != nil {
				return nil, fmt.Errorf("packfile: unpack entry %d: base %v: %w", i, baseID, err)
			}
			id, err = applyAndWrite(ctx, base, e.Delta, write)
			if err != nil {
				return nil, fmt.Errorf("packfile: unpack entry %d: %w", i, err)
			}
		}
		offsets[off] = id
		ids = append(ids, id)
	}
	// Trailing pack checksum: present, not verified.
	if err := cur.Skip(githash.SHA1Size); err != nil {
		return nil, err
	}
	if cur.Len() != 0 {
		return nil, cur.Errorf("%d trailing bytes after checksum", cur.Len())
	}
	return ids, nil
}

func applyAndWrite(ctx context.Context, base []byte, d *Delta, write WriteValueFunc) (githash.SHA1, error) {
	v, err := ApplyDelta(base, d)
	if err != nil {
		return githash.SHA1{}, err
	}
	return write(ctx, v)
}
