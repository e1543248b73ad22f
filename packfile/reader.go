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
	"sync"

	"golang.org/x/sync/singleflight"

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/internal/scan"
	"gitcore.io/pkg/git/object"
)

// A Pack is a random-access view over a packfile given its index.
// Parsed entries are memoized by hash. A Pack is safe for concurrent
// use; the underlying byte views are never modified.
type Pack struct {
	data    []byte
	region  *scan.Cursor // never consumed; sliced per entry
	version uint32
	count   uint32
	idx     *Index

	byOffset map[int64]githash.SHA1

	mu      sync.Mutex
	entries map[githash.SHA1]*Entry
	flight  singleflight.Group
}

// New returns a Pack reading entries of data, located via idx. It
// verifies the pack header.
func New(idx *Index, data []byte) (*Pack, error) {
	cur := scan.New("packfile", data)
	version, count, err := readFileHeader(cur)
	if err != nil {
		return nil, err
	}
	p := &Pack{
		data:     data,
		region:   scan.New("packfile entry", data),
		version:  version,
		count:    count,
		idx:      idx,
		byOffset: make(map[int64]githash.SHA1, len(idx.Offsets)),
		entries:  make(map[githash.SHA1]*Entry),
	}
	for id, off := range idx.Offsets {
		p.byOffset[off] = id
	}
	return p, nil
}

// Version returns the pack file format version (2 or 3).
func (p *Pack) Version() uint32 {
	return p.version
}

// ObjectCount returns the object count from the pack header.
func (p *Pack) ObjectCount() uint32 {
	return p.count
}

// Entry parses and returns the packed entry stored under id. Delta
// entries are returned unresolved; use Value to reconstruct the full
// object. Successful parses are memoized.
func (p *Pack) Entry(id githash.SHA1) (*Entry, error) {
	p.mu.Lock()
	e := p.entries[id]
	p.mu.Unlock()
	if e != nil {
		return e, nil
	}
	v, err, _ := p.flight.Do(id.String(), func() (any, error) {
		e, err := p.parseEntryAt(id)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.entries[id] = e
		p.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (p *Pack) parseEntryAt(id githash.SHA1) (*Entry, error) {
	off, ok := p.idx.Offsets[id]
	if !ok {
		return nil, fmt.Errorf("packfile: entry %v: %w", id, ErrNotFound)
	}
	end := int64(len(p.data)) - githash.SHA1Size // default: runs to the trailer
	if length, ok := p.idx.Lengths[id]; ok {
		end = off + length
	}
	cur, err := p.region.Slice(int(off), int(end-off))
	if err != nil {
		return nil, fmt.Errorf("packfile: entry %v: %w", id, err)
	}
	e, err := parseEntry(cur, p.version, off)
	if err != nil {
		return nil, fmt.Errorf("packfile: entry %v: %w", id, err)
	}
	return e, nil
}

// maxDeltaChain bounds delta chain resolution. A well-formed pack cannot
// contain a cycle (off-deltas reference strictly earlier entries), so a
// chain longer than this indicates a corrupt pack.
const maxDeltaChain = 1000

// Value reconstructs the full object stored under id, resolving delta
// chains within the pack. Ref-delta bases outside the pack are fetched
// through read, which may be nil if all bases are in-pack.
func (p *Pack) Value(ctx context.Context, id githash.SHA1, read ReadInflatedFunc) (object.Value, error) {
	e, err := p.Entry(id)
	if err != nil {
		return nil, err
	}
	var stack []*Delta
	var base []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(stack) > maxDeltaChain {
			return nil, &scan.ParseError{
				Where:  "packfile",
				Detail: fmt.Sprintf("delta chain longer than %d for %v", maxDeltaChain, id),
			}
		}
		if !e.IsDelta() {
			base, err = object.EncodeInflated(e.Value)
			if err != nil {
				return nil, err
			}
			break
		}
		stack = append(stack, e.Delta)
		if e.Type == OffsetDelta {
			target := e.Offset - e.BaseDistance
			baseID, ok := p.byOffset[target]
			if !ok {
				return nil, fmt.Errorf("packfile: resolve %v: no entry at offset %d: %w", id, target, ErrNotFound)
			}
			e, err = p.Entry(baseID)
			if err != nil {
				return nil, err
			}
			continue
		}
		// Ref delta: prefer the pack itself, fall back to the caller.
		if _, ok := p.idx.Offsets[e.BaseObject]; ok {
			e, err = p.Entry(e.BaseObject)
			if err != nil {
				return nil, err
			}
			continue
		}
		if read == nil {
			return nil, fmt.Errorf("packfile: resolve %v: base %v: %w", id, e.BaseObject, ErrNotFound)
		}
		base, err = read(ctx, e.BaseObject)
		if err != nil {
			return nil, fmt.Errorf("packfile: resolve %v: base %v: %w", id, e.BaseObject, err)
		}
		break
	}
	for i := len(stack) - 1; i >= 0; i-- {
		base, err = applyDelta(base, stack[i])
		if err != nil {
			return nil, fmt.Errorf("packfile: resolve %v: %w", id, err)
		}
	}
	return object.DecodeInflated(base)
}
