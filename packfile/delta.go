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
	"gitcore.io/pkg/git/object"
)

// ReadInflatedFunc fetches the inflated envelope bytes
// ("<type> <size>\x00<payload>") of the object stored under id. It is
// used to resolve ref-delta bases that live outside the pack at hand.
type ReadInflatedFunc func(ctx context.Context, id githash.SHA1) ([]byte, error)

// ApplyDelta applies a delta script to an inflated base envelope and
// parses the result. The base keeps its type; the delta's SourceLen must
// match the base payload size and the reconstructed payload must have
// exactly ResultLen bytes, otherwise the error wraps ErrSizeMismatch.
func ApplyDelta(base []byte, d *Delta) (object.Value, error) {
	out, err := applyDelta(base, d)
	if err != nil {
		return nil, err
	}
	return object.DecodeInflated(out)
}

// applyDelta produces the reconstructed object's inflated envelope.
func applyDelta(base []byte, d *Delta) ([]byte, error) {
	p, body, err := object.SplitPrefix(base)
	if err != nil {
		return nil, fmt.Errorf("apply delta: %w", err)
	}
	if int64(len(body)) != p.Size {
		return nil, fmt.Errorf("apply delta: base declares %d bytes, has %d: %w",
			p.Size, len(body), ErrSizeMismatch)
	}
	if p.Size != d.SourceLen {
		return nil, fmt.Errorf("apply delta: base is %d bytes, delta expects %d: %w",
			p.Size, d.SourceLen, ErrSizeMismatch)
	}
	out := object.AppendPrefix(make([]byte, 0, d.ResultLen+32), p.Type, d.ResultLen)
	start := len(out)
	for _, h := range d.Hunks {
		switch h := h.(type) {
		case Insert:
			out = append(out, h...)
		case Copy:
			end := int64(h.Offset) + int64(h.Length)
			if end > int64(len(body)) {
				return nil, fmt.Errorf("apply delta: copy [%d, %d) outside base of %d bytes: %w",
					h.Offset, end, len(body), ErrSizeMismatch)
			}
			out = append(out, body[h.Offset:end]...)
		default:
			return nil, fmt.Errorf("apply delta: unknown hunk %T", h)
		}
	}
	if got := int64(len(out) - start); got != d.ResultLen {
		return nil, fmt.Errorf("apply delta: produced %d bytes, expected %d: %w",
			got, d.ResultLen, ErrSizeMismatch)
	}
	return out, nil
}
