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

	"gitcore.io/pkg/git/githash"
	"gitcore.io/pkg/git/object"
)

// Memory is a content-addressed object store backed by a map. Its
// methods satisfy ReadInflatedFunc and WriteValueFunc, so it can serve
// directly as the source and sink for Unpack. The zero value is not
// usable; call NewMemory. Memory is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	objects map[githash.SHA1][]byte
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[githash.SHA1][]byte)}
}

// ReadInflated returns the inflated envelope bytes of the object stored
// under id. The error wraps ErrNotFound if the store has no such object.
func (m *Memory) ReadInflated(_ context.Context, id githash.SHA1) ([]byte, error) {
	m.mu.Lock()
	data, ok := m.objects[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("read object %v: %w", id, ErrNotFound)
	}
	return data, nil
}

// WriteValue stores v under its content address and returns the hash.
// Writing the same object twice is a no-op.
func (m *Memory) WriteValue(_ context.Context, v object.Value) (githash.SHA1, error) {
	inflated, err := object.EncodeInflated(v)
	if err != nil {
		return githash.SHA1{}, err
	}
	id := githash.Sum(inflated)
	m.mu.Lock()
	if _, ok := m.objects[id]; !ok {
		m.objects[id] = inflated
	}
	m.mu.Unlock()
	return id, nil
}

// Value parses and returns the object stored under id.
func (m *Memory) Value(ctx context.Context, id githash.SHA1) (object.Value, error) {
	data, err := m.ReadInflated(ctx, id)
	if err != nil {
		return nil, err
	}
	return object.DecodeInflated(data)
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
