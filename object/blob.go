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

import "gitcore.io/pkg/git/githash"

// A Blob is a Git blob object: an opaque byte string.
type Blob []byte

// Type returns TypeBlob.
func (b Blob) Type() Type {
	return TypeBlob
}

// MarshalBinary returns the blob's bytes unchanged.
func (b Blob) MarshalBinary() ([]byte, error) {
	return b, nil
}

// SHA1 computes the SHA-1 hash of the blob object.
func (b Blob) SHA1() githash.SHA1 {
	buf := AppendPrefix(make([]byte, 0, len(b)+16), TypeBlob, int64(len(b)))
	return githash.Sum(append(buf, b...))
}
