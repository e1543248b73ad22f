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

// Package githash provides types for Git object hashes.
//
// In addition to the generic SHA1 type, the package defines TreeID and
// CommitID, which carry the same 20 bytes but are distinct types so that
// a tree hash cannot be passed where a commit hash is expected.
package githash

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// SHA1Size is the number of bytes in a SHA-1 hash.
const SHA1Size = 20

// A SHA1 is the SHA-1 hash of a Git object.
type SHA1 [SHA1Size]byte

// Sum computes the SHA-1 hash of data.
func Sum(data []byte) SHA1 {
	return SHA1(sha1.Sum(data))
}

// ParseSHA1 parses a hex-encoded SHA-1 hash. It is the same as calling
// UnmarshalText on a new SHA1.
func ParseSHA1(s string) (SHA1, error) {
	var h SHA1
	err := h.UnmarshalText([]byte(s))
	return h, err
}

// String returns the hex-encoded hash.
func (h SHA1) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 4 hex-encoded bytes of the hash.
func (h SHA1) Short() string {
	return hex.EncodeToString(h[:4])
}

// Compare returns -1, 0, or +1 depending on whether h orders before,
// equal to, or after h2 lexicographically.
func (h SHA1) Compare(h2 SHA1) int {
	return bytes.Compare(h[:], h2[:])
}

// MarshalText returns the hex-encoded hash.
func (h SHA1) MarshalText() ([]byte, error) {
	buf := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(buf, h[:])
	return buf, nil
}

// UnmarshalText decodes a hex-encoded hash into h.
func (h *SHA1) UnmarshalText(s []byte) error {
	if len(s) != hex.EncodedLen(SHA1Size) {
		return fmt.Errorf("parse git hash %q: wrong size", s)
	}
	if _, err := hex.Decode(h[:], s); err != nil {
		return fmt.Errorf("parse git hash %q: %w", s, err)
	}
	return nil
}

// MarshalBinary returns the hash as a byte slice.
func (h SHA1) MarshalBinary() ([]byte, error) {
	return h[:], nil
}

// UnmarshalBinary copies the bytes from b into h. It returns an error if
// len(b) != len(*h).
func (h *SHA1) UnmarshalBinary(b []byte) error {
	if len(b) != len(*h) {
		return fmt.Errorf("parse git binary hash %x: wrong size", b)
	}
	copy(h[:], b)
	return nil
}

// A TreeID is the hash of a Git tree object.
type TreeID SHA1

// ParseTreeID parses a hex-encoded tree hash.
func ParseTreeID(s string) (TreeID, error) {
	h, err := ParseSHA1(s)
	return TreeID(h), err
}

// SHA1 returns the hash as a generic SHA1.
func (id TreeID) SHA1() SHA1 {
	return SHA1(id)
}

// String returns the hex-encoded hash.
func (id TreeID) String() string {
	return SHA1(id).String()
}

// MarshalText returns the hex-encoded hash.
func (id TreeID) MarshalText() ([]byte, error) {
	return SHA1(id).MarshalText()
}

// UnmarshalText decodes a hex-encoded hash into id.
func (id *TreeID) UnmarshalText(s []byte) error {
	return (*SHA1)(id).UnmarshalText(s)
}

// A CommitID is the hash of a Git commit object.
type CommitID SHA1

// ParseCommitID parses a hex-encoded commit hash.
func ParseCommitID(s string) (CommitID, error) {
	h, err := ParseSHA1(s)
	return CommitID(h), err
}

// SHA1 returns the hash as a generic SHA1.
func (id CommitID) SHA1() SHA1 {
	return SHA1(id)
}

// String returns the hex-encoded hash.
func (id CommitID) String() string {
	return SHA1(id).String()
}

// MarshalText returns the hex-encoded hash.
func (id CommitID) MarshalText() ([]byte, error) {
	return SHA1(id).MarshalText()
}

// UnmarshalText decodes a hex-encoded hash into id.
func (id *CommitID) UnmarshalText(s []byte) error {
	return (*SHA1)(id).UnmarshalText(s)
}
