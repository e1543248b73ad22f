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

/*
Package object provides types for Git objects and functions for parsing
and serializing those objects, both in their inflated typed-envelope form
("<type> <size>\x00<payload>") and in the zlib-wrapped loose form. For an
overview, see https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
*/
package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zlib"

	"gitcore.io/pkg/git/githash"
)

// Type is an enumeration of Git object types.
type Type string

// Object types.
const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
	TypeTag    Type = "tag"
)

// IsValid reports whether typ is one of the known constants.
func (typ Type) IsValid() bool {
	return typ == TypeBlob || typ == TypeTree || typ == TypeCommit || typ == TypeTag
}

// A Value is a parsed Git object of one of the four kinds: Blob, Tree,
// *Commit, or *Tag. The set of implementations is closed.
type Value interface {
	// Type returns the object's type constant.
	Type() Type
	// MarshalBinary serializes the object's payload (the bytes that
	// follow the envelope header).
	MarshalBinary() ([]byte, error)
}

// ErrSizeMismatch is returned when an envelope's declared size disagrees
// with the actual payload length.
var ErrSizeMismatch = errors.New("git object: size mismatch")

// Prefix is a parsed Git object prefix like "blob 42\x00".
type Prefix struct {
	Type Type
	Size int64
}

// MarshalBinary returns the result of AppendPrefix.
func (p Prefix) MarshalBinary() ([]byte, error) {
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("marshal git object prefix: unknown type %q", p.Type)
	}
	if p.Size < 0 {
		return nil, fmt.Errorf("marshal git object prefix: negative size")
	}
	return AppendPrefix(nil, p.Type, p.Size), nil
}

// UnmarshalBinary parses an object prefix. data must end with the NUL
// that terminates the prefix.
func (p *Prefix) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || data[len(data)-1] != 0 {
		return fmt.Errorf("unmarshal git object prefix: does not end with NUL")
	}
	typeEnd := bytes.IndexByte(data, ' ')
	if typeEnd == -1 {
		return fmt.Errorf("unmarshal git object prefix: missing space")
	}
	typ := Type(data[:typeEnd])
	if !typ.IsValid() {
		return fmt.Errorf("unmarshal git object prefix: unknown type %q", typ)
	}
	size, err := strconv.ParseInt(string(data[typeEnd+1:len(data)-1]), 10, 64)
	if err != nil {
		return fmt.Errorf("unmarshal git object prefix: size: %v", err)
	}
	if size < 0 {
		return fmt.Errorf("unmarshal git object prefix: negative size")
	}
	p.Type = typ
	p.Size = size
	return nil
}

// String returns the prefix without the trailing NUL byte.
func (p Prefix) String() string {
	buf := AppendPrefix(nil, p.Type, p.Size)
	return string(buf[:len(buf)-1])
}

// AppendPrefix appends a Git object prefix (e.g. "blob 42\x00")
// to a byte slice.
func AppendPrefix(dst []byte, typ Type, n int64) []byte {
	dst = append(dst, typ...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, n, 10)
	dst = append(dst, 0)
	return dst
}

// SplitPrefix splits an inflated envelope into its prefix and payload.
// The payload is a view into data, not a copy.
func SplitPrefix(data []byte) (Prefix, []byte, error) {
	nul := bytes.IndexByte(data, 0)
	if nul == -1 {
		return Prefix{}, nil, fmt.Errorf("split git object: missing NUL after prefix")
	}
	var p Prefix
	if err := p.UnmarshalBinary(data[:nul+1]); err != nil {
		return Prefix{}, nil, fmt.Errorf("split git object: %w", err)
	}
	return p, data[nul+1:], nil
}

// DecodePayload parses an object payload of a known type.
func DecodePayload(typ Type, payload []byte) (Value, error) {
	switch typ {
	case TypeBlob:
		return Blob(append([]byte{}, payload...)), nil
	case TypeTree:
		return ParseTree(payload)
	case TypeCommit:
		return ParseCommit(payload)
	case TypeTag:
		return ParseTag(payload)
	default:
		return nil, fmt.Errorf("parse git object: unknown type %q", typ)
	}
}

// DecodeInflated parses an object in its inflated envelope form. The
// declared size must equal the payload length; if it does not, the error
// wraps ErrSizeMismatch.
func DecodeInflated(data []byte) (Value, error) {
	p, payload, err := SplitPrefix(data)
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) != p.Size {
		return nil, fmt.Errorf("parse git %s: declared size %d, payload is %d bytes: %w",
			p.Type, p.Size, len(payload), ErrSizeMismatch)
	}
	return DecodePayload(p.Type, payload)
}

// EncodeInflated serializes v in its inflated envelope form.
func EncodeInflated(v Value) ([]byte, error) {
	payload, err := v.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode git %s: %w", v.Type(), err)
	}
	dst := AppendPrefix(nil, v.Type(), int64(len(payload)))
	return append(dst, payload...), nil
}

// Decode inflates a zlib-wrapped loose object and parses it.
func Decode(data []byte) (Value, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode git object: %w", err)
	}
	inflated, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("decode git object: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("decode git object: %w", err)
	}
	return DecodeInflated(inflated)
}

// Encode serializes v as a zlib-wrapped loose object.
func Encode(v Value) ([]byte, error) {
	inflated, err := EncodeInflated(v)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(inflated); err != nil {
		zw.Close()
		return nil, fmt.Errorf("encode git %s: %w", v.Type(), err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("encode git %s: %w", v.Type(), err)
	}
	return buf.Bytes(), nil
}

// SHA1Sum computes the content address of v: the SHA-1 hash of its
// inflated envelope form.
func SHA1Sum(v Value) (githash.SHA1, error) {
	inflated, err := EncodeInflated(v)
	if err != nil {
		return githash.SHA1{}, err
	}
	return githash.Sum(inflated), nil
}

func appendHex(dst, src []byte) []byte {
	const digits = "0123456789abcdef"
	for _, b := range src {
		dst = append(dst, digits[b>>4], digits[b&0xf])
	}
	return dst
}
