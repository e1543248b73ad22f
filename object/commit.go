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

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"gitcore.io/pkg/git/githash"
)

// A Commit is a parsed Git commit object.
type Commit struct {
	// Tree is the hash of the commit's tree object.
	Tree githash.TreeID
	// Parents are the hashes of the commit's parents: empty for a root
	// commit, more than one for a merge.
	Parents []githash.CommitID

	// Author identifies the person who wrote the code.
	Author User
	// Committer identifies the person who committed the code to the
	// repository.
	Committer User

	// Message is the raw bytes after the blank separator line, including
	// any trailing newline.
	Message string
}

// ParseCommit deserializes a commit in the Git object format. It is the
// same as calling UnmarshalBinary on a new commit.
func ParseCommit(data []byte) (*Commit, error) {
	c := new(Commit)
	err := c.UnmarshalBinary(data)
	return c, err
}

// Type returns TypeCommit.
func (c *Commit) Type() Type {
	return TypeCommit
}

// UnmarshalBinary deserializes a commit from the Git object format.
// The first four headers must appear in order: tree, parent (zero or
// more), author, committer. The message starts after the blank line.
func (c *Commit) UnmarshalBinary(data []byte) error {
	var ok bool
	data, ok = consumeString(data, "tree ")
	if !ok {
		return fmt.Errorf("parse git commit: tree: missing")
	}
	*c = Commit{}
	var err error
	data, err = consumeHex(c.Tree[:], data)
	if err != nil {
		return fmt.Errorf("parse git commit: tree: %w", err)
	}
	data, ok = consumeString(data, "\n")
	if !ok {
		return fmt.Errorf("parse git commit: tree: trailing data")
	}
	for i := 0; ; i++ {
		data, ok = consumeString(data, "parent ")
		if !ok {
			break
		}
		var p githash.CommitID
		data, err = consumeHex(p[:], data)
		if err != nil {
			return fmt.Errorf("parse git commit: parent %d: %w", i, err)
		}
		c.Parents = append(c.Parents, p)
		data, ok = consumeString(data, "\n")
		if !ok {
			return fmt.Errorf("parse git commit: parent %d: trailing data", i)
		}
	}
	data, ok = consumeString(data, "author ")
	if !ok {
		return fmt.Errorf("parse git commit: author: missing line")
	}
	c.Author, data, err = consumeUser(data)
	if err != nil {
		return fmt.Errorf("parse git commit: author: %w", err)
	}
	data, ok = consumeString(data, "committer ")
	if !ok {
		return fmt.Errorf("parse git commit: committer: missing line")
	}
	c.Committer, data, err = consumeUser(data)
	if err != nil {
		return fmt.Errorf("parse git commit: committer: %w", err)
	}
	data, ok = consumeString(data, "\n")
	if !ok {
		return fmt.Errorf("parse git commit: message: expect blank line after header")
	}
	c.Message = string(data)
	return nil
}

// MarshalBinary serializes a commit into the Git object format.
func (c *Commit) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "tree %s\n", c.Tree)
	for _, par := range c.Parents {
		fmt.Fprintf(buf, "parent %s\n", par)
	}
	if err := writeUser(buf, "author", c.Author); err != nil {
		return nil, fmt.Errorf("marshal git commit: %w", err)
	}
	if err := writeUser(buf, "committer", c.Committer); err != nil {
		return nil, fmt.Errorf("marshal git commit: %w", err)
	}
	buf.WriteString("\n")
	buf.WriteString(c.Message)
	return buf.Bytes(), nil
}

// SHA1 computes the SHA-1 hash of the commit object. This is commonly
// known as the "commit hash" and uniquely identifies the commit.
func (c *Commit) SHA1() githash.CommitID {
	s, err := c.MarshalBinary()
	if err != nil {
		panic(err)
	}
	sum := githash.Sum(append(AppendPrefix(nil, TypeCommit, int64(len(s))), s...))
	return githash.CommitID(sum)
}

// Summary returns the first line of the message.
func (c *Commit) Summary() string {
	i := strings.IndexByte(c.Message, '\n')
	if i == -1 {
		return c.Message
	}
	return c.Message[:i]
}

func writeUser(w *bytes.Buffer, keyword string, u User) error {
	w.WriteString(keyword)
	w.WriteByte(' ')
	line, err := u.appendTo(nil)
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	w.Write(line)
	w.WriteByte('\n')
	return nil
}

func consumeString(src []byte, s string) (_ []byte, ok bool) {
	if len(src) < len(s) {
		return src, false
	}
	for i := 0; i < len(s); i++ {
		if src[i] != s[i] {
			return src, false
		}
	}
	return src[len(s):], true
}

func consumeHex(dst []byte, src []byte) (tail []byte, _ error) {
	n := hex.EncodedLen(len(dst))
	if len(src) < n {
		return src, io.ErrUnexpectedEOF
	}
	if _, err := hex.Decode(dst, src[:n]); err != nil {
		return src, err
	}
	return src[n:], nil
}

func consumeUser(src []byte) (_ User, tail []byte, _ error) {
	eol := bytes.IndexByte(src, '\n')
	if eol == -1 {
		return User{}, src, io.ErrUnexpectedEOF
	}
	u, err := ParseUser(src[:eol])
	if err != nil {
		return User{}, src, err
	}
	return u, src[eol+1:], nil
}
