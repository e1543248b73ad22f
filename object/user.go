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
	"fmt"
	"strings"
)

// User identifies an author, committer, or tagger as it appears in a
// commit or tag header: "A U Thor <author@example.com> 1112912053 -0700".
//
// Date is the raw timestamp token (seconds and timezone) and is treated
// as uninterpreted text: the codec round-trips it byte for byte.
//
// Name and Email are not escaped in the serialized form, so callers must
// ensure they do not contain '<' or '>'.
type User struct {
	Name  string
	Email string
	Date  string
}

// ParseUser parses a user line (without the leading "author "/"committer "
// keyword and without the trailing newline).
func ParseUser(line []byte) (User, error) {
	nameEnd := bytes.IndexByte(line, '<')
	if nameEnd == -1 {
		return User{}, fmt.Errorf("parse git user %q: missing '<'", line)
	}
	name := strings.TrimSuffix(string(line[:nameEnd]), " ")
	rest := line[nameEnd+1:]
	emailEnd := bytes.IndexByte(rest, '>')
	if emailEnd == -1 {
		return User{}, fmt.Errorf("parse git user %q: missing '>'", line)
	}
	email := string(rest[:emailEnd])
	rest = rest[emailEnd+1:]
	if len(rest) == 0 || rest[0] != ' ' {
		return User{}, fmt.Errorf("parse git user %q: missing space after '>'", line)
	}
	return User{Name: name, Email: email, Date: string(rest[1:])}, nil
}

// String serializes the user in the Git header form.
func (u User) String() string {
	return u.Name + " <" + u.Email + "> " + u.Date
}

// appendTo serializes the user, verifying that the unescaped fields
// cannot corrupt the surrounding header.
func (u User) appendTo(dst []byte) ([]byte, error) {
	if strings.ContainsAny(u.Name, "<>") {
		return dst, fmt.Errorf("user name %q contains angle bracket", u.Name)
	}
	if strings.ContainsAny(u.Email, "<>") {
		return dst, fmt.Errorf("user email %q contains angle bracket", u.Email)
	}
	if !isSafeForHeader(u.Name) || !isSafeForHeader(u.Email) || !isSafeForHeader(u.Date) {
		return dst, fmt.Errorf("user %q contains unsafe characters", u.String())
	}
	return append(dst, u.String()...), nil
}

// isSafeForHeader reports whether s is safe to be included as an element
// of an object header.
func isSafeForHeader(s string) bool {
	return !strings.ContainsAny(s, "\x00\n")
}
