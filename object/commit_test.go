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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gitcore.io/pkg/git/githash"
)

var author = User{Name: "A U Thor", Email: "author@example.com", Date: "1112912053 -0700"}

func treeLiteral(s string) githash.TreeID {
	return githash.TreeID(hashLiteral(s))
}

func commitLiteral(s string) githash.CommitID {
	return githash.CommitID(hashLiteral(s))
}

func TestCommitRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		commit *Commit
		data   string
	}{
		{
			name: "Root",
			commit: &Commit{
				Tree:      treeLiteral("4b825dc642cb6eb9a060e54bf8d69288fbee4904"),
				Author:    author,
				Committer: author,
				Message:   "Initial\n",
			},
			data: "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"author A U Thor <author@example.com> 1112912053 -0700\n" +
				"committer A U Thor <author@example.com> 1112912053 -0700\n" +
				"\n" +
				"Initial\n",
		},
		{
			name: "SingleParent",
			commit: &Commit{
				Tree:      treeLiteral("4b825dc642cb6eb9a060e54bf8d69288fbee4904"),
				Parents:   []githash.CommitID{commitLiteral("ce013625030ba8dba906f756967f9e9ca394464a")},
				Author:    author,
				Committer: User{Name: "C O Mitter", Email: "committer@example.com", Date: "1112912113 -0700"},
				Message:   "Second\n\nWith a body.\n",
			},
			data: "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"parent ce013625030ba8dba906f756967f9e9ca394464a\n" +
				"author A U Thor <author@example.com> 1112912053 -0700\n" +
				"committer C O Mitter <committer@example.com> 1112912113 -0700\n" +
				"\n" +
				"Second\n\nWith a body.\n",
		},
		{
			name: "Merge",
			commit: &Commit{
				Tree: treeLiteral("4b825dc642cb6eb9a060e54bf8d69288fbee4904"),
				Parents: []githash.CommitID{
					commitLiteral("ce013625030ba8dba906f756967f9e9ca394464a"),
					commitLiteral("8ab686eafeb1f44702738c8b0f24f2567c36da6d"),
				},
				Author:    author,
				Committer: author,
				Message:   "Merge\n",
			},
			data: "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"parent ce013625030ba8dba906f756967f9e9ca394464a\n" +
				"parent 8ab686eafeb1f44702738c8b0f24f2567c36da6d\n" +
				"author A U Thor <author@example.com> 1112912053 -0700\n" +
				"committer A U Thor <author@example.com> 1112912053 -0700\n" +
				"\n" +
				"Merge\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.commit.MarshalBinary()
			if err != nil {
				t.Fatal("MarshalBinary:", err)
			}
			if diff := cmp.Diff(test.data, string(got)); diff != "" {
				t.Errorf("serialized commit (-want +got):\n%s", diff)
			}
			parsed, err := ParseCommit([]byte(test.data))
			if err != nil {
				t.Fatal("ParseCommit:", err)
			}
			if diff := cmp.Diff(test.commit, parsed, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("parsed commit (-want +got):\n%s", diff)
			}

			// A second emit pass must be byte-identical.
			again, err := parsed.MarshalBinary()
			if err != nil {
				t.Fatal("MarshalBinary (second pass):", err)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("second emit differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestParseCommitErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "Empty",
			data: "",
		},
		{
			name: "MissingTree",
			data: "author A U Thor <author@example.com> 1112912053 -0700\n\nhi\n",
		},
		{
			name: "BadTreeHash",
			data: "tree zzzz5dc642cb6eb9a060e54bf8d69288fbee4904\n\nhi\n",
		},
		{
			name: "MissingCommitter",
			data: "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"author A U Thor <author@example.com> 1112912053 -0700\n" +
				"\nhi\n",
		},
		{
			name: "MissingBlankLine",
			data: "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"author A U Thor <author@example.com> 1112912053 -0700\n" +
				"committer A U Thor <author@example.com> 1112912053 -0700\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseCommit([]byte(test.data)); err == nil {
				t.Error("ParseCommit succeeded")
			}
		})
	}
}

func TestCommitSHA1(t *testing.T) {
	c := &Commit{
		Tree:      treeLiteral("4b825dc642cb6eb9a060e54bf8d69288fbee4904"),
		Author:    author,
		Committer: author,
		Message:   "Initial\n",
	}
	sum, err := SHA1Sum(c)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.SHA1(); got.SHA1() != sum {
		t.Errorf("c.SHA1() = %v; want %v", got, sum)
	}
}

func TestCommitSummary(t *testing.T) {
	c := &Commit{Message: "Subject line\n\nBody.\n"}
	if got, want := c.Summary(), "Subject line"; got != want {
		t.Errorf("Summary() = %q; want %q", got, want)
	}
}
