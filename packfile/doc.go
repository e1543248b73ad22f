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
Package packfile reads Git packfiles and their companion index files.
Packfiles are used for storing Git objects on disk and when sending Git
objects over the network. The format is described in
https://git-scm.com/docs/pack-format.

Objects in a packfile may be either stored in their entirety or stored in
a "deltified" representation: a copy/insert script against a base object
identified by a backwards offset within the same pack or by hash. The
package parses entries into the Entry union, resolves delta chains
against their bases, and walks whole packs in order via Unpack.

The package operates on byte views read fully into memory (or mapped);
it never modifies them.
*/
package packfile
