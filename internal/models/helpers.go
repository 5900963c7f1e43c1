// Copyright (c) 2026 Modrinth Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

import (
	"github.com/modrinth/labrinth-go/internal/baseid"
)

// baseidStr renders a signed 64-bit row id as its canonical base62 string,
// the form cache keys and wire ids use throughout (spec.md §4.1).
func baseidStr(id int64) string {
	return baseid.Encode(uint64(id))
}

// parseID attempts to decode token as a base62 id. Tokens that fail to
// parse (or parse to a value that isn't a plausible row id) are treated as
// slugs by callers.
func parseID(token string) (int64, bool) {
	n, err := baseid.Decode(token)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

// toBigintArray converts a slice of row ids into the form pgx sends for an
// `= ANY($1::bigint[])` parameter.
func toBigintArray(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
