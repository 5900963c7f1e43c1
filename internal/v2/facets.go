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

package v2

import "github.com/modrinth/labrinth-go/internal/search"

// RewriteSearchFacets translates a v2 search request's facets[][] matrix
// into v3 terms before it reaches the index, per spec.md §4.10's facet
// table; the rewrite itself lives in internal/search since it is also
// exercised directly by v3 callers that accept the legacy grammar.
func RewriteSearchFacets(facets [][]string) [][]string {
	return search.RewriteFacets(facets)
}

// ParseSearchQuery parses a v2 free-text search-box query string into
// structured filters plus remaining free text.
func ParseSearchQuery(q string) search.Query {
	return search.Parse(q)
}
