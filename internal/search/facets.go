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

package search

import "strings"

// facetKeyRewrites is the v2 -> v3 facet key table from spec.md §4.10:
// "versions:x -> game_versions:x, project_type:x -> project_types:x,
// title:x -> name:x".
var facetKeyRewrites = map[string]string{
	"versions":     "game_versions",
	"project_type": "project_types",
	"title":        "name",
}

// RewriteFacet translates one "key:value" v2 facet string into its v3
// equivalent, leaving unrecognized keys untouched. client_side/server_side
// facets are not renamed here; RewriteClientServerFacet maps them onto
// their "<key>_field_value" loader-field form instead.
func RewriteFacet(facet string) string {
	key, value, ok := strings.Cut(facet, ":")
	if !ok {
		return facet
	}
	if rewritten, known := facetKeyRewrites[key]; known {
		return rewritten + ":" + value
	}
	return facet
}

// RewriteFacets applies RewriteFacet across a full facet matrix (a slice
// of OR-groups, each itself a slice of facet strings ANDed... per the v2
// facets[][] convention), expanding client_side/server_side into their
// compound loader-field form in place.
func RewriteFacets(facets [][]string) [][]string {
	out := make([][]string, len(facets))
	for i, group := range facets {
		rewrittenGroup := make([]string, 0, len(group))
		for _, f := range group {
			if compound, ok := RewriteClientServerFacet(f); ok {
				rewrittenGroup = append(rewrittenGroup, compound...)
				continue
			}
			rewrittenGroup = append(rewrittenGroup, RewriteFacet(f))
		}
		out[i] = rewrittenGroup
	}
	return out
}

// clientServerValues maps a v2 client_side/server_side facet value to the
// v3 loader-field value it compiles down to.
var clientServerValues = map[string]string{
	"required":    "required",
	"optional":    "optional",
	"unsupported": "unsupported",
	"unknown":     "unknown",
}

// RewriteClientServerFacet recognizes a "client_side:value" or
// "server_side:value" facet and returns its v3 loader-field equivalent
// ("client_side_field_value:value"), since spec.md §4.10 notes these
// become compound facets on loader-field booleans rather than a simple
// key rename.
func RewriteClientServerFacet(facet string) ([]string, bool) {
	key, value, ok := strings.Cut(facet, ":")
	if !ok {
		return nil, false
	}
	if key != "client_side" && key != "server_side" {
		return nil, false
	}
	v3Value, known := clientServerValues[value]
	if !known {
		return nil, false
	}
	return []string{key + "_field_value:" + v3Value}, true
}
