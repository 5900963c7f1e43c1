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

import (
	"reflect"
	"testing"

	"github.com/modrinth/labrinth-go/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Query
	}{
		{
			input: "loaders:fabric",
			expected: Query{
				Filters:  []Filter{{Key: "loaders", Value: "fabric", Operator: OpEqual}},
				FreeText: []string{},
			},
		},
		{
			input: "game_versions:\"1.20.1\" loaders:\"quilt\"",
			expected: Query{
				Filters: []Filter{
					{Key: "game_versions", Value: "1.20.1", Operator: OpEqual},
					{Key: "loaders", Value: "quilt", Operator: OpEqual},
				},
				FreeText: []string{},
			},
		},
		{
			input: "project_type:mod skyblock",
			expected: Query{
				Filters:  []Filter{{Key: "project_type", Value: "mod", Operator: OpEqual}},
				FreeText: []string{"skyblock"},
			},
		},
		{
			input: "downloads:>=1000",
			expected: Query{
				Filters:  []Filter{{Key: "downloads", Value: "1000", Operator: OpGreaterOrEqual}},
				FreeText: []string{},
			},
		},
		{
			input: "follows:<50",
			expected: Query{
				Filters:  []Filter{{Key: "follows", Value: "50", Operator: OpLess}},
				FreeText: []string{},
			},
		},
		{
			input: "downloads:1000..10000",
			expected: Query{
				Filters:  []Filter{{Key: "downloads", Value: "1000", MaxValue: "10000", Operator: OpRange}},
				FreeText: []string{},
			},
		},
		{
			input: "mixed query \"free text\" categories:adventure",
			expected: Query{
				Filters:  []Filter{{Key: "categories", Value: "adventure", Operator: OpEqual}},
				FreeText: []string{"mixed", "query", "free text"},
			},
		},
		{
			input: "broken:range:..",
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"broken:range:.."},
			},
		},
		{
			input: "time:12:00",
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"time:12:00"},
			},
		},
		{
			input: "time:\"12:00\"",
			expected: Query{
				Filters:  []Filter{{Key: "time", Value: "12:00", Operator: OpEqual}},
				FreeText: []string{},
			},
		},
	}

	for _, tt := range tests {
		got := Parse(tt.input)
		if len(got.FreeText) == 0 && len(tt.expected.FreeText) == 0 {
			got.FreeText = []string{}
			tt.expected.FreeText = []string{}
		}
		if len(got.Filters) == 0 && len(tt.expected.Filters) == 0 {
			got.Filters = []Filter{}
			tt.expected.Filters = []Filter{}
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Parse(%q)\ngot  %#v\nwant %#v", tt.input, got, tt.expected)
		}
	}
}

func TestRewriteFacet(t *testing.T) {
	tests := map[string]string{
		"versions:1.20.1":    "game_versions:1.20.1",
		"project_type:mod":   "project_types:mod",
		"title:sodium":       "name:sodium",
		"categories:fabric":  "categories:fabric",
		"loaders:quilt":      "loaders:quilt",
		"malformed-no-colon": "malformed-no-colon",
	}
	for in, want := range tests {
		if got := RewriteFacet(in); got != want {
			t.Errorf("RewriteFacet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRewriteFacets(t *testing.T) {
	in := [][]string{
		{"versions:1.20.1", "project_type:mod"},
		{"categories:adventure"},
	}
	want := [][]string{
		{"game_versions:1.20.1", "project_types:mod"},
		{"categories:adventure"},
	}
	got := RewriteFacets(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewriteFacets(%v) = %v, want %v", in, got, want)
	}
}

func TestRewriteClientServerFacetExpandsToLoaderField(t *testing.T) {
	got, ok := RewriteClientServerFacet("client_side:required")
	if !ok {
		t.Fatalf("expected client_side facet to be recognized")
	}
	want := []string{"client_side_field_value:required"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewriteClientServerFacet = %v, want %v", got, want)
	}
}

func TestRewriteClientServerFacetRejectsUnknownValue(t *testing.T) {
	if _, ok := RewriteClientServerFacet("client_side:bogus"); ok {
		t.Errorf("expected unknown client_side value to be rejected")
	}
}

func TestRewriteFacetsExpandsCompoundClientServerFacet(t *testing.T) {
	in := [][]string{{"server_side:optional", "versions:1.20"}}
	want := [][]string{{"server_side_field_value:optional", "game_versions:1.20"}}
	got := RewriteFacets(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewriteFacets(%v) = %v, want %v", in, got, want)
	}
}

func TestTokenizeHandlesQuotesAndWhitespace(t *testing.T) {
	got := tokenize(`loaders:fabric  game_versions:"1.20 snapshot" bare`)
	want := []string{"loaders:fabric", `game_versions:"1.20 snapshot"`, "bare"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %#v, want %#v", got, want)
	}
}

func TestRemoveQuotes(t *testing.T) {
	tests := map[string]string{
		`"quoted"`:   "quoted",
		`'quoted'`:   "quoted",
		"unquoted":   "unquoted",
		`"mismatch'`: `"mismatch'`,
	}
	for in, want := range tests {
		if got := removeQuotes(in); got != want {
			t.Errorf("removeQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildDocumentFlattensLoaderFields(t *testing.T) {
	fieldValues := map[string][]string{
		"client_side": {"required", "optional"},
	}
	doc := BuildDocument(models.Project{
		ID:                   1234,
		Slug:                 "sodium",
		Title:                "Sodium",
		Categories:           []string{"optimization"},
		AdditionalCategories: []string{"utility"},
		Loaders:              []string{"fabric", "quilt"},
		Downloads:            1000,
		Followers:            42,
	}, fieldValues)

	if doc.Slug != "sodium" || doc.Title != "Sodium" {
		t.Errorf("unexpected base fields: %+v", doc)
	}
	if len(doc.DisplayCategories) != 2 {
		t.Errorf("expected display categories to union categories+additional, got %v", doc.DisplayCategories)
	}
	values, ok := doc.LoaderFields["client_side"].([]string)
	if !ok || len(values) != 2 {
		t.Errorf("expected flattened client_side values, got %#v", doc.LoaderFields["client_side"])
	}
	if doc.ProjectID == "" {
		t.Errorf("expected a non-empty encoded project id")
	}
}
