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

package project

import (
	"context"
	"reflect"
	"testing"

	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

func withAllCategoriesKnown(t *testing.T) {
	t.Helper()
	prev := categoryExistsFn
	categoryExistsFn = func(ctx context.Context, q db.Querier, name string) (bool, error) {
		return true, nil
	}
	t.Cleanup(func() { categoryExistsFn = prev })
}

func TestValidateSlugFormat(t *testing.T) {
	cases := []struct {
		slug string
		ok   bool
	}{
		{"fabric-api", true},
		{"sodium", true},
		{"a", false},
		{"ab", false},
		{"-leading-dash", false},
		{"trailing-dash-", false},
		{"Has-Upper", false},
		{"has_underscore", false},
		{"", false},
	}
	for _, c := range cases {
		err := ValidateSlugFormat(c.slug)
		if (err == nil) != c.ok {
			t.Errorf("ValidateSlugFormat(%q) error = %v, want ok=%v", c.slug, err, c.ok)
		}
	}
}

func TestApplyCategoryEditReplace(t *testing.T) {
	withAllCategoriesKnown(t)
	got, err := ApplyCategoryEdit(context.Background(), nil, []string{"technology"}, CategoryEdit{
		Replace: []string{"adventure", "adventure", "magic"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"adventure", "magic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyCategoryEditDeltaIsSetSemantics(t *testing.T) {
	withAllCategoriesKnown(t)
	current := []string{"adventure", "magic"}

	added, err := ApplyCategoryEdit(context.Background(), nil, current, CategoryEdit{Add: []string{"magic", "technology"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"adventure", "magic", "technology"}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("adding an already-present category changed the result: got %v, want %v", added, want)
	}

	removed, err := ApplyCategoryEdit(context.Background(), nil, current, CategoryEdit{Remove: []string{"storage", "magic"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantRemoved := []string{"adventure"}
	if !reflect.DeepEqual(removed, wantRemoved) {
		t.Errorf("removing an absent category errored or changed result: got %v, want %v", removed, wantRemoved)
	}
}

func TestMergeLinksReplacesSameKindAndClearsOnEmptyURL(t *testing.T) {
	current := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://old.example/issues"},
		{Kind: models.LinkSource, URL: "https://old.example/src"},
	}
	edits := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://new.example/issues"},
		{Kind: models.LinkWiki, URL: "https://new.example/wiki"},
		{Kind: models.LinkSource, URL: ""},
	}
	got, err := MergeLinks(current, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://new.example/issues"},
		{Kind: models.LinkWiki, URL: "https://new.example/wiki"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMergeLinksRejectsDonationKind(t *testing.T) {
	_, err := MergeLinks(nil, []models.ProjectLink{{Kind: models.LinkDonation, URL: "https://patreon.com/x"}})
	if err == nil {
		t.Error("expected error merging a donation link via MergeLinks, got nil")
	}
}

func TestReplaceDonationLinksIsAtomic(t *testing.T) {
	current := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://example/issues"},
		{Kind: models.LinkDonation, Platform: "patreon", URL: "https://patreon.com/old"},
		{Kind: models.LinkDonation, Platform: "kofi", URL: "https://ko-fi.com/old"},
	}
	next := []models.ProjectLink{
		{Platform: "github-sponsors", URL: "https://github.com/sponsors/x"},
	}
	got := ReplaceDonationLinks(current, next)
	want := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://example/issues"},
		{Kind: models.LinkDonation, Platform: "github-sponsors", URL: "https://github.com/sponsors/x"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageURLs(t *testing.T) {
	body := `# Title

![screenshot](https://cdn.example/a.png)

<img src="https://cdn.example/b.png" alt="b">

duplicate: ![again](https://cdn.example/a.png)
`
	got := ExtractImageURLs(body)
	want := []string{"https://cdn.example/a.png", "https://cdn.example/b.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRemovedImageURLs(t *testing.T) {
	old := "![a](https://cdn.example/a.png) ![b](https://cdn.example/b.png)"
	new := "![b](https://cdn.example/b.png) ![c](https://cdn.example/c.png)"
	got := RemovedImageURLs(old, new)
	want := []string{"https://cdn.example/a.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.ProjectStatus
		want     bool
	}{
		{models.StatusDraft, models.StatusProcessing, true},
		{models.StatusProcessing, models.StatusApproved, true},
		{models.StatusProcessing, models.StatusRejected, true},
		{models.StatusApproved, models.StatusUnlisted, true},
		{models.StatusDraft, models.StatusApproved, false},
		{models.StatusArchived, models.StatusApproved, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestRequiresModerator(t *testing.T) {
	if !RequiresModerator(models.StatusProcessing, models.StatusApproved) {
		t.Error("processing -> approved should require a moderator")
	}
	if RequiresModerator(models.StatusDraft, models.StatusProcessing) {
		t.Error("draft -> processing should not require a moderator")
	}
}
