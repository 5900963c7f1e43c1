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

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/modrinth/labrinth-go/internal/models"
)

func TestBuildProjectResponseDefaultsClientServerSideToUnknown(t *testing.T) {
	resp := BuildProjectResponse(models.Project{ID: 1, Slug: "sodium"}, "", "", nil, nil)
	if resp.ClientSide != "unknown" || resp.ServerSide != "unknown" {
		t.Errorf("expected unknown defaults, got %q/%q", resp.ClientSide, resp.ServerSide)
	}
}

func TestBuildProjectResponseSplitsTypedLinks(t *testing.T) {
	links := []models.ProjectLink{
		{Kind: models.LinkIssues, URL: "https://github.com/x/issues"},
		{Kind: models.LinkDonation, Platform: "patreon", URL: "https://patreon.com/x"},
		{Kind: models.LinkDonation, Platform: "ko-fi", URL: "https://ko-fi.com/x"},
	}
	resp := BuildProjectResponse(models.Project{ID: 1, Slug: "sodium"}, "required", "optional", []string{"1.20.1"}, links)
	if resp.IssuesURL != "https://github.com/x/issues" {
		t.Errorf("expected issues url to be split out, got %q", resp.IssuesURL)
	}
	if len(resp.DonationURLs) != 2 {
		t.Fatalf("expected 2 donation links, got %d", len(resp.DonationURLs))
	}
}

func TestProjectLinkEditsToTypedLinkEditsSkipsNilFields(t *testing.T) {
	issues := "https://github.com/x/issues"
	edits := ProjectLinkEdits{IssuesURL: &issues}
	got := edits.ToTypedLinkEdits()
	if len(got) != 1 || got[0].Kind != models.LinkIssues || got[0].URL != issues {
		t.Errorf("unexpected edits: %#v", got)
	}
}

func TestProjectLinkEditsToDonationLinksTagsKind(t *testing.T) {
	edits := ProjectLinkEdits{DonationURLs: []DonationURL{{Platform: "patreon", URL: "https://patreon.com/x"}}}
	got := edits.ToDonationLinks()
	if len(got) != 1 || got[0].Kind != models.LinkDonation {
		t.Errorf("expected donation kind to be tagged, got %#v", got)
	}
}

func TestRewriteVersionLoadersExpandsEachLoader(t *testing.T) {
	got := RewriteVersionLoaders([]string{"fabric", "quilt"}, []string{"1.20.1", "1.20.2"})
	want := []LoaderInput{
		{Loader: "fabric", GameVersions: []string{"1.20.1", "1.20.2"}},
		{Loader: "quilt", GameVersions: []string{"1.20.1", "1.20.2"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewriteVersionLoaders = %#v, want %#v", got, want)
	}
}

func TestBuildClientServerFieldsOmitsNilPointers(t *testing.T) {
	required := "required"
	fields := BuildClientServerFields(&required, nil)
	if len(fields) != 1 || fields[0].FieldName != "client_side" || *fields[0].Text != "required" {
		t.Errorf("unexpected fields: %#v", fields)
	}
}

func TestBuildClientServerFieldsBothSet(t *testing.T) {
	required, optional := "required", "optional"
	fields := BuildClientServerFields(&required, &optional)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
}

func TestRewriteSearchFacetsDelegatesToSearchPackage(t *testing.T) {
	got := RewriteSearchFacets([][]string{{"versions:1.20.1"}})
	want := [][]string{{"game_versions:1.20.1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewriteSearchFacets = %v, want %v", got, want)
	}
}

func TestParseSearchQueryDelegatesToSearchPackage(t *testing.T) {
	q := ParseSearchQuery("loaders:fabric skyblock")
	if len(q.Filters) != 1 || q.Filters[0].Key != "loaders" {
		t.Errorf("unexpected parse result: %#v", q)
	}
}

func TestBuildNotificationResponseRendersTeamInvite(t *testing.T) {
	body, _ := json.Marshal(teamInviteBody{TeamID: "abc123", ProjectName: "Sodium", InviterName: "jellysquid"})
	resp, err := BuildNotificationResponse(models.Notification{ID: 42, Kind: models.NotifyTeamInvite, Body: body})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Team Invitation" {
		t.Errorf("unexpected title: %q", resp.Title)
	}
	if len(resp.Actions) != 2 {
		t.Errorf("expected accept/deny actions, got %#v", resp.Actions)
	}
}

func TestBuildNotificationResponseRendersStatusChange(t *testing.T) {
	body, _ := json.Marshal(statusChangeBody{ProjectID: "abc", ProjectName: "Sodium", OldStatus: "processing", NewStatus: "approved"})
	resp, err := BuildNotificationResponse(models.Notification{ID: 1, Kind: models.NotifyStatusChange, Body: body})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Link != "/project/abc" {
		t.Errorf("unexpected link: %q", resp.Link)
	}
}

func TestBuildNotificationResponseUnknownKindFallsBackToGenericTitle(t *testing.T) {
	resp, err := BuildNotificationResponse(models.Notification{ID: 1, Kind: models.NotificationKind("something_new"), Body: json.RawMessage("{}")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Notification" {
		t.Errorf("expected generic fallback title, got %q", resp.Title)
	}
}
