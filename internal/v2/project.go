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

// Package v2 rewrites requests and responses between the legacy v2 wire
// shape and the v3 core, per spec.md §4.10. Every route either rewrites
// the request into v3 terms and reshapes the v3 response, or just
// reshapes; nothing here caches independently of v3 — a single v3
// invalidation is always enough.
package v2

import "github.com/modrinth/labrinth-go/internal/models"

// clientServerUnknown is the default recovered value when no version
// carries the field yet, per spec.md §4.10: "defaults to unknown".
const clientServerUnknown = "unknown"

// DonationURL is the v2 wire shape of one donation-platform link.
type DonationURL struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ProjectResponse is the v2 wire shape of a project, field-renamed and
// flattened from the v3 core representation per spec.md §4.10:
// "title ↔ name; description ↔ summary; body ↔ description" (the v3 core
// itself already stores these under the names Title/Description/Body, so
// reshaping here is a pass-through of those three plus the typed-link and
// loader-field translations below).
type ProjectResponse struct {
	ID           string        `json:"id"`
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Body         string        `json:"body"`
	ClientSide   string        `json:"client_side"`
	ServerSide   string        `json:"server_side"`
	GameVersions []string      `json:"game_versions"`
	Loaders      []string      `json:"loaders"`
	Categories   []string      `json:"categories"`
	IssuesURL    string        `json:"issues_url,omitempty"`
	SourceURL    string        `json:"source_url,omitempty"`
	WikiURL      string        `json:"wiki_url,omitempty"`
	DiscordURL   string        `json:"discord_url,omitempty"`
	DonationURLs []DonationURL `json:"donation_urls"`
	Downloads    int64         `json:"downloads"`
	Followers    int64         `json:"followers"`
}

// BuildProjectResponse reshapes a v3 project plus its pre-resolved
// client/server-side, aggregated game_versions, and typed links into the
// v2 wire shape. The client/server-side strings and game_versions slice
// are resolved by the caller (ResolveClientServerSide, AggregateGameVersions
// below) since both require reading the project's versions, an I/O step
// this pure function stays free of; links are likewise loaded by the
// caller via the project package's link store.
func BuildProjectResponse(p models.Project, clientSide, serverSide string, gameVersions []string, links []models.ProjectLink) ProjectResponse {
	resp := ProjectResponse{
		ID:           encodeID(p.ID),
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Body:         p.Body,
		ClientSide:   clientSide,
		ServerSide:   serverSide,
		GameVersions: gameVersions,
		Loaders:      p.Loaders,
		Categories:   append(append([]string{}, p.Categories...), p.AdditionalCategories...),
		Downloads:    p.Downloads,
		Followers:    p.Followers,
	}
	if resp.ClientSide == "" {
		resp.ClientSide = clientServerUnknown
	}
	if resp.ServerSide == "" {
		resp.ServerSide = clientServerUnknown
	}
	for _, l := range links {
		switch l.Kind {
		case models.LinkIssues:
			resp.IssuesURL = l.URL
		case models.LinkSource:
			resp.SourceURL = l.URL
		case models.LinkWiki:
			resp.WikiURL = l.URL
		case models.LinkDiscord:
			resp.DiscordURL = l.URL
		case models.LinkDonation:
			resp.DonationURLs = append(resp.DonationURLs, DonationURL{
				ID:       string(l.Kind) + ":" + l.Platform,
				Platform: l.Platform,
				URL:      l.URL,
			})
		}
	}
	if resp.DonationURLs == nil {
		resp.DonationURLs = []DonationURL{}
	}
	return resp
}

// ProjectLinkEdits turns a v2 write request's typed-link fields plus a
// replacement donation_urls array into the flat []models.ProjectLink edit
// set MergeLinks/ReplaceDonationLinks expect. An empty pointer value (the
// double_option "clear" case) is resolved to the empty-URL convention
// MergeLinks uses to mean "drop this kind".
type ProjectLinkEdits struct {
	IssuesURL    *string
	SourceURL    *string
	WikiURL      *string
	DiscordURL   *string
	DonationURLs []DonationURL // nil: leave unchanged; non-nil: replace atomically
}

// ToTypedLinkEdits converts the singleton-kind fields (issues/source/wiki/
// discord) into a []models.ProjectLink edit list suitable for MergeLinks.
// Donation links are handled separately since they replace atomically
// rather than merging by kind, per spec.md §4.10.
func (e ProjectLinkEdits) ToTypedLinkEdits() []models.ProjectLink {
	var out []models.ProjectLink
	add := func(kind models.LinkKind, url *string) {
		if url == nil {
			return
		}
		out = append(out, models.ProjectLink{Kind: kind, URL: *url})
	}
	add(models.LinkIssues, e.IssuesURL)
	add(models.LinkSource, e.SourceURL)
	add(models.LinkWiki, e.WikiURL)
	add(models.LinkDiscord, e.DiscordURL)
	return out
}

// ToDonationLinks converts the v2 donation_urls array into the
// []models.ProjectLink form ReplaceDonationLinks expects.
func (e ProjectLinkEdits) ToDonationLinks() []models.ProjectLink {
	out := make([]models.ProjectLink, len(e.DonationURLs))
	for i, d := range e.DonationURLs {
		out[i] = models.ProjectLink{Kind: models.LinkDonation, Platform: d.Platform, URL: d.URL}
	}
	return out
}
