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
	"regexp"
)

// markdownImageRegex finds both Markdown image syntax (`![alt](url)`) and
// bare HTML `<img src="url">` tags, the two forms the teacher's own
// single-compiled-regex validation style (validation.go's uuidRegex)
// suggests reaching for rather than a full markdown parser dependency.
var markdownImageRegex = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)|<img[^>]+src=["']([^"']+)["']`)

// ExtractImageURLs returns every image URL referenced in body, in the
// order they appear, deduplicated.
func ExtractImageURLs(body string) []string {
	matches := markdownImageRegex.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		url := m[1]
		if url == "" {
			url = m[2]
		}
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		out = append(out, url)
	}
	return out
}

// RemovedImageURLs returns the URLs present in oldBody but absent from
// newBody, the candidate set for deletion per spec.md §4.6 "Any
// body/description edit scans the markdown for image URLs and deletes
// uploaded images that no longer appear." Filtering to URLs actually
// hosted under this project's own upload context (so a removed link to
// someone else's image is never deleted) is the caller's job — this
// function only computes the set difference.
func RemovedImageURLs(oldBody, newBody string) []string {
	stillPresent := make(map[string]bool)
	for _, u := range ExtractImageURLs(newBody) {
		stillPresent[u] = true
	}
	var removed []string
	for _, u := range ExtractImageURLs(oldBody) {
		if !stillPresent[u] {
			removed = append(removed, u)
		}
	}
	return removed
}
