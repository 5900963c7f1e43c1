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
	"fmt"
	"sort"
	"strings"
)

// ApprovalType is the license-approval state AutoMod attaches to a single
// pack file it could not match against a first-party upload, per spec.md
// §9's automated moderation note.
type ApprovalType string

const (
	ApprovalYes                      ApprovalType = "yes"
	ApprovalWithAttributionAndSource ApprovalType = "with-attribution-and-source"
	ApprovalWithAttribution          ApprovalType = "with-attribution"
	ApprovalNo                       ApprovalType = "no"
	ApprovalPermanentNo              ApprovalType = "permanent-no"
	ApprovalUnidentified             ApprovalType = "unidentified"
)

// approved reports whether this approval type clears a pack file for
// distribution outright (no moderator message needed for it).
func (a ApprovalType) approved() bool {
	return a == ApprovalYes || a == ApprovalWithAttributionAndSource
}

// ModerationMessage is one finding AutoMod attaches to a project's thread,
// per spec.md §9 "Automated moderation's treatment of partial pack
// analysis ('incomplete': true) distinguishes first-time vs repeat
// rejection with subtle conditions."
type ModerationMessage interface {
	header() string
	body() string
	// rejectable reports whether this message alone should force the
	// project into rejected, given whether this is the project's first
	// AutoMod pass (firstTime) or a repeat pass on an already-messaged
	// project.
	rejectable(firstTime bool) bool
}

// NoPrimaryFileMessage fires when a version has no file marked primary.
type NoPrimaryFileMessage struct{}

func (NoPrimaryFileMessage) header() string { return "No primary files" }
func (NoPrimaryFileMessage) body() string {
	return "Please attach a file to this version. All files on Modrinth must have files associated with their versions."
}
func (NoPrimaryFileMessage) rejectable(bool) bool { return true }

// PackFilesNotAllowedMessage fires when a modpack's overrides bundle
// third-party content AutoMod could not clear. Files maps each bundled
// path to the approval state reached for it; Incomplete is true when the
// pass could not resolve every file (e.g. an external lookup was
// unavailable) and so the result is provisional.
type PackFilesNotAllowedMessage struct {
	Files      map[string]ApprovalType
	Incomplete bool
}

func (PackFilesNotAllowedMessage) header() string { return "Copyrighted Content" }

func (m PackFilesNotAllowedMessage) body() string {
	var attribute, no, permanentNo, unidentified []string
	for path, approval := range m.Files {
		switch approval {
		case ApprovalYes, ApprovalWithAttributionAndSource:
		case ApprovalWithAttribution:
			attribute = append(attribute, path)
		case ApprovalNo:
			no = append(no, path)
		case ApprovalPermanentNo:
			permanentNo = append(permanentNo, path)
		default:
			unidentified = append(unidentified, path)
		}
	}
	sort.Strings(attribute)
	sort.Strings(no)
	sort.Strings(permanentNo)
	sort.Strings(unidentified)

	var b strings.Builder
	b.WriteString("This pack redistributes copyrighted material. Please refer to Modrinth's guide on obtaining modpack permissions for more information.\n\n")
	printGroup(&b, attribute, "The following content has attribution requirements:")
	printGroup(&b, no, "The following content is not allowed in Modrinth modpacks due to licensing restrictions:")
	printGroup(&b, permanentNo, "The following content is not allowed in Modrinth modpacks, regardless of permission obtained:")
	printGroup(&b, unidentified, "The following content could not be identified:")
	return b.String()
}

func printGroup(b *strings.Builder, paths []string, headline string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", headline)
	for _, p := range paths {
		fmt.Fprintf(b, "- %s\n", p)
	}
	b.WriteString("\n")
}

// rejectable mirrors the original's `(!incomplete || first_time) &&
// files.values().any(...)` matrix exactly: an incomplete finding is only
// rejectable on a project's first AutoMod pass, and within that an
// unidentified or ordinary "no" file is only rejectable on the first
// pass too, while "permanent-no" forces rejection on every pass that
// gets past the incomplete check.
func (m PackFilesNotAllowedMessage) rejectable(firstTime bool) bool {
	if m.Incomplete && !firstTime {
		return false
	}
	for _, approval := range m.Files {
		switch approval {
		case ApprovalPermanentNo:
			return true
		case ApprovalNo, ApprovalUnidentified:
			if firstTime {
				return true
			}
		}
	}
	return false
}

// ModerationMessages collects every finding from one AutoMod pass,
// keyed by version number for version-specific messages.
type ModerationMessages struct {
	Messages        []ModerationMessage
	VersionSpecific map[string][]ModerationMessage
}

// IsEmpty reports a clean pass.
func (m ModerationMessages) IsEmpty() bool {
	return len(m.Messages) == 0 && len(m.VersionSpecific) == 0
}

// ShouldReject reports whether any message in this pass is individually
// rejectable given firstTime.
func (m ModerationMessages) ShouldReject(firstTime bool) bool {
	for _, msg := range m.Messages {
		if msg.rejectable(firstTime) {
			return true
		}
	}
	for _, msgs := range m.VersionSpecific {
		for _, msg := range msgs {
			if msg.rejectable(firstTime) {
				return true
			}
		}
	}
	return false
}

// Markdown renders the full pass as the thread message body AutoMod
// posts, matching the original's heading-per-message, footer-signed shape.
func (m ModerationMessages) Markdown() string {
	var b strings.Builder
	for _, msg := range m.Messages {
		fmt.Fprintf(&b, "## %s\n%s\n\n", msg.header(), msg.body())
	}
	versions := make([]string, 0, len(m.VersionSpecific))
	for v := range m.VersionSpecific {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, v := range versions {
		for _, msg := range m.VersionSpecific[v] {
			fmt.Fprintf(&b, "## Version %s: %s\n%s\n\n", v, msg.header(), msg.body())
		}
	}
	b.WriteString("---\n\nThis is an automated message generated by AutoMod. If you are facing issues, please contact support.")
	return b.String()
}
