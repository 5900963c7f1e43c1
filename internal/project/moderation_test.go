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

import "testing"

func TestNoPrimaryFileAlwaysRejectable(t *testing.T) {
	msg := NoPrimaryFileMessage{}
	if !msg.rejectable(true) {
		t.Error("NoPrimaryFileMessage should be rejectable on first pass")
	}
	if !msg.rejectable(false) {
		t.Error("NoPrimaryFileMessage should be rejectable on repeat pass")
	}
}

func TestPackFilesNotAllowedIncompleteOnlyRejectsFirstTime(t *testing.T) {
	msg := PackFilesNotAllowedMessage{
		Files:      map[string]ApprovalType{"mods/x.jar": ApprovalUnidentified},
		Incomplete: true,
	}
	if !msg.rejectable(true) {
		t.Error("incomplete finding should be rejectable on the project's first AutoMod pass")
	}
	if msg.rejectable(false) {
		t.Error("incomplete finding should NOT be rejectable on a repeat pass")
	}
}

func TestPackFilesNotAllowedPermanentNoAlwaysRejects(t *testing.T) {
	msg := PackFilesNotAllowedMessage{
		Files:      map[string]ApprovalType{"mods/x.jar": ApprovalPermanentNo},
		Incomplete: false,
	}
	if !msg.rejectable(true) {
		t.Error("permanent-no should reject on first pass")
	}
	if !msg.rejectable(false) {
		t.Error("permanent-no should reject on repeat pass of a complete analysis")
	}
}

func TestPackFilesNotAllowedCleanApprovalsNeverReject(t *testing.T) {
	msg := PackFilesNotAllowedMessage{
		Files: map[string]ApprovalType{
			"mods/a.jar": ApprovalYes,
			"mods/b.jar": ApprovalWithAttributionAndSource,
			"mods/c.jar": ApprovalWithAttribution,
		},
	}
	if msg.rejectable(true) || msg.rejectable(false) {
		t.Error("yes/with-attribution-and-source/with-attribution should never force rejection")
	}
}

func TestModerationMessagesShouldRejectAggregatesAcrossVersions(t *testing.T) {
	messages := ModerationMessages{
		VersionSpecific: map[string][]ModerationMessage{
			"1.0.0": {PackFilesNotAllowedMessage{
				Files:      map[string]ApprovalType{"mods/x.jar": ApprovalNo},
				Incomplete: false,
			}},
		},
	}
	if !messages.ShouldReject(true) {
		t.Error("a single rejectable version-specific message should reject the whole pass")
	}
	if messages.ShouldReject(false) {
		t.Error("ApprovalNo is only rejectable on the first pass")
	}
}

func TestModerationMessagesIsEmpty(t *testing.T) {
	if !(ModerationMessages{}).IsEmpty() {
		t.Error("zero-value ModerationMessages should be empty")
	}
	nonEmpty := ModerationMessages{Messages: []ModerationMessage{NoPrimaryFileMessage{}}}
	if nonEmpty.IsEmpty() {
		t.Error("ModerationMessages with a message should not be empty")
	}
}
