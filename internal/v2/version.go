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
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/version"
)

// LoaderInput is the v3 core's "loader object" shape a v2 upload's flat
// loaders+game_versions lists get rewritten into, per spec.md §4.10:
// "loaders: [\"fabric\"] + game_versions: [\"1.20\"] on version upload ↔ v3
// loader objects [{loader: \"fabric\", game_versions: [\"1.20\"]}]".
type LoaderInput struct {
	Loader       string   `json:"loader"`
	GameVersions []string `json:"game_versions"`
}

// RewriteVersionLoaders expands a v2 upload's flat loaders+game_versions
// into one v3 loader object per loader, each carrying the full
// game_versions list — the v3 core does not distinguish per-loader game
// version support for a v2-originated upload, since v2 never expressed
// that distinction either.
func RewriteVersionLoaders(loaders, gameVersions []string) []LoaderInput {
	out := make([]LoaderInput, len(loaders))
	for i, l := range loaders {
		out[i] = LoaderInput{Loader: l, GameVersions: gameVersions}
	}
	return out
}

// BuildClientServerFields converts a v2 upload's client_side/server_side
// values into the dynamic loader-field values internal/version.Create
// expects, per spec.md §4.10: "On write, v2 values are converted to the
// v3 dynamic-field format." A nil pointer leaves that field unset.
func BuildClientServerFields(clientSide, serverSide *string) []version.FieldValue {
	var out []version.FieldValue
	if clientSide != nil {
		out = append(out, version.FieldValue{FieldName: "client_side", Text: clientSide})
	}
	if serverSide != nil {
		out = append(out, version.FieldValue{FieldName: "server_side", Text: serverSide})
	}
	return out
}

// VersionResponse is the v2 wire shape of a version.
type VersionResponse struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"mod_id"`
	Name          string             `json:"name"`
	VersionNumber string             `json:"version_number"`
	Changelog     string             `json:"changelog"`
	VersionType   models.VersionType `json:"version_type"`
	Loaders       []string           `json:"loaders"`
	GameVersions  []string           `json:"game_versions"`
	Featured      bool               `json:"featured"`
	Downloads     int64              `json:"downloads"`
}

// BuildVersionResponse reshapes a v3 version plus its already-resolved
// loaders/game_versions (both aggregated from its dynamic loader fields by
// the caller) into the v2 wire shape.
func BuildVersionResponse(v models.Version, loaders, gameVersions []string) VersionResponse {
	return VersionResponse{
		ID:            encodeID(v.ID),
		ProjectID:     encodeID(v.ProjectID),
		Name:          v.Name,
		VersionNumber: v.VersionNumber,
		Changelog:     v.Changelog,
		VersionType:   v.Type,
		Loaders:       loaders,
		GameVersions:  gameVersions,
		Featured:      v.Featured,
		Downloads:     v.Downloads,
	}
}
