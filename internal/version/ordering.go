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

package version

import (
	"sort"

	"github.com/modrinth/labrinth-go/internal/models"
)

// SortByDisplayOrder orders versions per spec.md §4.7: "(ordering IS NOT
// NULL DESC, ordering ASC, date_published ASC)" — specified orderings
// come first in ascending numeric order, unspecified versions fall back
// to publication order. Sorts in place.
func SortByDisplayOrder(versions []models.Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, b := versions[i], versions[j]
		aSet, bSet := a.OrderingIndex != nil, b.OrderingIndex != nil
		if aSet != bSet {
			return aSet
		}
		if aSet && bSet && *a.OrderingIndex != *b.OrderingIndex {
			return *a.OrderingIndex < *b.OrderingIndex
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
