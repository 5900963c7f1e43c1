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

package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LocalIndex is a small in-process LRU used the way the teacher's
// registry.go uses gameMetadata/teamMetadata LRUs: a cheap first line of
// defense for hot lookups (mostly slug->id) in front of the Redis round
// trip, never the source of truth.
type LocalIndex[V any] struct {
	cache *lru.Cache[string, V]
}

// NewLocalIndex creates a local index capped at size entries.
func NewLocalIndex[V any](size int) *LocalIndex[V] {
	c, _ := lru.New[string, V](size)
	return &LocalIndex[V]{cache: c}
}

func (l *LocalIndex[V]) Get(key string) (V, bool) {
	return l.cache.Get(key)
}

func (l *LocalIndex[V]) Add(key string, value V) {
	l.cache.Add(key, value)
}

func (l *LocalIndex[V]) Remove(key string) {
	l.cache.Remove(key)
}
