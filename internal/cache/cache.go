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

// Package cache implements the cache fabric of spec.md §4.2: a Redis-backed
// keyed value store with deterministic keying, lock-on-miss to avoid
// dogpiling on a stale key, slug-to-id secondary indexing, and bulk
// invalidation. The teacher's gamestore.go keeps an equivalent dirty-vs-clean
// distinction locally (a dirty map guarding a sync.Map cache of encoded
// bytes) — this package is that same shape pushed out to Redis so it can be
// shared across API replicas.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ActualExpiry is when a cached value is considered stale and eligible
	// for a lock-on-miss refresh.
	ActualExpiry = 30 * time.Minute
	// HardTTL is the outer bound Redis itself enforces via SETEX/EXPIRE.
	HardTTL = 12 * time.Hour

	lockTTL = 10 * time.Second
)

// Fabric fronts a Redis client with the get_cached_keys contract from
// spec.md §4.2.
type Fabric struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Fabric {
	return &Fabric{rdb: rdb}
}

// envelope is the JSON shape stored at every value key.
type envelope[V any] struct {
	Key   string    `json:"key"`
	Alias string    `json:"alias,omitempty"`
	IAT   time.Time `json:"iat"`
	Val   V         `json:"val"`
}

func valueKey(namespace, id string) string {
	return fmt.Sprintf("%s:%s", namespace, id)
}

func slugKey(slugNamespace, slug string, caseSensitive bool) string {
	if !caseSensitive {
		slug = strings.ToLower(slug)
	}
	return fmt.Sprintf("%s_slugs:%s", slugNamespace, slug)
}

func lockKey(namespace, id string) string {
	return fmt.Sprintf("%s:%s/lock", namespace, id)
}

// MissResult is what a MissFunc returns for a key that had to be computed:
// the value itself, plus an optional slug to index it under.
type MissResult[V any] struct {
	Slug  string
	Value V
}

// MissFunc computes values for the subset of requested keys that were not
// found (or were stale and lost the refresh race) in the cache.
type MissFunc[V any] func(ctx context.Context, missingKeys []string) (map[string]MissResult[V], error)

// GetCachedKeys resolves keys (each either a canonical id or a slug) to
// values, following spec.md §4.2's four-step algorithm: resolve slugs to
// ids, MGET candidates, treat stale entries as lock-on-miss candidates, and
// call missFn for anything still unresolved.
func GetCachedKeys[V any](ctx context.Context, f *Fabric, namespace, slugNamespace string, caseSensitive bool, keys []string, missFn MissFunc[V]) (map[string]V, error) {
	result := make(map[string]V, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	// Step 1: resolve slugs to canonical ids via MGET on the slug namespace.
	canonical := make([]string, len(keys)) // canonical[i] is the id to use for keys[i]
	if slugNamespace != "" {
		slugKeys := make([]string, len(keys))
		for i, k := range keys {
			slugKeys[i] = slugKey(slugNamespace, k, caseSensitive)
		}
		resolved, err := f.rdb.MGet(ctx, slugKeys...).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("cache: resolve slugs: %w", err)
		}
		for i := range keys {
			if i < len(resolved) {
				if s, ok := resolved[i].(string); ok && s != "" {
					canonical[i] = s
					continue
				}
			}
			canonical[i] = keys[i]
		}
	} else {
		copy(canonical, keys)
	}

	// Step 2: MGET all candidate value keys.
	valKeys := make([]string, len(canonical))
	for i, id := range canonical {
		valKeys[i] = valueKey(namespace, id)
	}
	raw, err := f.rdb.MGet(ctx, valKeys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: mget: %w", err)
	}

	missing := make([]string, 0)
	staleWinners := make(map[string]bool) // canonical id -> this caller won the refresh lock

	for i, id := range canonical {
		var raw0 any
		if i < len(raw) {
			raw0 = raw[i]
		}
		s, ok := raw0.(string)
		if !ok || s == "" {
			missing = append(missing, keys[i])
			continue
		}
		var env envelope[V]
		if err := json.Unmarshal([]byte(s), &env); err != nil {
			missing = append(missing, keys[i])
			continue
		}

		// Step 3: staleness check + lock-on-miss.
		if time.Since(env.IAT) > ActualExpiry {
			won, lockErr := f.rdb.SetNX(ctx, lockKey(namespace, id), "1", lockTTL).Result()
			if lockErr == nil && won {
				staleWinners[id] = true
				missing = append(missing, keys[i])
				continue
			}
			// Lost the race (or Redis hiccup): serve the stale value to
			// avoid dogpiling the origin.
			result[keys[i]] = env.Val
			continue
		}

		result[keys[i]] = env.Val
	}

	if len(missing) == 0 {
		return result, nil
	}

	// Step 4: compute misses and pipeline the results back.
	computed, err := missFn(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := f.rdb.Pipeline()
	now := time.Now()
	for _, k := range missing {
		mr, ok := computed[k]
		if !ok {
			continue
		}
		id := k
		// If k was a slug that resolved to nothing yet, the miss function
		// is expected to have been handed the original token and to return
		// the canonical id as mr.Slug's companion; callers key computed by
		// the same token they were given.
		vk := valueKey(namespace, id)
		env := envelope[V]{Key: vk, IAT: now, Val: mr.Value}
		if mr.Slug != "" {
			env.Alias = slugKey(slugNamespace, mr.Slug, caseSensitive)
		}
		payload, merr := json.Marshal(env)
		if merr != nil {
			continue
		}
		pipe.SetEx(ctx, vk, payload, HardTTL)
		if mr.Slug != "" && slugNamespace != "" {
			pipe.SetEx(ctx, slugKey(slugNamespace, mr.Slug, caseSensitive), id, HardTTL)
		}
		if staleWinners[id] {
			pipe.Del(ctx, lockKey(namespace, id))
		}
		result[k] = mr.Value
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: pipeline writeback: %w", err)
	}

	return result, nil
}

// Invalidate deletes the value key for id and any known slug aliases. Every
// mutation that can affect a cached projection must call this; stale reads
// are acceptable but never for a permission-affecting edit (spec.md §4.2).
func Invalidate(ctx context.Context, f *Fabric, namespace, slugNamespace string, id string, slugs ...string) error {
	keys := []string{valueKey(namespace, id)}
	for _, s := range slugs {
		if s == "" {
			continue
		}
		keys = append(keys, slugKey(slugNamespace, s, false), slugKey(slugNamespace, s, true))
	}
	if err := f.rdb.Del(ctx, keys...).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

// InvalidateMany invalidates several ids in one round trip, used after
// mutations with wide blast radius (e.g. an organization default permission
// edit touching every member project).
func InvalidateMany(ctx context.Context, f *Fabric, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = valueKey(namespace, id)
	}
	if err := f.rdb.Del(ctx, keys...).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("cache: invalidate many: %w", err)
	}
	return nil
}
