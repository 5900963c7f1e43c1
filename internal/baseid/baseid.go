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

// Package baseid implements the opaque id allocator and base62 codec
// described in spec.md §4.1: ids are drawn from a type-specific bit
// length, checked against the database for collision, and retried.
package baseid

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// RandomIdError is returned when id allocation exhausts its retry budget.
type RandomIdError struct {
	Attempts int
}

func (e *RandomIdError) Error() string {
	return fmt.Sprintf("failed to generate a unique id after %d attempts", e.Attempts)
}

// Encode renders n as a base62 string with no leading zero digits (other
// than "0" itself for n == 0).
func Encode(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [11]byte // ceil(64 / log2(62)) == 11
	i := len(buf)
	base := uint64(len(alphabet))
	for n > 0 {
		i--
		buf[i] = alphabet[n%base]
		n /= base
	}
	return string(buf[i:])
}

// Decode parses a canonical base62 string back into its numeric value. It
// fails on any non-alphanumeric rune or on overflow of a 64-bit value.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("baseid: empty string")
	}
	var n uint64
	base := uint64(len(alphabet))
	for _, r := range s {
		idx := -1
		switch {
		case r >= '0' && r <= '9':
			idx = int(r - '0')
		case r >= 'A' && r <= 'Z':
			idx = 10 + int(r-'A')
		case r >= 'a' && r <= 'z':
			idx = 36 + int(r-'a')
		default:
			return 0, fmt.Errorf("baseid: invalid character %q", r)
		}
		next := n*base + uint64(idx)
		if next < n && n != 0 {
			return 0, fmt.Errorf("baseid: overflow decoding %q", s)
		}
		n = next
	}
	return n, nil
}

// ExistsFunc reports whether id is already taken, e.g. by querying
// `SELECT 1 FROM table WHERE id = $1`.
type ExistsFunc func(ctx context.Context, id uint64) (bool, error)

const maxAttempts = 20

// Generate64 draws a random 64-bit id (truncated to bits, matching the
// "8 base62 chars ≈ 47 bits" sizing in spec.md §4.1) and retries on
// collision up to maxAttempts times.
func Generate64(ctx context.Context, bits uint, exists ExistsFunc) (uint64, error) {
	if bits == 0 || bits > 63 {
		bits = 47
	}
	max := new(big.Int).Lsh(big.NewInt(1), bits)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return 0, fmt.Errorf("baseid: rand.Int: %w", err)
		}
		id := n.Uint64()
		if id == 0 {
			continue
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, &RandomIdError{Attempts: maxAttempts}
}

// Generate32 is Generate64 narrowed to 32-bit ids, used for category,
// loader, and status rows per spec.md §4.1.
func Generate32(ctx context.Context, exists func(ctx context.Context, id uint32) (bool, error)) (uint32, error) {
	max := new(big.Int).Lsh(big.NewInt(1), 31)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return 0, fmt.Errorf("baseid: rand.Int: %w", err)
		}
		id := uint32(n.Uint64())
		if id == 0 {
			continue
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, &RandomIdError{Attempts: maxAttempts}
}

// SlugCollidesWithID reports whether slug, if parsed as a base62 id, would
// alias some other project's numeric id — the anti-aliasing check from
// spec.md §4.6.
func SlugCollidesWithID(slug string, otherID uint64) bool {
	parsed, err := Decode(slug)
	if err != nil {
		return false
	}
	return parsed == otherID
}
