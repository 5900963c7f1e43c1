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

// Package db wraps a pgxpool.Pool the way model packages need it: a bounded
// pool (spec.md §5 "Postgres pool (bounded, configurable max)"), a 10s
// per-statement deadline, and one helper (ScanMany) so every "fetch list of
// rows via ANY($1::bigint[])" call site shares the same row-collection code
// instead of hand-rolling a loop (spec.md §4.3).
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatementTimeout is the per-statement deadline from spec.md §5.
const StatementTimeout = 10 * time.Second

// Pool is the handle every model/lifecycle package receives on a
// RequestContext, replacing the teacher's single *storage.Storage handle
// with a relational pool per DESIGN.md's "dropped dependencies" entry.
type Pool struct {
	*pgxpool.Pool
}

// Open connects to Postgres using connString (spec.md's DATABASE_URL).
func Open(ctx context.Context, connString string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("db: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return &Pool{pool}, nil
}

// WithStatementTimeout returns a context bounded by StatementTimeout,
// matching spec.md §5's "Postgres 10s per statement".
func WithStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, StatementTimeout)
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so model functions
// can run either standalone or inside the caller's transaction (spec.md
// §4.3: "Updates execute inside an explicit transaction opened by the
// handler").
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ScanMany runs sql with args, applying fn to every row, and returns the
// collected slice. Centralizes the "ANY($1::bigint[]) over N+1 queries"
// rule from spec.md §4.3.
func ScanMany[T any](ctx context.Context, q Querier, sql string, fn pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, fn)
}
