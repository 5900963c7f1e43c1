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

package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// Index wraps the external search index, one Meilisearch index holding
// every project document keyed by project id, per spec.md §4.9.
type Index struct {
	client meilisearch.ServiceManager
	name   string
}

// NewIndex connects to a Meilisearch instance at host using apiKey and
// binds to the named index, creating it if absent.
func NewIndex(ctx context.Context, host, apiKey, indexName string) (*Index, error) {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	idx := client.Index(indexName)
	if _, err := idx.FetchInfo(); err != nil {
		task, createErr := client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        indexName,
			PrimaryKey: "project_id",
		})
		if createErr != nil {
			return nil, fmt.Errorf("search: create index %q: %w", indexName, createErr)
		}
		if _, err := client.WaitForTask(task.TaskUID, meilisearch.WaitParams{}); err != nil {
			return nil, fmt.Errorf("search: wait for index creation: %w", err)
		}
	}
	return &Index{client: client, name: indexName}, nil
}

// Push upserts one project document. Per spec.md §4.9 "Index updates are
// best-effort: failures are logged but do not fail the request", so Push
// itself returns the error to the caller (typically run fire-and-forget
// from a background queue) rather than the handler blocking on it.
func (idx *Index) Push(ctx context.Context, doc Document) error {
	task, err := idx.client.Index(idx.name).AddDocuments([]Document{doc}, nil)
	if err != nil {
		return fmt.Errorf("search: push document %s: %w", doc.ProjectID, err)
	}
	if _, err := idx.client.WaitForTask(task.TaskUID, meilisearch.WaitParams{}); err != nil {
		return fmt.Errorf("search: wait for push %s: %w", doc.ProjectID, err)
	}
	return nil
}

// PushBestEffort is what a status-change handler calls: it logs failures
// instead of propagating them, per spec.md §4.9.
func (idx *Index) PushBestEffort(ctx context.Context, doc Document) {
	if err := idx.Push(ctx, doc); err != nil {
		log.Printf("search: best-effort push failed: %v", err)
	}
}

// Delete removes a project document by id when its project leaves a
// searchable status.
func (idx *Index) Delete(ctx context.Context, projectID string) error {
	task, err := idx.client.Index(idx.name).DeleteDocument(projectID)
	if err != nil {
		return fmt.Errorf("search: delete document %s: %w", projectID, err)
	}
	_, err = idx.client.WaitForTask(task.TaskUID, meilisearch.WaitParams{})
	return err
}

// DeleteBestEffort mirrors PushBestEffort for the delete path.
func (idx *Index) DeleteBestEffort(ctx context.Context, projectID string) {
	if err := idx.Delete(ctx, projectID); err != nil {
		log.Printf("search: best-effort delete failed: %v", err)
	}
}

// SearchParams is the caller-facing search request, already resolved from
// either the v3 native shape or the v2 facade's translated filters.
type SearchParams struct {
	Query   string
	Filters [][]string // OR-of-ANDs facet matrix, already in v3 key form
	Offset  int64
	Limit   int64
}

// Search executes a query against the index, building the Meilisearch
// filter expression from the OR-of-ANDs facet matrix: each inner group is
// ANDed together, and groups are ORed, matching the conventional facets[][]
// search-request shape.
func (idx *Index) Search(ctx context.Context, params SearchParams) (*meilisearch.SearchResponse, error) {
	req := &meilisearch.SearchRequest{
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if len(params.Filters) > 0 {
		req.Filter = buildFilterExpression(params.Filters)
	}
	return idx.client.Index(idx.name).Search(params.Query, req)
}

func buildFilterExpression(groups [][]string) string {
	orClauses := make([]string, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		andClauses := make([]string, len(group))
		for i, f := range group {
			andClauses[i] = facetToFilterClause(f)
		}
		orClauses = append(orClauses, "("+strings.Join(andClauses, " AND ")+")")
	}
	return strings.Join(orClauses, " OR ")
}

func facetToFilterClause(facet string) string {
	key, value, ok := strings.Cut(facet, ":")
	if !ok {
		return facet
	}
	return fmt.Sprintf("%s = %q", key, value)
}

// ForceReindex rebuilds the index from scratch using docs, an admin-only
// operation per spec.md §4.9 "A force_reindex admin route rebuilds from
// scratch." Existing documents not present in docs are dropped by
// deleting the whole index's documents before re-adding.
func (idx *Index) ForceReindex(ctx context.Context, docs []Document) error {
	deleteTask, err := idx.client.Index(idx.name).DeleteAllDocuments()
	if err != nil {
		return fmt.Errorf("search: clear index before reindex: %w", err)
	}
	if _, err := idx.client.WaitForTask(deleteTask.TaskUID, meilisearch.WaitParams{}); err != nil {
		return fmt.Errorf("search: wait for clear: %w", err)
	}

	const batchSize = 1000
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		task, err := idx.client.Index(idx.name).AddDocuments(docs[i:end], nil)
		if err != nil {
			return fmt.Errorf("search: reindex batch %d: %w", i/batchSize, err)
		}
		if _, err := idx.client.WaitForTask(task.TaskUID, meilisearch.WaitParams{}); err != nil {
			return fmt.Errorf("search: wait for reindex batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}
