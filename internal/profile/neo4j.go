// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// connectTimeout bounds the connectivity check in NewNeo4j.
const connectTimeout = 10 * time.Second

// watchedQuery reads a user's most recent watches. Genres are stored as the
// catalog's genre ids, either as strings or as integers.
const watchedQuery = `
MATCH (:User {id: $userId})-[w:WATCHED]->(m:Movie)
RETURN m.id AS id, m.title AS title, coalesce(m.genres, []) AS genres, w.rating AS rating
ORDER BY w.watched_at DESC
LIMIT $limit`

// queryRunner executes one read-only Cypher statement and buffers its records.
type queryRunner func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error)

// Neo4jStore reads watch histories from a graph of
// (:User {id})-[:WATCHED {rating, watched_at}]->(:Movie {id, title, genres}).
// The graph is owned and written by another service; the store never writes.
type Neo4jStore struct {
	driver       neo4j.DriverWithContext
	run          queryRunner
	queryTimeout time.Duration
	maxHistory   int
	logger       zerolog.Logger
}

var _ recommend.TasteProfile = (*Neo4jStore)(nil)

// NewNeo4j connects to Neo4j and verifies connectivity.
func NewNeo4j(ctx context.Context, cfg *config.Neo4jConfig, logger zerolog.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	store := newNeo4jStore(driverRunner(driver, cfg.Database), cfg, logger)
	store.driver = driver
	store.logger.Info().Str("uri", cfg.URI).Str("database", cfg.Database).Msg("Connected to Neo4j")
	return store, nil
}

func newNeo4jStore(run queryRunner, cfg *config.Neo4jConfig, logger zerolog.Logger) *Neo4jStore {
	return &Neo4jStore{
		run:          run,
		queryTimeout: cfg.QueryTimeout,
		maxHistory:   cfg.MaxHistory,
		logger:       logger.With().Str("component", "profile").Str("backend", "neo4j").Logger(),
	}
}

func driverRunner(driver neo4j.DriverWithContext, database string) queryRunner {
	return func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
		return neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(database),
			neo4j.ExecuteQueryWithReadersRouting())
	}
}

// Close releases the driver. It is a no-op for stores without one.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

// WatchedMovies returns up to MaxHistory of the user's most recent watches.
// Rows that cannot be mapped are skipped and logged.
func (s *Neo4jStore) WatchedMovies(ctx context.Context, userID string) ([]recommend.WatchedEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.run(ctx, watchedQuery, map[string]any{
		"userId": userID,
		"limit":  int64(s.maxHistory),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read watch history: %w", err)
	}

	entries := make([]recommend.WatchedEntry, 0, len(res.Records))
	for _, record := range res.Records {
		entry, err := entryFromRecord(record)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Skipping malformed watch record")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Neo4jStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// entryFromRecord maps one row of watchedQuery.
func entryFromRecord(record *neo4j.Record) (recommend.WatchedEntry, error) {
	m := record.AsMap()

	id, ok := m["id"].(int64)
	if !ok {
		return recommend.WatchedEntry{}, fmt.Errorf("movie id has type %T, want integer", m["id"])
	}
	title, _ := m["title"].(string)

	entry := recommend.WatchedEntry{ID: int(id), Title: title}

	if raw, ok := m["genres"].([]any); ok {
		for _, g := range raw {
			switch v := g.(type) {
			case string:
				entry.Genres = append(entry.Genres, v)
			case int64:
				entry.Genres = append(entry.Genres, strconv.FormatInt(v, 10))
			}
		}
	}

	switch v := m["rating"].(type) {
	case float64:
		entry.Rating = &v
	case int64:
		f := float64(v)
		entry.Rating = &f
	case nil:
	default:
		return recommend.WatchedEntry{}, fmt.Errorf("rating has type %T, want number", v)
	}
	return entry, nil
}
