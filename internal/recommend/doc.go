// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package recommend turns a handful of weak taste signals into a short,
// diversified list of movies backed by live catalog data.
//
// # Pipeline
//
// A request flows through three stages, each consuming the previous stage's
// output:
//
//   - Aggregator.DiscoverCandidates fans out to the movie catalog (broad
//     discovery, per-favorite search with "recommendations" and "similar"
//     follow-ups, trending as a cold-start fallback) and merges the results
//     into one score-accumulating candidate set keyed by movie id.
//   - Scorer.SelectTopCandidates adds personalization and quality boosts,
//     a seeded tie-break, removes watched titles and runs a greedy selection
//     that penalizes genres already picked.
//   - Enricher.EnrichWithMetadata drops titles the metadata catalog does not
//     know, then Enricher.EnrichWithTrailer attaches a trailer reference with
//     a search-link fallback.
//
// Recommender runs the stages end to end and Session supersedes an in-flight
// request when a newer one arrives for the same user.
//
// # Failure Model
//
// Ordinary upstream failures are absorbed per sub-query: they are logged,
// counted, and the stage continues with whatever succeeded. Cancellation of
// the request context is the only error that crosses a stage boundary; it is
// always returned wrapped in ErrCancelled and never logged as a failure.
//
// # Determinism
//
// With a seed, the same candidates, context and watch history always produce
// the same ordered output. Aggregation merges sub-query results in a fixed
// slot order after every sub-query has finished, so completion order never
// affects floating point accumulation.
//
// # Usage
//
//	rec := recommend.NewRecommender(recommend.Dependencies{...}, cfg, logger)
//	res, err := rec.Recommend(ctx, recommend.Request{
//	    SelectedGenres: []string{"28"},
//	    FavoriteTitles: []string{"Mad Max"},
//	    MaxCount:       5,
//	})
package recommend
