// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package config loads and validates application configuration.

Configuration is layered with Koanf v2: struct defaults, an optional YAML file
(config.yaml, or the file named by CONFIG_PATH), an optional .env file read
with godotenv (or the file named by DOTENV_PATH), then environment variables.
Only mapped environment variables are read; see envMappings.

Minimal environment:

	TMDB_API_KEY=...        # required
	OMDB_API_KEY=...        # required
	YOUTUBE_API_KEY=...     # optional; trailers fall back to search links
	PROFILE_BACKEND=neo4j   # optional; default "static" (no watch history)
	NEO4J_URI=neo4j+s://xxxx.databases.neo4j.io
	NEO4J_USERNAME=neo4j
	NEO4J_PASSWORD=...

Equivalent YAML:

	catalog:
	  tmdb:
	    api_key: "..."
	  omdb:
	    api_key: "..."
	cache:
	  policy: lru
	  metadata_capacity: 2048
	recommend:
	  weights:
	    diversity_penalty: 0.9
	  limits:
	    max_favorites: 6
*/
package config
