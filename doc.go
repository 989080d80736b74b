// Package vidlists is a personal video-playlist manager over a remote,
// paginated video catalog.
//
// # Overview
//
// An App ties together four pieces:
//
//   - catalog: a process-lifetime cache of the upstream catalog
//   - search: a keyword index over video titles with nearest-token matching
//   - storage: a durable key/value store holding one snapshot per user
//   - playlist: users, their playlist collections and the playlists
//
// Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	app, err := vidlists.Open(ctx, cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer app.Close()
//
//	res, err := app.Search(ctx, "go tutorial")
//	for _, v := range res.Videos {
//		fmt.Println(v.ID, v.Title)
//	}
//
//	user, err := app.User(ctx, "nine-alpha-oxygen-mango-7f3a9c1e")
//	p := app.NewPlaylist("Later", []int64{res.Videos[0].ID})
//	err = user.Playlists().Add(ctx, p)
//
// # Persistence
//
// Every playlist mutation saves the owning user's whole snapshot before it
// returns. There is no batching and no rollback: if the save fails the
// in-memory change stays and the error is returned.
//
// # Configuration
//
// Settings are loaded from defaults, then vidlists.json (current directory or
// ~/.config/vidlists/), then a .env file, then the environment. Environment
// variables use the VIDLISTS_ prefix, for example:
//
//   - VIDLISTS_CATALOG_URL: upstream catalog endpoint
//   - VIDLISTS_HTTP_TIMEOUT: per-request timeout
//   - VIDLISTS_REQUESTS_PER_SECOND: upstream rate limit (0 = unlimited)
//   - VIDLISTS_STORE_DRIVER: json, sqlite, redis or postgres
//   - VIDLISTS_STORE_PATH: data file for json and sqlite
//   - VIDLISTS_REDIS_URL, VIDLISTS_POSTGRES_DSN: server backends
//   - VIDLISTS_LOG_LEVEL, VIDLISTS_LOG_FORMAT: logging
//   - VIDLISTS_METRICS_FILE: Prometheus text dump written by the CLI
//
// # Error Handling
//
// Upstream failures are never retried. Use errors.Is with the sentinels
// re-exported here, or IsTransient to decide whether a retry may help:
//
//	if errors.Is(err, vidlists.ErrUpstreamUnavailable) {
//		fmt.Println("catalog unreachable")
//	}
//
//	var idxErr *vidlists.IndexError
//	if errors.As(err, &idxErr) {
//		fmt.Printf("position %d out of %d\n", idxErr.Index, idxErr.Len)
//	}
package vidlists
