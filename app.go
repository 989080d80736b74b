package vidlists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"vidlists/catalog"
	"vidlists/config"
	vlhttp "vidlists/http"
	"vidlists/internal/metrics"
	"vidlists/playlist"
	"vidlists/search"
	"vidlists/storage"
)

// App owns the catalog cache, the search index and the playlist store for one
// process. Open it at startup and Close it at shutdown.
//
// The cache and index are safe for concurrent use. Users returned by User are
// not: keep one writer per user.
type App struct {
	logger  *slog.Logger
	client  *vlhttp.Client
	cache   *catalog.Cache
	index   *search.Index
	store   storage.Store
	users   *playlist.Users
	metrics *metrics.Metrics

	// indexed is set once the index has been built from any fetch, even an
	// empty one.
	indexed atomic.Bool
}

// Deps are the collaborators New wires together.
type Deps struct {
	Fetcher catalog.Fetcher
	Store   storage.Store
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// NewID defaults to human-readable ids.
	NewID playlist.IDFunc
	// Metrics defaults to a fresh registry.
	Metrics *metrics.Metrics
}

// New builds an App from ready-made collaborators. The App takes ownership of
// d.Store and closes it in Close.
func New(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	store := m.InstrumentStore(d.Store)
	return &App{
		logger:  logger,
		cache:   catalog.NewCache(d.Fetcher, logger.With(slog.String("component", "catalog"))),
		index:   search.NewIndex(),
		store:   store,
		users:   playlist.NewUsers(store, d.NewID, logger.With(slog.String("component", "playlist"))),
		metrics: m,
	}
}

// Open builds the HTTP client, catalog fetcher and store described by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpCfg := vlhttp.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.UserAgent = cfg.UserAgent
	httpCfg.RateLimiter.RequestsPerSecond = cfg.RequestsPerSecond
	client := vlhttp.New(httpCfg)

	store, err := storage.Open(ctx, StoreOptions(cfg))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	logger.Debug("store opened", slog.String("driver", cfg.StoreDriver))

	app := New(Deps{
		Fetcher: catalog.NewAPIFetcher(client, cfg.CatalogURL),
		Store:   store,
		Logger:  logger,
	})
	app.client = client
	return app, nil
}

// StoreOptions maps configuration onto storage options.
func StoreOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Driver:         cfg.StoreDriver,
		Path:           cfg.StorePath,
		SQLitePoolSize: cfg.SQLitePoolSize,
		RedisURL:       cfg.RedisURL,
		RedisKeyPrefix: cfg.RedisKeyPrefix,
		PostgresDSN:    cfg.PostgresDSN,
	}
}

// Close releases the store and idle upstream connections.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	return errors.Join(errs...)
}

// Catalog returns the catalog cache.
func (a *App) Catalog() *catalog.Cache { return a.cache }

// Index returns the search index.
func (a *App) Index() *search.Index { return a.index }

// Users returns the user service.
func (a *App) Users() *playlist.Users { return a.users }

// Metrics returns the App's counters.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Refresh re-reads the whole catalog and rebuilds the index from it.
func (a *App) Refresh(ctx context.Context) ([]*catalog.Video, error) {
	videos, err := a.cache.FetchAll(ctx)
	a.metrics.ObserveFetch("all", err)
	if err != nil {
		return nil, err
	}
	a.index.Rebuild(videos)
	a.indexed.Store(true)
	a.metrics.SetCatalogSize(a.cache.Len())
	a.logger.Info("index rebuilt",
		slog.Int("videos", len(videos)),
		slog.Int("tokens", a.index.Len()))
	return videos, nil
}

// LoadPage fetches one catalog page, merges it into the cache and adds it to the index.
func (a *App) LoadPage(ctx context.Context, page int) ([]*catalog.Video, error) {
	videos, err := a.cache.FetchPage(ctx, page)
	a.metrics.ObserveFetch("page", err)
	if err != nil {
		return nil, err
	}
	a.index.Build(videos)
	a.indexed.Store(true)
	a.metrics.SetCatalogSize(a.cache.Len())
	return videos, nil
}

// Search runs query against the index. A never-built index is filled first:
// from the cache if it was populated, otherwise by a full Refresh.
func (a *App) Search(ctx context.Context, query string) (search.Result, error) {
	if !a.indexed.Load() {
		if a.cache.Populated() {
			a.index.Build(a.cache.Videos())
			a.indexed.Store(true)
		} else if _, err := a.Refresh(ctx); err != nil {
			return search.Result{}, err
		}
	}
	res := a.index.Search(query)
	a.metrics.ObserveSearch(len(res.Videos))
	a.logger.Debug("search",
		slog.String("query", query),
		slog.Any("keywords", res.Keywords),
		slog.Int("results", len(res.Videos)))
	return res, nil
}

// Video returns one catalog video. A catalog that was never loaded is fetched
// with Refresh first, so the index and metrics see that fetch too.
func (a *App) Video(ctx context.Context, id int64) (*catalog.Video, error) {
	if !a.cache.Populated() {
		if _, err := a.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return a.cache.GetVideo(ctx, id)
}

// User loads or creates the user with the given id.
func (a *App) User(ctx context.Context, id string) (*User, error) {
	return a.users.Load(ctx, id)
}

// NewUserID returns a fresh user id.
func (a *App) NewUserID() string { return a.users.NewUserID() }

// NewPlaylist creates an unowned playlist holding the selected videos.
func (a *App) NewPlaylist(name string, videoIDs []int64) *Playlist {
	return a.users.NewPlaylist(name, videoIDs)
}

// PlaylistVideos resolves each entry of p against the catalog. See
// playlist.Playlist.EachVideo for how missing videos are reported.
func (a *App) PlaylistVideos(ctx context.Context, p *Playlist, fn func(playlist.Entry) error) error {
	return p.EachVideo(ctx, appResolver{a}, fn)
}

// appResolver resolves playlist entries through App.Video.
type appResolver struct{ app *App }

func (r appResolver) GetVideo(ctx context.Context, id int64) (*catalog.Video, error) {
	return r.app.Video(ctx, id)
}

// Convenience aliases for the main domain types.
type (
	Video    = catalog.Video
	User     = playlist.User
	Playlist = playlist.Playlist
)
