package facturo

import (
	"context"
	"fmt"
	"time"

	"github.com/lborres/facturo/core"
	"github.com/lborres/facturo/internal/logging"
	"github.com/lborres/facturo/pkg/cache"
	"github.com/lborres/facturo/pkg/crypto"
	"github.com/lborres/facturo/services"
)

// interfaces
type (
	AuthStorage     = core.AuthStorage
	Cache           = core.Cache
	PasswordHandler = crypto.PasswordHandler
	Logger          = logging.Logger
)

// structs
type (
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	Identity      = core.Identity
	User          = core.User
	Account       = core.Account
	Session       = core.Session
	SessionData   = core.SessionData
	Profile       = core.Profile
)

const (
	defaultSecretLen = 32
)

var (
	ErrUnauthorized    = core.ErrUnauthorized
	ErrUserNotFound    = core.ErrUserNotFound
	ErrSessionNotFound = core.ErrSessionNotFound
	ErrSessionExpired  = core.ErrSessionExpired
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

// HTTPAdapter mounts the endpoints of an App onto a web framework.
type HTTPAdapter interface {
	RegisterRoutes(app *App) error
}

type Config struct {
	// Secret keys the session token hash. At least 32 characters.
	Secret string

	Database AuthStorage
	HTTP     HTTPAdapter

	// CacheAdapter overrides the default in-memory session cache.
	CacheAdapter Cache
	DisableCache bool
	CacheConfig  *CacheConfig

	SessionConfig  *SessionConfig
	PasswordHasher PasswordHandler
	Logger         Logger
}

// App holds the wired services. HTTP adapters read their handlers' collaborators from it.
type App struct {
	Auth      *services.AuthService
	Profile   *services.ProfileService
	Dashboard *services.DashboardService
	Sessions  *services.SessionManager
	Endpoints *services.EndpointRegistry
	Cache     Cache
	Logger    Logger
}

func New(config Config) (*App, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheConfig := CacheConfig{TTL: core.DefaultCacheTTL, MaxSize: core.DefaultCacheMaxSize}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		cacheAdapter = cache.NewInMemoryCache(cacheConfig)
	}
	if config.DisableCache {
		cacheAdapter = nil
	}

	sessionConfig := core.DefaultSessionConfig()
	if config.SessionConfig != nil {
		sessionConfig = *config.SessionConfig
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewMulti(crypto.NewBcrypt())
	}

	sessions := services.NewSessionManager(sessionConfig, config.Database, cacheAdapter, crypto.NewTokenHasher(config.Secret))

	app := &App{
		Auth:      services.NewAuthService(config.Database, sessions, passwordHasher, logger),
		Profile:   services.NewProfileService(config.Database, sessions, passwordHasher, logger),
		Dashboard: services.NewDashboardService(),
		Sessions:  sessions,
		Endpoints: services.NewEndpointRegistry(),
		Cache:     cacheAdapter,
		Logger:    logger,
	}

	if err := config.HTTP.RegisterRoutes(app); err != nil {
		return nil, err
	}

	return app, nil
}

// RunSessionCleanup deletes expired sessions every interval until ctx is done.
func (a *App) RunSessionCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.sweepSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sweepSessions runs one cleanup pass and reports session cache counters.
func (a *App) sweepSessions(ctx context.Context) {
	n, err := a.Sessions.Cleanup(ctx)
	if err != nil {
		a.Logger.Error(ctx, "session cleanup failed", "error", err)
	} else if n > 0 {
		a.Logger.Debug(ctx, "expired sessions removed", "count", n)
	}

	if c, ok := a.Cache.(core.CacheWithStats); ok {
		st := c.Stats()
		a.Logger.Debug(ctx, "session cache stats",
			"hits", st.Hits,
			"misses", st.Misses,
			"sets", st.Sets,
			"deletes", st.Deletes,
			"evictions", st.Evictions,
			"size", st.Size,
		)
	}
}
