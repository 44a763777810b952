package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/facturo"
	"github.com/lborres/facturo/internal/logging"
	"github.com/lborres/facturo/services"
)

type Adapter struct {
	app           *fiber.App
	facturo       *facturo.App
	logger        logging.Logger
	secureCookies bool
}

var _ facturo.HTTPAdapter = (*Adapter)(nil)

// DefaultBodyLimit bounds request bodies when no limit is configured.
// Avatars are stored inline as data URIs, so it sits well above fiber's
// 4 MB default.
const DefaultBodyLimit = 64 << 20

// AppConfig returns the fiber settings the routes rely on: the JSON error
// handler and a body limit large enough for inline avatars.
func AppConfig(bodyLimit int) fiber.Config {
	if bodyLimit <= 0 {
		bodyLimit = DefaultBodyLimit
	}
	return fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
	}
}

type Option func(*Adapter)

// WithSecureCookies marks the session cookie Secure (HTTPS only).
func WithSecureCookies(secure bool) Option {
	return func(a *Adapter) { a.secureCookies = secure }
}

func New(app *fiber.App, opts ...Option) *Adapter {
	a := &Adapter{app: app}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes mounts every registry endpoint, binding handlers by
// operation ID. Protected endpoints run behind requireSession.
func (a *Adapter) RegisterRoutes(app *facturo.App) error {
	a.facturo = app
	a.logger = app.Logger
	if a.logger == nil {
		a.logger = logging.Nop()
	}

	a.app.Use(requestid.New())
	a.app.Use(recoverer.New())

	handlers := map[string]fiber.Handler{
		services.OpSignUp:         a.signUp,
		services.OpSignIn:         a.signIn,
		services.OpSignOut:        a.signOut,
		services.OpGetSession:     a.session,
		services.OpListSessions:   a.listSessions,
		services.OpRevokeSession:  a.revokeSession,
		services.OpGetProfile:     a.getProfile,
		services.OpUpdateProfile:  a.updateProfile,
		services.OpChangePassword: a.changePassword,
		services.OpDeleteAccount:  a.deleteAccount,
		services.OpDashboard:      a.dashboard,
		services.OpHealth:         a.health,
	}

	for _, ep := range app.Endpoints.Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no fiber handler for operation %q (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}

		if ep.Protected {
			a.app.Add([]string{ep.Method}, ep.Path, a.requireSession, h)
		} else {
			a.app.Add([]string{ep.Method}, ep.Path, h)
		}
	}

	return nil
}
