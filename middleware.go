package pubadmin

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/eringen/pubadmin/auth"
)

const (
	sessionName   = "admin_session"
	sessionMaxAge = 60 * 60 * 12

	ctxSession = "pubadmin.session"
	ctxState   = "pubadmin.state"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; form-action 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(auth.NewCookieStore(a.Config.SessionSecret, a.Config.CookieSecure, sessionMaxAge)))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/public") || p == "/healthz" || path.Ext(p) != ""
		},
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch {
		case strings.HasPrefix(c.Request().URL.Path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		default:
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// sessionStorage returns where the session of this request is persisted.
func (a *App) sessionStorage(c echo.Context) auth.Storage {
	if a.redis != nil {
		return auth.NewRedisStorage(c, a.redis, sessionName, sessionMaxAge*time.Second)
	}
	return auth.NewCookieStorage(c, sessionName)
}

// newFlow returns the sign-in state machine bound to this request's storage.
func (a *App) newFlow(c echo.Context) *auth.Flow {
	return auth.NewFlow(a.API, a.sessionStorage(c), auth.WithTransitionHook(func(from, to auth.State) {
		c.Logger().Debugf("auth: %s -> %s", from, to)
	}))
}

// requireSession restores the session from storage and resolves its state
// store. Anonymous requests are sent to the sign-in page.
func (a *App) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := a.newFlow(c).Restore()
		if err != nil {
			c.Logger().Warnf("restore session: %v", err)
		}
		if !s.Authenticated() {
			return c.Redirect(http.StatusSeeOther, "/admin/login/")
		}
		c.Set(ctxSession, s)
		c.Set(ctxState, a.States.For(s))
		return next(c)
	}
}

// CurrentSession returns the session restored by requireSession.
func CurrentSession(c echo.Context) (auth.Session, bool) {
	s, ok := c.Get(ctxSession).(auth.Session)
	return s, ok
}

func sessionStateOf(c echo.Context) *SessionState {
	ss, _ := c.Get(ctxState).(*SessionState)
	return ss
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
