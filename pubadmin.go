// Package pubadmin is a server-rendered admin dashboard for the content
// entities of a REST backend, built with Go, Echo, and templ.
//
// Users provide their own templates via the ViewFuncs struct (package views
// ships a default set); pubadmin handles sign-in, per-session state,
// the list and edit pages of every resource, and the local activity log.
package pubadmin

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/pubadmin/client"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Login       func(p LoginPage) templ.Component
	Dashboard   func(p DashboardPage) templ.Component
	List        func(p ListPage) templ.Component
	Form        func(p FormPage) templ.Component
	Confirm     func(p ConfirmPage) templ.Component
	Profile     func(p ProfilePage) templ.Component
	Images      func(p ImagesPage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central pubadmin application. It wires together the backend
// client, the session state stores, the local store, handlers and
// middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	API    *client.Client
	Store  *Store
	States *SessionStates
	Views  ViewFuncs

	redis        *redis.Client
	loginLimiter *LoginLimiter
	pages        []page
	customRoutes []func(*App)
	stopEviction func()
	ownsStore    bool
}

// New creates a new pubadmin App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init connects the backend client and local stores and installs middleware
// and routes. Start calls it; tests call it directly and serve a.Echo.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	api, err := client.New(a.Config.APIBaseURL,
		client.WithHTTPClient(newBackendHTTPClient()),
		client.WithTimeout(a.Config.APITimeout),
		client.WithUserAgent("pubadmin"),
	)
	if err != nil {
		return fmt.Errorf("pubadmin: init api client: %w", err)
	}
	a.API = api

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("pubadmin: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	if a.Config.RedisURL != "" {
		rdb, err := newRedisClient(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("pubadmin: init redis: %w", err)
		}
		a.redis = rdb
	}

	a.States = NewSessionStates(a.API, a.Config.StateTTL)
	interval := a.Config.StateTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	a.stopEviction = a.States.StartEviction(interval)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("pubadmin listening on %s, backend %s", a.Config.Addr, a.Config.APIBaseURL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newBackendHTTPClient keeps a pool of connections to the content backend,
// which every page request calls at least once.
func newBackendHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func newRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/admin.css", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets)))))
	e.Static("/public", a.Config.StaticDir)
	e.GET("/healthz", handleHealth)
	e.GET("/", handleRootRedirect)

	e.GET("/admin/login/", a.handleLoginPage)
	e.POST("/admin/login/", a.handleLogin)
	e.POST("/admin/logout/", a.handleLogout)

	g := e.Group("/admin", a.requireSession)
	g.GET("/", a.handleDashboard)
	g.GET("/profile/", a.handleProfile)
	g.GET("/images/", a.handleImageList)
	g.POST("/images/", a.handleImageUpload)
	g.POST("/images/:filename/delete/", a.handleImageDelete)

	a.pages = a.resourcePages()
	for _, p := range a.pages {
		p.register(g)
	}
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopEviction != nil {
		a.stopEviction()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
