package pubadmin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubadmin/client"
	"github.com/eringen/pubadmin/state"
)

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// layout fills the page chrome for the current request.
func (a *App) layout(c echo.Context, title string) Layout {
	lay := Layout{
		SiteName: a.Config.Name,
		Title:    title,
		CSRF:     CsrfToken(c),
	}
	if s, ok := CurrentSession(c); ok {
		lay.Session = s
		lay.Nav = a.nav(c.Request().URL.Path)
	}
	return lay
}

func (a *App) nav(current string) []NavItem {
	items := []NavItem{{Title: "Dashboard", Path: "/admin/"}}
	for _, p := range a.pages {
		info := p.info()
		items = append(items, NavItem{Title: info.Title, Path: info.Path})
	}
	items = append(items,
		NavItem{Title: "Images", Path: "/admin/images/"},
		NavItem{Title: "Profile", Path: "/admin/profile/"},
	)
	for i := range items {
		if items[i].Path == "/admin/" {
			items[i].Active = current == "/admin/"
			continue
		}
		items[i].Active = strings.HasPrefix(current, items[i].Path)
	}
	return items
}

// actor names the signed-in user in the activity log. The profile is loaded
// on first use; the role stands in only when the backend cannot tell who the
// user is.
func actor(ctx context.Context, ss *SessionState) string {
	p, status, _ := ss.Profile.Get()
	if status != state.Succeeded {
		loaded, err := ss.LoadProfile(ctx)
		if err != nil {
			return ss.Session.Role
		}
		p = loaded
	}
	if p.Email != "" {
		return p.Email
	}
	return ss.Session.Role
}

func (a *App) recordActivity(c echo.Context, resource, action, id string) {
	ss := sessionStateOf(c)
	if ss == nil {
		return
	}
	if err := a.Store.RecordActivity(Activity{
		Actor:    actor(c.Request().Context(), ss),
		Resource: resource,
		Action:   action,
		EntityID: id,
	}); err != nil {
		c.Logger().Errorf("record activity: %v", err)
	}
}

// refetch resynchronizes a resource after a mutation. Failures are logged;
// the list page fetches again on its own.
func (a *App) refetch(c echo.Context, name string) {
	ss := sessionStateOf(c)
	if ss == nil {
		return
	}
	err := ss.Registry.InvalidateAndRefetch(c.Request().Context(), name)
	if err != nil && !errors.Is(err, state.ErrStale) {
		c.Logger().Warnf("refetch %s: %v", name, err)
	}
}

func redirectWithMsg(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if client.IsUnauthorized(err) {
		a.expireSession(c)
		_ = redirectWithMsg(c, "/admin/login/", "Your session has expired. Sign in again.")
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// expireSession drops a session the backend no longer accepts.
func (a *App) expireSession(c echo.Context) {
	if s, ok := CurrentSession(c); ok {
		a.States.Drop(s.Token)
	}
	if err := a.newFlow(c).Logout(); err != nil {
		c.Logger().Errorf("clear session: %v", err)
	}
}
