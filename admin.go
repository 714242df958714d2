package pubadmin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubadmin/auth"
	"github.com/eringen/pubadmin/client"
	"github.com/eringen/pubadmin/form"
)

var loginFields = []form.Field{
	{Name: "email", Label: "Email", Kind: form.Email, Required: true, MaxLen: 254},
	{Name: "password", Label: "Password", Kind: form.Text, Required: true, MaxLen: 256},
}

const deniedMessage = "This account is not allowed to use the dashboard."

func (a *App) handleLoginPage(c echo.Context) error {
	if s, _ := a.newFlow(c).Restore(); s.Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	lay := a.layout(c, "Sign in")
	lay.Flash = c.QueryParam("msg")
	return Render(c, a.Views.Login(LoginPage{Layout: lay}))
}

func (a *App) renderLogin(c echo.Context, code int, email, errMsg string, errs form.Errors) error {
	lay := a.layout(c, "Sign in")
	lay.Error = errMsg
	return RenderStatus(c, code, a.Views.Login(LoginPage{Layout: lay, Email: email, Errors: errs}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		wait := a.loginLimiter.RetryAfter(ip)
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)+1))
		return a.renderLogin(c, http.StatusTooManyRequests, "", "Too many login attempts. Try again later.", nil)
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}
	email := strings.TrimSpace(values.Get("email"))
	if errs := form.Validate(loginFields, values, nil); len(errs) > 0 {
		return a.renderLogin(c, http.StatusUnprocessableEntity, email, "", errs)
	}

	flow := a.newFlow(c)
	s, err := flow.Login(c.Request().Context(), email, values.Get("password"))
	if err != nil {
		a.loginLimiter.Record(ip)
		switch {
		case errors.Is(err, auth.ErrRoleNotAllowed):
			c.Logger().Warnf("login denied for %s: %v", email, err)
			return a.renderLogin(c, http.StatusForbidden, email, deniedMessage, nil)
		case errors.Is(err, client.ErrTransport):
			c.Logger().Errorf("login: %v", err)
			return a.renderLogin(c, http.StatusBadGateway, email, client.Message(err), nil)
		case errors.Is(err, auth.ErrMissingToken):
			c.Logger().Errorf("login: %v", err)
			return a.renderLogin(c, http.StatusBadGateway, email, "The server did not issue a session.", nil)
		}
		var se *client.ServerError
		if errors.As(err, &se) && se.Status < 500 {
			return a.renderLogin(c, http.StatusUnauthorized, email, "Invalid email or password.", nil)
		}
		c.Logger().Errorf("login: %v", err)
		return a.renderLogin(c, http.StatusBadGateway, email, client.Message(err), nil)
	}

	a.loginLimiter.Reset(ip)
	c.Logger().Infof("login: %s signed in as %s", email, s.Role)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleLogout(c echo.Context) error {
	flow := a.newFlow(c)
	if s, _ := flow.Restore(); s.Token != "" {
		a.States.Drop(s.Token)
	}
	if err := flow.Logout(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login/")
}

func (a *App) handleDashboard(c echo.Context) error {
	ss := sessionStateOf(c)
	lay := a.layout(c, "Dashboard")
	lay.Flash = c.QueryParam("msg")

	profile, err := ss.LoadProfile(c.Request().Context())
	if err != nil {
		if client.IsUnauthorized(err) {
			return err
		}
		c.Logger().Warnf("fetch profile: %v", err)
		profile, _, _ = ss.Profile.Get()
	}

	summaries := make([]ResourceSummary, 0, len(a.pages))
	for _, p := range a.pages {
		summaries = append(summaries, p.summary(ss))
	}

	activity, err := a.Store.RecentActivity(15)
	if err != nil {
		return err
	}

	return Render(c, a.Views.Dashboard(DashboardPage{
		Layout:    lay,
		Profile:   profile,
		Resources: summaries,
		Activity:  activity,
	}))
}

func (a *App) handleProfile(c echo.Context) error {
	ss := sessionStateOf(c)
	lay := a.layout(c, "Profile")
	profile, err := ss.LoadProfile(c.Request().Context())
	if err != nil {
		if client.IsUnauthorized(err) {
			return err
		}
		c.Logger().Errorf("fetch profile: %v", err)
		lay.Error = client.Message(err)
		profile, _, _ = ss.Profile.Get()
	}
	return Render(c, a.Views.Profile(ProfilePage{Layout: lay, Profile: profile}))
}
