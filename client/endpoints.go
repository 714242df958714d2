package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eringen/pubadmin/auth"
	"github.com/eringen/pubadmin/content"
)

func (c *Client) FAQs() *Resource[content.FAQ] {
	return NewResource[content.FAQ](c, "faq", RESTPaths("/faq"), "faqs", "faq")
}

func (c *Client) Quotes() *Resource[content.Quote] {
	return NewResource[content.Quote](c, "quote", RESTPaths("/quote"), "quotes", "quote")
}

// Policies returns the policy documents of one type. Listing is scoped to
// the type; writes go to the shared /policy endpoints.
func (c *Client) Policies(policyType string) *Resource[content.Policy] {
	item := func(id string) string { return "/policy/" + url.PathEscape(id) }
	return NewResource[content.Policy](c, "policy/"+policyType, Paths{
		List:   "/policy/" + url.PathEscape(policyType),
		Create: "/policy",
		Update: item,
		Delete: item,
	}, "policies", "policy")
}

func (c *Client) SocialMedia() *Resource[content.SocialMedia] {
	return NewResource[content.SocialMedia](c, "socialmedia", RESTPaths("/socialmedia"), "socialmedia", "socialMedia")
}

func (c *Client) Subscribers() *Resource[content.Subscriber] {
	return NewResource[content.Subscriber](c, "subscribers", Paths{List: "/subscribers"}, "subscribers")
}

func (c *Client) Registrations() *Resource[content.Registration] {
	return NewResource[content.Registration](c, "registrations", Paths{List: "/users"}, "users")
}

func (c *Client) Speakers() *Resource[content.Speaker] {
	return NewResource[content.Speaker](c, "speakers", Paths{
		List:   "/support-speaker",
		Create: "/support-speaker",
		Update: func(id string) string { return "/support-speaker/update/" + url.PathEscape(id) },
		Delete: func(id string) string { return "/support-speaker/delete/" + url.PathEscape(id) },
	}, "speakers", "supportSpeakers", "speaker")
}

func (c *Client) Events() *Resource[content.Event] {
	return NewResource[content.Event](c, "events", RESTPaths("/event"), "events", "event")
}

// Me returns the profile of the session's user.
func (c *Client) Me(ctx context.Context, s auth.Session) (content.Profile, error) {
	var p content.Profile
	err := c.do(ctx, http.MethodGet, "/user/me", s.Token, nil, &p, []string{"user", "profile"})
	return p, err
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	User        *struct {
		Role string `json:"role"`
	} `json:"user"`
}

// Login exchanges credentials for a token and role. It implements
// auth.Authenticator; the role check is left to the caller.
func (c *Client) Login(ctx context.Context, email, password string) (auth.Credentials, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp, nil); err != nil {
		return auth.Credentials{}, err
	}
	creds := auth.Credentials{Token: resp.Token, Role: resp.Role}
	if creds.Token == "" {
		creds.Token = resp.AccessToken
	}
	if creds.Role == "" && resp.User != nil {
		creds.Role = resp.User.Role
	}
	return creds, nil
}
