// Package content defines the records managed through the admin dashboard.
// Every record carries a server-assigned identifier that never changes once
// the backend has issued it.
package content

// FAQ is a question/answer pair shown on the public site.
type FAQ struct {
	ID       string `json:"_id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (f FAQ) Key() string { return f.ID }

// Quote is a short citation with its author.
type Quote struct {
	ID     string `json:"_id,omitempty"`
	Text   string `json:"quote"`
	Author string `json:"author"`
}

func (q Quote) Key() string { return q.ID }

// Policy types the backend serves under /policy/{type}.
const (
	PolicyPrivacy = "privacy"
	PolicyTerms   = "terms"
	PolicyRefund  = "refund"
)

// PolicyTypes lists policy types in navigation order.
var PolicyTypes = []string{PolicyPrivacy, PolicyTerms, PolicyRefund}

// Policy is a legal document. Content is Markdown.
type Policy struct {
	ID      string `json:"_id,omitempty"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p Policy) Key() string { return p.ID }

// Subscriber is a newsletter sign-up. The dashboard only lists them.
type Subscriber struct {
	ID        string `json:"_id,omitempty"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (s Subscriber) Key() string { return s.ID }

// Registration is a registered site user as returned by /users.
type Registration struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (r Registration) Key() string { return r.ID }

// Speaker is a support speaker profile.
type Speaker struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (s Speaker) Key() string { return s.ID }

// Event is a scheduled event with a banner and an image gallery.
type Event struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Banner      string   `json:"banner"`
	Images      []string `json:"images"`
}

func (e Event) Key() string { return e.ID }

// Profile is the signed-in admin as reported by /user/me.
type Profile struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
}

func (p Profile) Key() string { return p.ID }
