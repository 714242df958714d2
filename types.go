package pubadmin

import (
	"html/template"

	"github.com/eringen/pubadmin/auth"
	"github.com/eringen/pubadmin/content"
	"github.com/eringen/pubadmin/form"
	"github.com/eringen/pubadmin/paging"
)

// NavItem is one entry of the sidebar.
type NavItem struct {
	Title  string
	Path   string
	Active bool
}

// Layout carries what every admin page needs in its chrome.
type Layout struct {
	SiteName string
	Title    string
	CSRF     string
	Session  auth.Session
	Nav      []NavItem
	Flash    string // success notice, from ?msg=
	Error    string // inline failure notice
}

// ResourceInfo identifies a managed resource on list and dialog pages.
type ResourceInfo struct {
	Name     string // route segment, e.g. "faq" or "policy/privacy"
	Title    string
	Path     string // list URL
	ReadOnly bool
}

// Row is one record in a list table.
type Row struct {
	ID         string
	Cells      []string
	EditPath   string
	DeletePath string
}

// ListPage is the table view of a resource.
type ListPage struct {
	Layout
	Resource ResourceInfo
	Columns  []string
	Rows     []Row
	Status   string
	Stale    bool
	Page     paging.PageInfo
}

// FieldView is a form.Field with its current value and error.
type FieldView struct {
	form.Field
	Value string
	Error string
}

// FormPage is the create or update dialog of a resource.
type FormPage struct {
	Layout
	Resource  ResourceInfo
	Action    string
	Editing   bool
	Multipart bool
	Fields    []FieldView
	Preview   template.HTML
}

// ConfirmPage asks before a record is deleted.
type ConfirmPage struct {
	Layout
	Resource ResourceInfo
	ID       string
	Label    string
	Action   string
}

// ResourceSummary is the dashboard tile of one resource.
type ResourceSummary struct {
	Title  string
	Path   string
	Status string
	Count  int
	Stale  bool
}

// DashboardPage is the admin landing page.
type DashboardPage struct {
	Layout
	Profile   content.Profile
	Resources []ResourceSummary
	Activity  []Activity
}

// ProfilePage shows the signed-in user.
type ProfilePage struct {
	Layout
	Profile content.Profile
}

// ImagesPage is the image library.
type ImagesPage struct {
	Layout
	Images []Image
}

// LoginPage is the sign-in form.
type LoginPage struct {
	Layout
	Email  string
	Errors form.Errors
}
