// Package views is the default set of dashboard templates. Pages are
// html/template files rendered as templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubadmin"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"initial": func(s string) string {
		if s == "" {
			return "?"
		}
		return strings.ToUpper(s[:1])
	},
}

// page parses the layout together with one page template.
func page(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name))
}

var (
	loginTmpl     = page("login.html")
	dashboardTmpl = page("dashboard.html")
	listTmpl      = page("list.html")
	formTmpl      = page("form.html")
	confirmTmpl   = page("confirm.html")
	profileTmpl   = page("profile.html")
	imagesTmpl    = page("images.html")
	notFoundTmpl  = page("notfound.html")
	errorTmpl     = page("error.html")
)

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout.html", data)
	})
}

// Default returns the view functions backed by the embedded templates.
func Default() pubadmin.ViewFuncs {
	return pubadmin.ViewFuncs{
		Login:     func(p pubadmin.LoginPage) templ.Component { return component(loginTmpl, p) },
		Dashboard: func(p pubadmin.DashboardPage) templ.Component { return component(dashboardTmpl, p) },
		List:      func(p pubadmin.ListPage) templ.Component { return component(listTmpl, p) },
		Form:      func(p pubadmin.FormPage) templ.Component { return component(formTmpl, p) },
		Confirm:   func(p pubadmin.ConfirmPage) templ.Component { return component(confirmTmpl, p) },
		Profile:   func(p pubadmin.ProfilePage) templ.Component { return component(profileTmpl, p) },
		Images:    func(p pubadmin.ImagesPage) templ.Component { return component(imagesTmpl, p) },
		NotFound: func() templ.Component {
			return component(notFoundTmpl, pubadmin.Layout{Title: "Not found"})
		},
		ServerError: func() templ.Component {
			return component(errorTmpl, pubadmin.Layout{Title: "Something went wrong"})
		},
	}
}
