package pubadmin

import (
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubadmin/client"
	"github.com/eringen/pubadmin/form"
	"github.com/eringen/pubadmin/paging"
	"github.com/eringen/pubadmin/state"
)

// page is a registered resource section of the dashboard.
type page interface {
	info() ResourceInfo
	register(g *echo.Group)
	summary(ss *SessionState) ResourceSummary
}

// resourceDef describes how records of one resource are listed and edited.
type resourceDef[T state.Keyed] struct {
	title    string
	singular string
	api      *client.Resource[T]
	readOnly bool

	columns []string
	cells   func(T) []string
	label   func(T) string

	fields  []form.Field
	values  func(T) map[string]string
	build   func(id string, v map[string]string) T
	preview func(v map[string]string) template.HTML
}

// resourcePage serves the list, create, update and delete pages of one
// resource. Every page reads and writes through the session's slice.
type resourcePage[T state.Keyed] struct {
	app *App
	def resourceDef[T]
	res ResourceInfo
}

func newResourcePage[T state.Keyed](a *App, def resourceDef[T]) *resourcePage[T] {
	name := def.api.Name()
	return &resourcePage[T]{
		app: a,
		def: def,
		res: ResourceInfo{
			Name:     name,
			Title:    def.title,
			Path:     "/admin/" + name + "/",
			ReadOnly: def.readOnly,
		},
	}
}

func (p *resourcePage[T]) info() ResourceInfo { return p.res }

func (p *resourcePage[T]) register(g *echo.Group) {
	base := "/" + p.res.Name + "/"
	g.GET(base, p.list)
	if p.def.readOnly {
		return
	}
	g.GET(base+"new/", p.newForm)
	g.POST(base, p.create)
	g.GET(base+":id/edit/", p.editForm)
	g.POST(base+":id/", p.update)
	g.GET(base+":id/delete/", p.confirmDelete)
	g.POST(base+":id/delete/", p.destroy)
}

func (p *resourcePage[T]) slice(c echo.Context) *state.Slice[T] {
	ss := sessionStateOf(c)
	return sliceOf(ss, p.res.Name, func() state.Backend[T] {
		return p.def.api.For(ss.Session)
	})
}

func (p *resourcePage[T]) summary(ss *SessionState) ResourceSummary {
	sum := ResourceSummary{Title: p.res.Title, Path: p.res.Path, Status: string(state.Idle)}
	r, ok := ss.Loaded(p.res.Name)
	if !ok {
		return sum
	}
	if sl, ok := r.(*state.Slice[T]); ok {
		snap := sl.Snapshot()
		sum.Status = string(snap.Status)
		sum.Count = len(snap.Items)
		sum.Stale = snap.Stale
	}
	return sum
}

func (p *resourcePage[T]) itemPath(id, suffix string) string {
	return p.res.Path + url.PathEscape(id) + "/" + suffix
}

// backendFailure returns err for the error handler when the session is no
// longer valid, otherwise logs it and returns the inline message.
func backendFailure(c echo.Context, what string, err error) (string, error) {
	if client.IsUnauthorized(err) {
		return "", err
	}
	c.Logger().Errorf("%s: %v", what, err)
	return client.Message(err), nil
}

func (p *resourcePage[T]) list(c echo.Context) error {
	lay := p.app.layout(c, p.res.Title)
	lay.Flash = c.QueryParam("msg")

	snap, err := p.slice(c).FetchAll(c.Request().Context())
	if err != nil && !errors.Is(err, state.ErrStale) {
		msg, ferr := backendFailure(c, "fetch "+p.res.Name, err)
		if ferr != nil {
			return ferr
		}
		lay.Error = msg
	}

	items, info := paging.Paginate(snap.Items, paging.ParsePage(c.QueryParams()), p.app.Config.PageSize)
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{ID: it.Key(), Cells: p.def.cells(it)}
		if !p.def.readOnly {
			row.EditPath = p.itemPath(it.Key(), "edit/")
			row.DeletePath = p.itemPath(it.Key(), "delete/")
		}
		rows = append(rows, row)
	}

	return Render(c, p.app.Views.List(ListPage{
		Layout:   lay,
		Resource: p.res,
		Columns:  p.def.columns,
		Rows:     rows,
		Status:   string(snap.Status),
		Stale:    snap.Stale,
		Page:     info,
	}))
}

func (p *resourcePage[T]) formPage(c echo.Context, action string, editing bool, values map[string]string, errs form.Errors) FormPage {
	title := "New " + p.def.singular
	if editing {
		title = "Edit " + p.def.singular
	}
	fp := FormPage{
		Layout:   p.app.layout(c, title),
		Resource: p.res,
		Action:   action,
		Editing:  editing,
	}
	for _, f := range p.def.fields {
		if f.Kind == form.File {
			fp.Multipart = true
		}
		fp.Fields = append(fp.Fields, FieldView{Field: f, Value: values[f.Name], Error: errs.Get(f.Name)})
	}
	if p.def.preview != nil {
		fp.Preview = p.def.preview(values)
	}
	return fp
}

// find returns the record with the id route parameter, fetching the
// collection when it is not loaded yet.
func (p *resourcePage[T]) find(c echo.Context) (T, error) {
	id := c.Param("id")
	sl := p.slice(c)
	if it, ok := sl.Find(id); ok {
		return it, nil
	}
	var zero T
	if _, err := sl.FetchAll(c.Request().Context()); err != nil && !errors.Is(err, state.ErrStale) {
		if client.IsUnauthorized(err) {
			return zero, err
		}
		if client.IsNotFound(err) {
			return zero, echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
		}
		return zero, echo.NewHTTPError(http.StatusBadGateway, client.Message(err)).SetInternal(err)
	}
	if it, ok := sl.Find(id); ok {
		return it, nil
	}
	return zero, echo.NewHTTPError(http.StatusNotFound)
}

func (p *resourcePage[T]) newForm(c echo.Context) error {
	return Render(c, p.app.Views.Form(p.formPage(c, p.res.Path, false, map[string]string{}, nil)))
}

func (p *resourcePage[T]) editForm(c echo.Context) error {
	it, err := p.find(c)
	if err != nil {
		return err
	}
	return Render(c, p.app.Views.Form(p.formPage(c, p.itemPath(it.Key(), ""), true, p.def.values(it), nil)))
}

// submission reads and validates a dialog. Uploaded images go through the
// image pipeline and their public URL replaces the field value. A non-nil
// Errors means the dialog must be shown again.
func (p *resourcePage[T]) submission(c echo.Context) (map[string]string, form.Errors, error) {
	values, err := c.FormParams()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}
	uploads := map[string]*multipart.FileHeader{}
	present := map[string]bool{}
	for _, f := range p.def.fields {
		if f.Kind != form.File {
			continue
		}
		if fh, err := c.FormFile(f.Name); err == nil && fh.Size > 0 {
			uploads[f.Name] = fh
			present[f.Name] = true
		}
	}
	errs := form.Validate(p.def.fields, values, present)
	out := form.Values(p.def.fields, values)
	if len(errs) > 0 {
		return out, errs, nil
	}
	for name, fh := range uploads {
		img, err := p.app.saveUpload(fh)
		if err != nil {
			c.Logger().Warnf("upload %s for %s: %v", fh.Filename, p.res.Name, err)
			errs[name] = "Invalid image: " + err.Error()
			continue
		}
		out[name] = img.URL
	}
	if len(errs) > 0 {
		return out, errs, nil
	}
	return out, nil, nil
}

func (p *resourcePage[T]) create(c echo.Context) error {
	values, errs, err := p.submission(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return RenderStatus(c, http.StatusUnprocessableEntity, p.app.Views.Form(p.formPage(c, p.res.Path, false, values, errs)))
	}

	out, err := p.slice(c).Create(c.Request().Context(), p.def.build("", values))
	if err != nil {
		msg, ferr := backendFailure(c, "create "+p.res.Name, err)
		if ferr != nil {
			return ferr
		}
		fp := p.formPage(c, p.res.Path, false, values, nil)
		fp.Error = msg
		return RenderStatus(c, http.StatusBadGateway, p.app.Views.Form(fp))
	}

	p.app.recordActivity(c, p.res.Name, "create", out.Key())
	p.app.refetch(c, p.res.Name)
	return redirectWithMsg(c, p.res.Path, p.def.singular+" created.")
}

func (p *resourcePage[T]) update(c echo.Context) error {
	id := c.Param("id")
	action := p.itemPath(id, "")
	values, errs, err := p.submission(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return RenderStatus(c, http.StatusUnprocessableEntity, p.app.Views.Form(p.formPage(c, action, true, values, errs)))
	}

	if _, err := p.slice(c).Update(c.Request().Context(), id, p.def.build(id, values)); err != nil {
		msg, ferr := backendFailure(c, "update "+p.res.Name, err)
		if ferr != nil {
			return ferr
		}
		fp := p.formPage(c, action, true, values, nil)
		fp.Error = msg
		return RenderStatus(c, http.StatusBadGateway, p.app.Views.Form(fp))
	}

	p.app.recordActivity(c, p.res.Name, "update", id)
	p.app.refetch(c, p.res.Name)
	return redirectWithMsg(c, p.res.Path, p.def.singular+" updated.")
}

func (p *resourcePage[T]) confirmPage(c echo.Context, it T) ConfirmPage {
	return ConfirmPage{
		Layout:   p.app.layout(c, "Delete "+p.def.singular),
		Resource: p.res,
		ID:       it.Key(),
		Label:    p.def.label(it),
		Action:   p.itemPath(it.Key(), "delete/"),
	}
}

func (p *resourcePage[T]) confirmDelete(c echo.Context) error {
	it, err := p.find(c)
	if err != nil {
		return err
	}
	return Render(c, p.app.Views.Confirm(p.confirmPage(c, it)))
}

// destroy removes a record only when the dialog was confirmed. Anything else
// goes back to the dialog without contacting the backend.
func (p *resourcePage[T]) destroy(c echo.Context) error {
	id := c.Param("id")
	if c.FormValue("confirm") != "yes" {
		return c.Redirect(http.StatusSeeOther, p.itemPath(id, "delete/"))
	}

	sl := p.slice(c)
	prev, _ := sl.Find(id)
	if err := sl.Delete(c.Request().Context(), id); err != nil {
		msg, ferr := backendFailure(c, "delete "+p.res.Name, err)
		if ferr != nil {
			return ferr
		}
		cp := p.confirmPage(c, prev)
		cp.ID = id
		cp.Action = p.itemPath(id, "delete/")
		cp.Error = msg
		return RenderStatus(c, http.StatusBadGateway, p.app.Views.Confirm(cp))
	}

	p.app.recordActivity(c, p.res.Name, "delete", id)
	p.app.refetch(c, p.res.Name)
	return redirectWithMsg(c, p.res.Path, p.def.singular+" deleted.")
}
