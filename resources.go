package pubadmin

import (
	"html/template"
	"strings"

	"github.com/eringen/pubadmin/content"
	"github.com/eringen/pubadmin/form"
	"github.com/eringen/pubadmin/markdown"
)

// resourcePages lists every managed resource in navigation order.
func (a *App) resourcePages() []page {
	pages := []page{
		newResourcePage(a, faqDef(a)),
		newResourcePage(a, quoteDef(a)),
	}
	for _, t := range content.PolicyTypes {
		pages = append(pages, newResourcePage(a, policyDef(a, t)))
	}
	return append(pages,
		newResourcePage(a, socialMediaDef(a)),
		newResourcePage(a, eventDef(a)),
		newResourcePage(a, speakerDef(a)),
		newResourcePage(a, subscriberDef(a)),
		newResourcePage(a, registrationDef(a)),
	)
}

func faqDef(a *App) resourceDef[content.FAQ] {
	return resourceDef[content.FAQ]{
		title:    "FAQs",
		singular: "FAQ",
		api:      a.API.FAQs(),
		columns:  []string{"Question", "Answer"},
		cells: func(f content.FAQ) []string {
			return []string{f.Question, Truncate(f.Answer, 100)}
		},
		label: func(f content.FAQ) string { return f.Question },
		fields: []form.Field{
			{Name: "question", Label: "Question", Kind: form.Text, Required: true, MaxLen: 500},
			{Name: "answer", Label: "Answer", Kind: form.TextArea, Required: true, MaxLen: 5000},
		},
		values: func(f content.FAQ) map[string]string {
			return map[string]string{"question": f.Question, "answer": f.Answer}
		},
		build: func(id string, v map[string]string) content.FAQ {
			return content.FAQ{ID: id, Question: v["question"], Answer: v["answer"]}
		},
	}
}

func quoteDef(a *App) resourceDef[content.Quote] {
	return resourceDef[content.Quote]{
		title:    "Quotes",
		singular: "Quote",
		api:      a.API.Quotes(),
		columns:  []string{"Quote", "Author"},
		cells: func(q content.Quote) []string {
			return []string{Truncate(q.Text, 120), q.Author}
		},
		label: func(q content.Quote) string { return Truncate(q.Text, 60) },
		fields: []form.Field{
			{Name: "quote", Label: "Quote", Kind: form.TextArea, Required: true, MaxLen: 1000},
			{Name: "author", Label: "Author", Kind: form.Text, Required: true, MaxLen: 200},
		},
		values: func(q content.Quote) map[string]string {
			return map[string]string{"quote": q.Text, "author": q.Author}
		},
		build: func(id string, v map[string]string) content.Quote {
			return content.Quote{ID: id, Text: v["quote"], Author: v["author"]}
		},
	}
}

var policyTitles = map[string]string{
	content.PolicyPrivacy: "Privacy policy",
	content.PolicyTerms:   "Terms & conditions",
	content.PolicyRefund:  "Refund policy",
}

func policyDef(a *App, policyType string) resourceDef[content.Policy] {
	return resourceDef[content.Policy]{
		title:    policyTitles[policyType],
		singular: "Policy",
		api:      a.API.Policies(policyType),
		columns:  []string{"Title", "Content"},
		cells: func(p content.Policy) []string {
			return []string{p.Title, Truncate(p.Content, 100)}
		},
		label: func(p content.Policy) string { return p.Title },
		fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.Text, Required: true, MaxLen: 200},
			{Name: "content", Label: "Content", Kind: form.TextArea, Required: true, Help: "Markdown is supported."},
		},
		values: func(p content.Policy) map[string]string {
			return map[string]string{"title": p.Title, "content": p.Content}
		},
		build: func(id string, v map[string]string) content.Policy {
			return content.Policy{ID: id, Type: policyType, Title: v["title"], Content: v["content"]}
		},
		preview: func(v map[string]string) template.HTML {
			if strings.TrimSpace(v["content"]) == "" {
				return ""
			}
			return markdown.HTML(v["content"])
		},
	}
}

func socialMediaDef(a *App) resourceDef[content.SocialMedia] {
	fields := make([]form.Field, 0, len(content.Platforms))
	columns := make([]string, 0, len(content.Platforms))
	for _, p := range content.Platforms {
		label := content.PlatformLabel(p)
		fields = append(fields, form.Field{Name: p, Label: label, Kind: form.URL, MaxLen: 500})
		columns = append(columns, label)
	}
	return resourceDef[content.SocialMedia]{
		title:    "Social media",
		singular: "Social media links",
		api:      a.API.SocialMedia(),
		columns:  columns,
		cells: func(s content.SocialMedia) []string {
			out := make([]string, 0, len(content.Platforms))
			for _, p := range content.Platforms {
				out = append(out, s.Link(p))
			}
			return out
		},
		label: func(s content.SocialMedia) string {
			return strings.Join(s.SortedPlatforms(), ", ")
		},
		fields: fields,
		values: func(s content.SocialMedia) map[string]string {
			v := make(map[string]string, len(content.Platforms))
			for _, p := range content.Platforms {
				v[p] = s.Link(p)
			}
			return v
		},
		build: func(id string, v map[string]string) content.SocialMedia {
			s := content.SocialMedia{ID: id, Links: map[string]string{}}
			for _, p := range content.Platforms {
				if v[p] != "" {
					s.Links[p] = v[p]
				}
			}
			return s
		},
	}
}

func eventDef(a *App) resourceDef[content.Event] {
	return resourceDef[content.Event]{
		title:    "Events",
		singular: "Event",
		api:      a.API.Events(),
		columns:  []string{"Title", "Date", "Description"},
		cells: func(e content.Event) []string {
			return []string{e.Title, DateOnly(e.Date), Truncate(e.Description, 80)}
		},
		label: func(e content.Event) string { return e.Title },
		fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.Text, Required: true, MaxLen: 200},
			{Name: "date", Label: "Date", Kind: form.Date, Required: true},
			{Name: "description", Label: "Description", Kind: form.TextArea, Required: true, MaxLen: 5000},
			{Name: "banner", Label: "Banner", Kind: form.File, Required: true},
			{Name: "images", Label: "Gallery", Kind: form.TextArea, Help: "One image URL per line."},
		},
		values: func(e content.Event) map[string]string {
			return map[string]string{
				"title":       e.Title,
				"date":        DateOnly(e.Date),
				"description": e.Description,
				"banner":      e.Banner,
				"images":      strings.Join(e.Images, "\n"),
			}
		},
		build: func(id string, v map[string]string) content.Event {
			images := SplitLines(v["images"])
			if images == nil {
				images = []string{}
			}
			return content.Event{
				ID:          id,
				Title:       v["title"],
				Date:        v["date"],
				Description: v["description"],
				Banner:      v["banner"],
				Images:      images,
			}
		},
	}
}

func speakerDef(a *App) resourceDef[content.Speaker] {
	return resourceDef[content.Speaker]{
		title:    "Speakers",
		singular: "Speaker",
		api:      a.API.Speakers(),
		columns:  []string{"Name", "Title", "Description"},
		cells: func(s content.Speaker) []string {
			return []string{s.Name, s.Title, Truncate(s.Description, 80)}
		},
		label: func(s content.Speaker) string { return s.Name },
		fields: []form.Field{
			{Name: "name", Label: "Name", Kind: form.Text, Required: true, MaxLen: 200},
			{Name: "title", Label: "Title", Kind: form.Text, Required: true, MaxLen: 200},
			{Name: "description", Label: "Description", Kind: form.TextArea, Required: true, MaxLen: 5000},
			{Name: "image", Label: "Photo", Kind: form.File, Required: true},
		},
		values: func(s content.Speaker) map[string]string {
			return map[string]string{"name": s.Name, "title": s.Title, "description": s.Description, "image": s.Image}
		},
		build: func(id string, v map[string]string) content.Speaker {
			return content.Speaker{ID: id, Name: v["name"], Title: v["title"], Description: v["description"], Image: v["image"]}
		},
	}
}

func subscriberDef(a *App) resourceDef[content.Subscriber] {
	return resourceDef[content.Subscriber]{
		title:    "Subscribers",
		singular: "Subscriber",
		api:      a.API.Subscribers(),
		readOnly: true,
		columns:  []string{"Email", "Subscribed"},
		cells: func(s content.Subscriber) []string {
			return []string{s.Email, FormatTimestamp(s.CreatedAt)}
		},
		label: func(s content.Subscriber) string { return s.Email },
	}
}

func registrationDef(a *App) resourceDef[content.Registration] {
	return resourceDef[content.Registration]{
		title:    "Registrations",
		singular: "Registration",
		api:      a.API.Registrations(),
		readOnly: true,
		columns:  []string{"Name", "Email", "Mobile", "Registered"},
		cells: func(r content.Registration) []string {
			return []string{r.Name, r.Email, r.Mobile, FormatTimestamp(r.CreatedAt)}
		},
		label: func(r content.Registration) string { return r.Name },
	}
}
