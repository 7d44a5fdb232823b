package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Page template names.
const (
	RentalDetailPage  = "rental_listing_detail.html"
	RentalListPage    = "rental_list.html"
	RentalGalleryPage = "rental_gallery_view.html"
	NotFoundPage      = "404.html"
)

const layout = "base.html"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// StaticFS serves the embedded site assets (mounted under /static).
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create embedded static filesystem: " + err.Error())
	}
	return http.FS(sub)
}

// pagePartials lists the extra templates each page is parsed with.
var pagePartials = map[string][]string{
	RentalDetailPage:  {"listing_card.html"},
	RentalListPage:    {"listing_card.html"},
	RentalGalleryPage: {"listing_card.html", "pagination.html"},
	NotFoundPage:      nil,
}

// IRenderer renders a page inside the site layout.
type IRenderer interface {
	Render(w io.Writer, page string, data map[string]interface{}) error
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// Funcs returns the template helpers available to every page.
func Funcs() template.FuncMap {
	titler := cases.Title(language.English)
	printer := message.NewPrinter(language.English)
	return template.FuncMap{
		"title": titler.String,
		"price": func(v float64) string {
			return printer.Sprintf("$%.0f", v)
		},
		"number": func(v interface{}) string {
			return printer.Sprint(v)
		},
	}
}

// NewRenderer parses every page with the layout and its partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pagePartials))}
	for page, partials := range pagePartials {
		files := append([]string{"templates/" + layout, "templates/" + page}, prefix("templates/", partials)...)
		tmpl, err := template.New(layout).Funcs(Funcs()).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

func prefix(p string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = p + n
	}
	return out
}

// Render executes page into w.
func (r *Renderer) Render(w io.Writer, page string, data map[string]interface{}) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %s", page)
	}
	if err := tmpl.ExecuteTemplate(w, layout, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	return nil
}
