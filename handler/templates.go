package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/emzola/bibliodesk/data"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = mustParsePages()

var templateFuncs = template.FuncMap{
	"availability": func(b data.Book) string {
		if b.Available {
			return "Available"
		}
		return "Unavailable"
	},
	"date": func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return "N/A"
		}
		return t.Local().Format("02 Jan 2006 15:04")
	},
	"fieldError": func(errs map[string]string, key string) string {
		return errs[key]
	},
}

// bookForm holds the raw values of the create and edit forms.
type bookForm struct {
	Title       string
	Author      string
	Genre       string
	ISBN        string
	Description string
	Copies      string
}

func bookFormFrom(b *data.Book) bookForm {
	return bookForm{
		Title:       b.Title,
		Author:      b.Author,
		Genre:       string(b.Genre),
		ISBN:        b.ISBN,
		Description: b.Description,
		Copies:      fmt.Sprint(b.Copies),
	}
}

// borrowForm holds the raw values of the borrow form.
type borrowForm struct {
	Quantity string
	DueDate  string
}

type templateData struct {
	Flash         *Flash
	Events        string
	Form          bookForm
	Borrow        borrowForm
	Errors        map[string]string
	Book          *data.Book
	Books         data.Page[data.Book]
	Summary       data.Page[data.BorrowSummaryEntry]
	Genres        []data.Genre
	Today         string
	ExportEnabled bool
	Status        int
	Message       string
}

func (h *Handler) newTemplateData(r *http.Request) templateData {
	return templateData{
		Flash:         h.popFlash(r),
		Errors:        map[string]string{},
		Genres:        data.Genres,
		Today:         time.Now().Format(data.DueDateLayout),
		ExportEnabled: h.config.ExportEnabled(),
	}
}

// partials are parsed into every page.
var partials = []string{"templates/base.tmpl", "templates/bookform.tmpl"}

func mustParsePages() map[string]*template.Template {
	names, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		panic(err)
	}
	pages := make(map[string]*template.Template)
	for _, name := range names {
		if slices.Contains(partials, name) {
			continue
		}
		page := strings.TrimSuffix(path.Base(name), ".tmpl")
		patterns := append(slices.Clone(partials), name)
		pages[page] = template.Must(template.New(page).Funcs(templateFuncs).ParseFS(templateFS, patterns...))
	}
	return pages
}

// render executes a page into a buffer so that a template error still
// produces a clean 500 response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data templateData) {
	ts, ok := pages[page]
	if !ok {
		h.logError(r, fmt.Errorf("the template %s does not exist", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		h.logError(r, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
