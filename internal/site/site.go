// Package site renders the guideline viewer as HTML, either live behind the
// HTTP server or as a static snapshot on disk.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/navigator"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/search"
)

const (
	prefaceHeading = "序言"
	authorsHeading = "編審名單"
)

// Options configures a Site.
type Options struct {
	Expansion expansion.Options
	// AssetBase prefixes dataset image paths on live pages. Defaults to
	// "/assets/".
	AssetBase string
	Logger    *slog.Logger
}

// Site renders pages for one document.
type Site struct {
	doc     *guide.Document
	opts    Options
	log     *slog.Logger
	pages   *template.Template
	docs    *template.Template
	preface template.HTML
	authors template.HTML
	outline []*render.OutlineNode
}

// pageData holds the data passed to the viewer template.
type pageData struct {
	Title       string
	Subtitle    string
	Query       string
	Live        bool
	Base        string
	Home        string
	PrefaceHref string
	AuthorsHref string
	View        *render.View
	Label       string
	Prev        string
	Next        string
	Outline     template.HTML
}

// docData holds the data passed to the markdown page template.
type docData struct {
	Title   string
	Heading string
	Base    string
	Home    string
	Content template.HTML
}

// links decides how a page refers to other pages and to assets.
type links struct {
	live    bool
	base    string
	href    func(params) string
	asset   func(string) string
	preface string
	authors string
}

// New parses the templates and renders the document's markdown once.
func New(doc *guide.Document, opts Options) (*Site, error) {
	if opts.AssetBase == "" {
		opts.AssetBase = "/assets/"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	preface, err := convert(md, doc.Preface)
	if err != nil {
		return nil, fmt.Errorf("rendering preface: %w", err)
	}
	authors, err := convert(md, doc.Authors)
	if err != nil {
		return nil, fmt.Errorf("rendering authors: %w", err)
	}

	s := &Site{
		doc:     doc,
		opts:    opts,
		log:     opts.Logger,
		preface: preface,
		authors: authors,
		outline: render.Outline(doc),
	}
	s.pages, err = template.New("page").Funcs(s.funcs(params{match: -1}, s.liveLinks(), -1)).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	s.docs, err = template.New("doc").Parse(docTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing doc template: %w", err)
	}
	return s, nil
}

func convert(md goldmark.Markdown, src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Handler serves the live viewer.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/preface", s.handleDoc(prefaceHeading, s.preface))
	r.Get("/authors", s.handleDoc(authorsHeading, s.authors))
	r.Get("/manifest.json", s.handleManifest)
	r.Get("/style.css", staticFile("text/css; charset=utf-8", cssContent))
	r.Get("/script.js", staticFile("text/javascript; charset=utf-8", jsContent))
	return r
}

func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.render(&buf, parseParams(r.URL.Query()), s.liveLinks()); err != nil {
		s.log.Error("rendering page", "error", err, "url", r.URL.String())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Site) handleDoc(heading string, content template.HTML) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.renderDoc(&buf, heading, content, s.liveLinks()); err != nil {
			s.log.Error("rendering page", "error", err, "url", r.URL.String())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Site) handleManifest(w http.ResponseWriter, r *http.Request) {
	data, err := s.WebManifest("/").JSON()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	_, _ = w.Write(data)
}

func staticFile(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = io.WriteString(w, body)
	}
}

func (s *Site) liveLinks() links {
	return links{
		live: true,
		base: "/",
		href: func(p params) string { return "/" + p.encode() },
		asset: func(a string) string {
			if isAbsolute(a) {
				return a
			}
			return s.opts.AssetBase + relativeAsset(a)
		},
		preface: "preface",
		authors: "authors",
	}
}

func staticLinks() links {
	return links{
		href: staticName,
		asset: func(a string) string {
			if isAbsolute(a) {
				return a
			}
			return relativeAsset(a)
		},
		preface: "preface.html",
		authors: "authors.html",
	}
}

func isAbsolute(a string) bool {
	return strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://")
}

// relativeAsset turns a dataset image path such as "./PIC/x.png" into
// "PIC/x.png".
func relativeAsset(a string) string {
	return strings.TrimPrefix(strings.TrimPrefix(a, "./"), "/")
}

// render writes the viewer page for p.
func (s *Site) render(w io.Writer, p params, l links) error {
	entries := search.Filter(s.doc.Entries, p.query)
	view := render.Build(s.doc, entries, p.query, p.state(s.doc, s.opts.Expansion))

	data := pageData{
		Title:       s.doc.Title,
		Subtitle:    s.doc.Subtitle,
		Query:       p.query,
		Live:        l.live,
		Base:        l.base,
		Home:        l.href(params{match: -1}),
		PrefaceHref: l.preface,
		AuthorsHref: l.authors,
		View:        view,
		Outline:     template.HTML(OutlineHTML(s.outline, p.open, l.href)),
	}

	current := -1
	if total := len(view.Fragments); total > 0 {
		if p.match >= 0 {
			current = p.match % total
		}
		next := (current + 1) % total
		prev := current - 1
		if prev < 0 {
			prev = total - 1
		}
		data.Next = l.href(p.focus(next)) + "#match-" + strconv.Itoa(next)
		data.Prev = l.href(p.focus(prev)) + "#match-" + strconv.Itoa(prev)
	}
	data.Label = navigator.Label(current, len(view.Fragments))

	tmpl, err := s.pages.Clone()
	if err != nil {
		return err
	}
	return tmpl.Funcs(s.funcs(p, l, current)).Execute(w, data)
}

func (s *Site) renderDoc(w io.Writer, heading string, content template.HTML, l links) error {
	return s.docs.Execute(w, docData{
		Title:   s.doc.Title,
		Heading: heading,
		Base:    l.base,
		Home:    l.href(params{match: -1}),
		Content: content,
	})
}

// funcs binds the template helpers to one page's state.
func (s *Site) funcs(p params, l links, current int) template.FuncMap {
	return template.FuncMap{
		"text":    func(t render.Text) template.HTML { return markText(t, current) },
		"inlines": func(in []render.Inline) template.HTML { return markInlines(in, current) },
		"indent":  indentStyle,
		"asset":   l.asset,
		"entryHref": func(id guide.ID) string {
			return l.href(p.toggleEntry(id.String()))
		},
		"subHref": func(entry, sub guide.ID) string {
			return l.href(p.toggleSub(entry.String() + "/" + sub.String()))
		},
		"grandHref": func(entry, sub, grand guide.ID) string {
			return l.href(p.toggleGrand(entry.String() + "/" + sub.String() + "/" + grand.String()))
		},
		"isImage":        func(b render.Block) bool { return b.Kind == guide.LineImage },
		"isHeader":       func(b render.Block) bool { return b.Kind == guide.LineHeader },
		"isSpacer":       func(b render.Block) bool { return b.Kind == guide.LineSpacer },
		"noteLabel":      func() string { return render.NoteLabel },
		"grandNoteLabel": func() string { return render.GrandNoteLabel },
		"subNotePrefix":  func() string { return render.SubNotePrefix },
		"pendingLabel":   func() string { return render.PendingLabel },
	}
}

// markText escapes t and wraps every match in a mark element addressable
// as #match-N. The focused match also carries the current class.
func markText(t render.Text, current int) template.HTML {
	var b strings.Builder
	for _, sp := range t {
		if sp.Match == render.NoMatch {
			b.WriteString(template.HTMLEscapeString(sp.Text))
			continue
		}
		class := "search-match"
		if sp.Match == current {
			class += " current"
		}
		fmt.Fprintf(&b, `<mark id="match-%d" class="%s">%s</mark>`, sp.Match, class, template.HTMLEscapeString(sp.Text))
	}
	return template.HTML(b.String())
}

func markInlines(in []render.Inline, current int) template.HTML {
	var b strings.Builder
	for _, i := range in {
		switch i.Kind {
		case guide.SegmentLink:
			fmt.Fprintf(&b, `<a class="link" href="%s" target="_blank" rel="noopener">%s</a>`,
				template.HTMLEscapeString(i.Href), template.HTMLEscapeString(i.Href))
		case guide.SegmentParamedic:
			fmt.Fprintf(&b, `<span class="badge badge-paramedic">%s</span>`, render.ParamedicBadge)
		case guide.SegmentOnlineOrder:
			fmt.Fprintf(&b, `<span class="badge badge-order">%s</span>`, render.OrderBadge)
		default:
			b.WriteString(string(markText(i.Text, current)))
		}
	}
	return template.HTML(b.String())
}

func indentStyle(b render.Block) template.CSS {
	if b.Indent == 0 {
		return ""
	}
	em := strconv.FormatFloat(b.Indent, 'f', -1, 64)
	if b.Hanging {
		return template.CSS("padding-left:" + em + "em;text-indent:-" + em + "em")
	}
	return template.CSS("padding-left:" + em + "em")
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
