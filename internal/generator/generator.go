// Package generator turns a task brief into the fixed file set that gets published.
package generator

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"text/template"
	"time"

	"go.trai.ch/zerr"

	"llmdeploy/internal/generator/templates"
	"llmdeploy/internal/models"
)

const (
	IndexFile   = "index.html"
	LicenseFile = "LICENSE"
	ReadmeFile  = "README.md"
)

// ErrNoHTML is returned when a completion contains no usable markup.
var ErrNoHTML = zerr.New("completion contains no html document")

// Completer is the single request/response call to a generation provider.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator builds prompts, calls the provider and renders the boilerplate files.
type Generator struct {
	llm    Completer
	holder string
	now    func() time.Time
	logger *slog.Logger

	system  *template.Template
	user    *template.Template
	license *template.Template
	readme  *template.Template
}

// New parses the embedded templates. holder is the LICENSE copyright holder.
func New(llm Completer, holder string, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tpl, err := template.ParseFS(templates.FS, "*.tmpl")
	if err != nil {
		return nil, zerr.Wrap(err, "parse templates")
	}
	return &Generator{
		llm:     llm,
		holder:  holder,
		now:     time.Now,
		logger:  logger.With("component", "generator"),
		system:  tpl.Lookup("system.tmpl"),
		user:    tpl.Lookup("user.tmpl"),
		license: tpl.Lookup("LICENSE.tmpl"),
		readme:  tpl.Lookup("README.md.tmpl"),
	}, nil
}

type attachmentView struct {
	Name      string
	URL       string
	MediaType string
}

type promptData struct {
	Brief       string
	Checks      []string
	Attachments []attachmentView
	Existing    string
}

type readmeData struct {
	Name     string
	Brief    string
	PagesURL string
	Checks   []string
}

// Generate returns index.html, LICENSE and README.md for round 1. When
// existing is non-empty the provider revises it and LICENSE is omitted so
// the published one stays untouched.
func (g *Generator) Generate(ctx context.Context, req models.TaskRequest, id models.RepositoryIdentity, existing string) (models.FileSet, error) {
	system, err := render(g.system, nil)
	if err != nil {
		return nil, err
	}
	user, err := render(g.user, promptData{
		Brief:       req.Brief,
		Checks:      req.Checks,
		Attachments: attachmentViews(req.Attachments),
		Existing:    existing,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Debug("requesting completion", "repo", id.FullName(), "round", req.Round, "prompt_bytes", len(user))
	raw, err := g.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "generate application"), "repo", id.FullName())
	}
	html, err := ExtractHTML(raw)
	if err != nil {
		return nil, err
	}

	readme, err := render(g.readme, readmeData{
		Name:     id.Name,
		Brief:    strings.TrimSpace(req.Brief),
		PagesURL: id.PagesURL(),
		Checks:   req.Checks,
	})
	if err != nil {
		return nil, err
	}

	files := models.FileSet{
		IndexFile:  html,
		ReadmeFile: readme,
	}
	if existing == "" {
		license, err := g.License()
		if err != nil {
			return nil, err
		}
		files[LicenseFile] = license
	}
	return files, nil
}

// License renders the MIT license for the current year.
func (g *Generator) License() (string, error) {
	return render(g.license, struct {
		Year   int
		Holder string
	}{Year: g.now().Year(), Holder: g.holder})
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", zerr.With(zerr.Wrap(err, "render template"), "template", tpl.Name())
	}
	return buf.String(), nil
}

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n(.*?)```")

// ExtractHTML returns the first fenced block of raw, or raw itself when it
// already looks like a document.
func ExtractHTML(raw string) (string, error) {
	var candidate string
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else {
		candidate = raw
	}
	candidate = strings.TrimSpace(candidate)
	lower := strings.ToLower(candidate)
	if !strings.Contains(lower, "<html") && !strings.HasPrefix(lower, "<!doctype") {
		return "", ErrNoHTML
	}
	return candidate + "\n", nil
}

func attachmentViews(attachments []models.Attachment) []attachmentView {
	if len(attachments) == 0 {
		return nil
	}
	views := make([]attachmentView, 0, len(attachments))
	for _, a := range attachments {
		views = append(views, attachmentView{Name: a.Name, URL: a.URL, MediaType: dataURIMediaType(a.URL)})
	}
	return views
}

// dataURIMediaType returns the media type of a data URI, or "" for other URLs.
func dataURIMediaType(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ""
	}
	header, _, ok := strings.Cut(rest, ",")
	if !ok {
		return ""
	}
	mediaType, _, _ := strings.Cut(header, ";")
	if mediaType == "" {
		return "text/plain"
	}
	return mediaType
}
