// Package templates renders the transactional emails sent by the notification worker.
//
// Each email is three files sharing a base name: <name>.subject.tmpl,
// <name>.text.tmpl and <name>.html.tmpl. All of them are parsed once from the
// embedded FS on first use.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io/fs"
	"sort"
	"strings"
	"sync"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// orDefault backs the `default` pipe: {{ .Name | default "there" }}.
func orDefault(fallback, value any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
	}
	return value
}

var funcs = map[string]any{
	"default": orDefault,
	"upper":   strings.ToUpper,
}

type set struct {
	text *texttpl.Template
	html *htmpl.Template
}

var (
	loadOnce sync.Once
	loaded   set
	loadErr  error
)

func load() (set, error) {
	loadOnce.Do(func() {
		text, err := texttpl.New("").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("parse text templates: %w", err)
			return
		}
		html, err := htmpl.New("").Funcs(funcs).ParseFS(FS, "*.html.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("parse html templates: %w", err)
			return
		}
		loaded = set{text: text, html: html}
	})
	return loaded, loadErr
}

// Names lists the email base names available to Render.
func Names() []string {
	files, _ := fs.Glob(FS, "*.subject.tmpl")
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, strings.TrimSuffix(f, ".subject.tmpl"))
	}
	sort.Strings(out)
	return out
}

// Render returns the subject, text body and html body of email name.
func Render(name string, data any) (subject, text, html string, err error) {
	s, err := load()
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	exec := func(run func() error, file string) (string, error) {
		buf.Reset()
		if err := run(); err != nil {
			return "", fmt.Errorf("render %q: %w", file, err)
		}
		return buf.String(), nil
	}

	file := name + ".subject.tmpl"
	if subject, err = exec(func() error { return s.text.ExecuteTemplate(&buf, file, data) }, file); err != nil {
		return "", "", "", err
	}
	file = name + ".text.tmpl"
	if text, err = exec(func() error { return s.text.ExecuteTemplate(&buf, file, data) }, file); err != nil {
		return "", "", "", err
	}
	file = name + ".html.tmpl"
	if html, err = exec(func() error { return s.html.ExecuteTemplate(&buf, file, data) }, file); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
