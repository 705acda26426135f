package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

var titleCaser = cases.Title(language.English)

type templateData struct {
	Greeting  string
	Code      string
	URL       string
	ExpiresIn string
}

// greeting addresses the user by first name, "Dear User" when unknown.
func greeting(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Dear User"
	}
	return "Dear " + titleCaser.String(fields[0])
}

type rendered struct {
	Subject string
	HTML    string
	Text    string
}

func render(subject, base string, data templateData) (*rendered, error) {
	var h, t bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&h, base+".html.tmpl", data); err != nil {
		return nil, err
	}
	if err := textTemplates.ExecuteTemplate(&t, base+".txt.tmpl", data); err != nil {
		return nil, err
	}
	return &rendered{Subject: subject, HTML: h.String(), Text: t.String()}, nil
}
