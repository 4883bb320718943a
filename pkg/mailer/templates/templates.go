package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

const (
	Welcome        = "welcome"
	AccountRemoved = "account_removed"
)

var subjects = map[string]string{
	Welcome:        "Welcome to {{.CompanyName}}",
	AccountRemoved: "Your {{.CompanyName}} account was removed",
}

var (
	textTpl = texttpl.Must(texttpl.ParseFS(FS, "*.txt.tmpl"))
	htmlTpl = htmpl.Must(htmpl.ParseFS(FS, "*.html.tmpl"))
)

// Rendered is a ready-to-send email body.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Render executes the subject, text and html variants of a named template.
func Render(name string, data map[string]any) (Rendered, error) {
	subj, ok := subjects[name]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown email template %q", name)
	}
	if data == nil {
		data = map[string]any{}
	}

	var out Rendered
	var buf bytes.Buffer
	st, err := texttpl.New("subject").Parse(subj)
	if err != nil {
		return Rendered{}, err
	}
	if err := st.Execute(&buf, data); err != nil {
		return Rendered{}, err
	}
	out.Subject = buf.String()

	buf.Reset()
	if err := textTpl.ExecuteTemplate(&buf, name+".txt.tmpl", data); err != nil {
		return Rendered{}, err
	}
	out.Text = buf.String()

	buf.Reset()
	if err := htmlTpl.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
		return Rendered{}, err
	}
	out.HTML = buf.String()
	return out, nil
}
