// Package renewal builds and interprets renewal comparison prompts.
package renewal

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(promptFS, "prompts/*.tmpl"))

// Document is one policy document given to the model.
type Document struct {
	Name    string
	Content string
}

// SystemPrompt renders the instructions for a client and agency.
func SystemPrompt(c Context) (string, error) {
	return render("system.tmpl", c)
}

// UserPrompt lists the document contents, numbered from 1.
func UserPrompt(docs []Document) (string, error) {
	return render("user.tmpl", docs)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
