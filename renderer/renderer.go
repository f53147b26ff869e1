// Package renderer turns purchases into markdown, ready to be printed as is or
// through a terminal markdown renderer.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"text/template"

	"github.com/etnz/goldlog"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// List is the data behind the purchase list view.
type List struct {
	Title     string
	Purchases []goldlog.Purchase
}

// RenderPurchases renders the purchase list as a markdown table, or a short
// message when there is nothing to show.
func RenderPurchases(purchases []goldlog.Purchase) string {
	partials := map[string]string{
		"purchases_title": "purchases_title.md",
		"purchases_table": "purchases_table.md",
	}
	return renderTemplate("purchases", "purchases.md", partials, List{Title: "Recorded purchases", Purchases: purchases})
}

// Purchase renders a single purchase on one line.
func Purchase(p goldlog.Purchase) string {
	return fmt.Sprintf("%s: %s g at %s TL/g", p.Date, p.Quantity, p.Price)
}

var funcs = template.FuncMap{
	"cell": cell,
	"inc":  func(i int) string { return strconv.Itoa(i + 1) },
}

// cell makes free text safe inside a markdown table cell.
func cell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
