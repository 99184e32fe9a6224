package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page is an extra page requested by the user.
type Page struct {
	// Name is the raw name as given on the command line
	Name string

	// ID is the sanitized identifier used for the route, function, template and script names
	ID string
}

// NewPage sanitizes name into a Page. It fails when nothing usable is left.
func NewPage(name string) (Page, error) {
	id := SanitizePageName(name)
	if id == "" {
		return Page{}, fmt.Errorf("invalid page name %q: must contain at least one letter, digit or underscore", name)
	}
	if reservedIDs[id] {
		return Page{}, fmt.Errorf("invalid page name %q: %s.html and %s.js are generated for the home page layout", name, id, id)
	}
	return Page{Name: name, ID: id}, nil
}

// SanitizePageName lowercases name and drops everything except a-z, 0-9 and underscore.
func SanitizePageName(name string) string {
	lowered := cases.Lower(language.Und).String(name)

	var b strings.Builder
	for _, r := range lowered {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Title returns the page name in title case for headings.
func (p Page) Title() string {
	return cases.Title(language.English).String(p.Name)
}

// pythonKeywords cannot be used as function names in the generated entry point.
var pythonKeywords = map[string]bool{
	"and": true, "as": true, "assert": true,
	"async": true, "await": true, "break": true, "class": true, "continue": true,
	"def": true, "del": true, "elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true, "yield": true,
}

// reservedIDs name templates and scripts the generator writes itself.
var reservedIDs = map[string]bool{
	"base":  true,
	"index": true,
}

// reservedFuncNames are endpoints and module-level names already bound in
// the generated entry point.
var reservedFuncNames = map[string]bool{
	"app": true, "error": true, "handler": true, "index": true,
	"load_dotenv": true, "logging": true, "os": true,
	"render_template": true, "static": true,
}

// FuncName returns the handler function name for the page. It is the ID
// itself unless the ID is not a valid Python identifier or clashes with a
// name the entry point already binds.
func (p Page) FuncName() string {
	switch {
	case p.ID == "":
		return ""
	case p.ID[0] >= '0' && p.ID[0] <= '9':
		return "page_" + p.ID
	case pythonKeywords[p.ID], reservedFuncNames[p.ID]:
		return p.ID + "_page"
	default:
		return p.ID
	}
}
