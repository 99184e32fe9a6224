package scaffold

import (
	"strings"

	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/project"
)

// Node is one entry of a directory tree.
type Node struct {
	Name     string
	Dir      bool
	Children []*Node
}

func dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Dir: true, Children: children}
}

func file(name string) *Node {
	return &Node{Name: name}
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// BuildLayout returns the tree of a generated project. Pages contribute one
// template and one script each, in order.
func BuildLayout(projectName string, pages []models.Page) *Node {
	templates := dir("templates", file("base.html"), file("index.html"))
	scripts := dir("js", file("index.js"))
	for _, page := range pages {
		templates.Add(file(page.ID + ".html"))
		scripts.Add(file(page.ID + ".js"))
	}

	return dir(projectName,
		file(project.ReadmeFile),
		file(project.ManifestFile),
		dir(project.VenvDir),
		dir(project.AppDir,
			file("app.py"),
			templates,
			dir("static",
				dir("css", file("style.css")),
				scripts,
			),
		),
		dir(project.LogsDir, file("app.log")),
	)
}

// Render prints the tree with box-drawing connectors, directories suffixed with "/".
func (n *Node) Render() string {
	var b strings.Builder
	b.WriteString(n.label())
	b.WriteString("\n")
	n.renderChildren(&b, "")
	return b.String()
}

func (n *Node) renderChildren(b *strings.Builder, indent string) {
	for i, child := range n.Children {
		isLast := i == len(n.Children)-1

		connector := "├── "
		nextIndent := indent + "│   "
		if isLast {
			connector = "└── "
			nextIndent = indent + "    "
		}

		b.WriteString(indent)
		b.WriteString(connector)
		b.WriteString(child.label())
		b.WriteString("\n")

		child.renderChildren(b, nextIndent)
	}
}

func (n *Node) label() string {
	if n.Dir {
		return n.Name + "/"
	}
	return n.Name
}
