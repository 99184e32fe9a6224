package scaffold

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/flaskgen/internal/models"
)

// Generated files are Go templates with [[ ]] delimiters so the Jinja
// {{ }} and {% %} markup inside them passes through verbatim.
const (
	leftDelim  = "[["
	rightDelim = "]]"
)

type templateData struct {
	ProjectName string
	Host        string
	Port        int
	Mode        string
	SecretKey   string
	Pages       []models.Page
	Page        models.Page
	Layout      string
}

const appTemplate = `import logging
import os
from logging.handlers import RotatingFileHandler

from dotenv import load_dotenv
from flask import Flask, render_template

load_dotenv()

BASE_DIR = os.path.dirname(os.path.abspath(__file__))
LOG_FILE = os.path.join(os.path.dirname(BASE_DIR), "logs", "app.log")


class PrivateRotatingFileHandler(RotatingFileHandler):
    """Keeps the log file owner-only across rollovers."""

    def _open(self):
        stream = super()._open()
        os.chmod(self.baseFilename, 0o600)
        return stream


handler = PrivateRotatingFileHandler(LOG_FILE, maxBytes=10 * 1024 * 1024, backupCount=5)
handler.setFormatter(logging.Formatter("%(asctime)s %(levelname)s [%(name)s] %(message)s"))
handler.setLevel(logging.INFO)

app = Flask(__name__)
app.config["SECRET_KEY"] = os.environ.get("SECRET_KEY", [[ .SecretKey | quote ]])
app.logger.addHandler(handler)
app.logger.setLevel(logging.INFO)


@app.route("/")
def index():
    app.logger.info("index page accessed")
    return render_template("index.html")
[[ range .Pages ]]

@app.route("/[[ .ID ]]")
def [[ .FuncName ]]():
    app.logger.info("[[ .ID ]] page accessed")
    return render_template("[[ .ID ]].html")
[[ end ]]

@app.route("/error")
def error():
    raise RuntimeError("deliberate error to exercise error logging")


if __name__ == "__main__":
    host = os.environ.get("HOST", [[ .Host | quote ]])
    port = int(os.environ.get("PORT", [[ .Port ]]))
    env = os.environ.get("FLASK_ENV", [[ .Mode | quote ]])
    if env not in ("development", "production"):
        raise ValueError(f"FLASK_ENV must be 'development' or 'production', got {env!r}")
    app.run(host=host, port=port, debug=env == "development")
`

const baseTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{% block title %}[[ .ProjectName | html ]]{% endblock %}</title>
    <link rel="stylesheet" href="{{ url_for('static', filename='css/style.css') }}">
</head>
<body>
    <main>
        {% block content %}{% endblock %}
    </main>
    {% block scripts %}
    <script src="{{ url_for('static', filename='js/index.js') }}"></script>
    {% endblock %}
</body>
</html>
`

const indexTemplate = `{% extends "base.html" %}

{% block content %}
<h1>[[ .ProjectName | html ]]</h1>
<nav class="pages">
[[- range .Pages ]]
    <button type="button" onclick="window.location.href='/[[ .ID ]]'">[[ .Title | html ]]</button>
[[- end ]]
</nav>
{% endblock %}
`

const pageTemplate = `{% extends "base.html" %}

{% block title %}[[ .Page.Title | html ]]{% endblock %}

{% block content %}
<h1>[[ .Page.Title | html ]]</h1>
<p>This is the [[ .Page.Name | html ]] page.</p>
<a href="/">Back to home</a>
{% endblock %}

{% block scripts %}
<script src="{{ url_for('static', filename='js/[[ .Page.ID ]].js') }}"></script>
{% endblock %}
`

const pageScriptTemplate = `console.log([[ printf "%s page loaded" .Page.ID | quote ]]);
`

const indexScriptTemplate = `console.log("index page loaded");
`

const styleTemplate = `body {
    font-family: system-ui, -apple-system, "Segoe UI", Roboto, sans-serif;
    margin: 0;
    padding: 2rem;
    color: #222;
    background: #fafafa;
}

main {
    max-width: 48rem;
    margin: 0 auto;
}

.pages button {
    margin: 0.25rem;
    padding: 0.5rem 1rem;
    border: 1px solid #7d56f4;
    border-radius: 4px;
    background: #fff;
    cursor: pointer;
}

.pages button:hover {
    background: #7d56f4;
    color: #fff;
}
`

const readmeHeaderTemplate = `# [[ .ProjectName ]]

A Flask application generated by flaskgen.
`

const readmeSectionTemplate = `
## Project Structure

~~~text
[[ .Layout ]]~~~

## Usage

1. Activate the virtual environment:

   ~~~bash
   source venv/bin/activate
   ~~~

2. Start the server:

   ~~~bash
   python app/app.py
   ~~~

3. Open http://[[ .Host ]]:[[ .Port ]] in your browser.

The server defaults to host [[ .Host | quote ]], port [[ .Port ]] and [[ .Mode ]] mode.
Override them with the ` + "`HOST`, `PORT` and `FLASK_ENV`" + ` environment variables,
either exported in the shell or placed in a ` + "`.env`" + ` file next to ` + "`app/`" + `.
Application logs are written to ` + "`logs/app.log`" + `.
`

var templates = template.Must(parseTemplates(map[string]string{
	"app.py":       appTemplate,
	"base.html":    baseTemplate,
	"index.html":   indexTemplate,
	"page.html":    pageTemplate,
	"page.js":      pageScriptTemplate,
	"index.js":     indexScriptTemplate,
	"style.css":    styleTemplate,
	"readme":       readmeHeaderTemplate,
	"readme.usage": readmeSectionTemplate,
}))

func parseTemplates(sources map[string]string) (*template.Template, error) {
	root := template.New("scaffold").Delims(leftDelim, rightDelim).Funcs(sprig.TxtFuncMap())
	for name, src := range sources {
		if _, err := root.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}
	return root, nil
}

func render(name string, data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
