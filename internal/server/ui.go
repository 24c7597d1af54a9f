package server

import (
	"html/template"
	"log/slog"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>GeometricArt</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
img.preview { height: 96px; }
.state-running { color: #0366d6; }
.state-completed { color: #22863a; }
.state-failed, .state-cancelled { color: #cb2431; }
</style>
</head>
<body>
<h1>GeometricArt jobs</h1>
{{if not .}}
<p>No jobs yet. POST to /api/v1/jobs to start one.</p>
{{else}}
<table>
<tr><th>ID</th><th>State</th><th>Target</th><th>Kind</th><th>Shapes</th><th>Iteration</th><th>Changes</th><th>Similarity</th><th>Best</th></tr>
{{range .}}
<tr>
<td><a href="/api/v1/jobs/{{.ID}}/status">{{printf "%.12s" .ID}}</a></td>
<td class="state-{{.State}}">{{.State}}</td>
<td>{{.Config.RefPath}}</td>
<td>{{.Config.Kind}}</td>
<td>{{.Config.Shapes}}</td>
<td>{{.Iteration}}</td>
<td>{{.Changes}}</td>
<td>{{printf "%.2f%%" .Similarity}}</td>
<td><img class="preview" src="/api/v1/jobs/{{.ID}}/best.png" alt=""></td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	jobs := s.jobManager.ListJobs()
	if err := indexTemplate.Execute(w, jobs); err != nil {
		slog.Error("Failed to render index page", "error", err)
	}
}
