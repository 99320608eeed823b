package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

func WriteHTML(runID, outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + summary
	fmt.Fprintf(f, "<h1>mlreview report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	if run.Source != "" {
		fmt.Fprintf(f, "<p class='dim mono'>%s</p>", html.EscapeString(run.Source))
	}
	fmt.Fprintf(f, "<p>Issues: %d &nbsp; Score: %.0f/100</p>", run.Summary.Total, run.Summary.Score)

	if run.Context.SeverityThreshold != "" {
		fmt.Fprintf(f, "<p class='dim'>Severity threshold: %s", html.EscapeString(run.Context.SeverityThreshold))
		if n := len(run.Context.DisabledCategories); n > 0 {
			fmt.Fprintf(f, " &nbsp; Disabled categories: %d", n)
		}
		fmt.Fprint(f, "</p>")
	}

	// Severity tallies, highest first
	if len(run.Summary.BySeverity) > 0 {
		sevs := make([]string, 0, len(run.Summary.BySeverity))
		for s := range run.Summary.BySeverity {
			sevs = append(sevs, s)
		}
		sort.Slice(sevs, func(i, j int) bool {
			return ir.SeverityRank(sevs[i]) > ir.SeverityRank(sevs[j])
		})
		fmt.Fprint(f, "<h2>By Severity</h2><table><tr><th>Severity</th><th>Count</th></tr>")
		for _, s := range sevs {
			fmt.Fprintf(f, "<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(s), run.Summary.BySeverity[s])
		}
		fmt.Fprint(f, "</table>")
	}

	// All issues in review order
	if len(run.Issues) > 0 {
		fmt.Fprint(f, "<h2>All Issues</h2><table><tr><th>Line</th><th>Severity</th><th>Category</th><th>Issue</th></tr>")
		for _, iss := range run.Issues {
			fmt.Fprintf(f, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>",
				iss.Line,
				html.EscapeString(iss.Severity),
				html.EscapeString(iss.Category),
				html.EscapeString(iss.Message),
			)
		}
		fmt.Fprint(f, "</table>")
	} else {
		fmt.Fprint(f, "<h2>All Issues</h2><p class='dim'>No issues at or above the configured threshold.</p>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
