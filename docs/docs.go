// Package docs renders a compiled document's Markdown doc comments
// to HTML, for serving a human-readable page alongside a running
// session. Grounded on the teacher's tools/spec-html.go
// RenderSpecHTML/RenderSpecPage, which walks a compiled Spec's nodes
// and branches rendering each Doc field with blackfriday; this
// package walks an ir.Doc's states and transitions the same way.
package docs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	md "github.com/russross/blackfriday/v2"

	"github.com/nburns/scxml/ir"
)

// RenderStateChartHTML writes a table of every state's id, kind, and
// rendered documentation, with transitions nested underneath, to out.
func RenderStateChartHTML(d *ir.Doc, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="chartDoc doc"></div>`)
	f(`<div class="states"><table>`)

	for _, s := range d.States {
		f(`<tr class="state"><td><span id="%s" class="stateName">%s</span></td><td>`, s.ID, s.ID)
		f(`<div class="stateKind">%s</div>`, s.Kind)
		if s.Doc != "" {
			f(`<div class="stateDoc doc">%s</div>`, md.Run([]byte(s.Doc)))
		}
		if len(s.Transitions) > 0 {
			f(`<div class="transitions"><table>`)
			for i, tr := range s.Transitions {
				f(`<tr><td><div class="transitionNum">%d</div></td><td><table>`, i)
				if len(tr.EventDescriptors) > 0 {
					f(`<tr><td>events</td><td><code>%s</code></td></tr>`, strings.Join(tr.EventDescriptors, " "))
				}
				if tr.Cond != "" {
					f(`<tr><td>cond</td><td><code>%s</code></td></tr>`, tr.Cond)
				}
				for _, target := range tr.Targets {
					t := d.States[target]
					f(`<tr><td>target</td><td><a href="#%s"><code>%s</code></a></td></tr>`, t.ID, t.ID)
				}
				f(`</table></td></tr>`)
			}
			f(`</table></div>`)
		}
		f(`</td></tr>`)
	}

	f(`</table></div>`)
	return nil
}

// RenderStateChartPage wraps RenderStateChartHTML in a full HTML
// document, optionally embedding the compiled document as JSON for a
// client-side graph renderer to consume, the same way
// tools.RenderSpecPage embeds a Spec.
func RenderStateChartPage(d *ir.Doc, out io.Writer, cssFiles []string, includeGraph bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/statechart.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, d.Name)

	if includeGraph {
		js, err := json.Marshal(stateChartGraph(d))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script src="https://cdnjs.cloudflare.com/ajax/libs/cytoscape/3.2.8/cytoscape.min.js"></script>
  <script>
  var thisChart = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, d.Name)

	if err := RenderStateChartHTML(d, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)
	return nil
}

type graphNode struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
}

type graphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type graph struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

func stateChartGraph(d *ir.Doc) graph {
	var g graph
	for _, s := range d.States {
		n := graphNode{ID: s.ID}
		if s.Parent != ir.NoState {
			n.Parent = d.States[s.Parent].ID
		}
		g.Nodes = append(g.Nodes, n)
		for _, tr := range s.Transitions {
			for _, target := range tr.Targets {
				g.Edges = append(g.Edges, graphEdge{Source: s.ID, Target: d.States[target].ID})
			}
		}
	}
	return g
}
