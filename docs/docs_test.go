package docs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nburns/scxml/ir"
)

func TestRenderStateChartHTMLIncludesStatesAndTransitions(t *testing.T) {
	d, err := ir.EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := RenderStateChartHTML(d, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `id="A"`) {
		t.Fatal("expected state A to appear in rendered output")
	}
	if !strings.Contains(out, `id="B"`) {
		t.Fatal("expected state B to appear in rendered output")
	}
}

func TestRenderStateChartPageWrapsInHTMLDocument(t *testing.T) {
	d, err := ir.EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := RenderStateChartPage(d, &buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<html>") {
		t.Fatal("expected a full HTML document")
	}
}
