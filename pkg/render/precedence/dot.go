package precedence

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/doyel/gantt/pkg/gantt"
)

const defaultFill = "#dbeafe"

// Options configures DOT generation.
type Options struct {
	// Detailed adds the start and end instants to node labels.
	Detailed bool
	// Location resolves zone-less instants for detailed labels.
	Location *time.Location
}

// ToDOT converts the dataset to Graphviz DOT, left to right. When a task
// identifier repeats, the later task provides the node.
func ToDOT(ds *gantt.Dataset, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	owner := make(map[string]int)
	for ri, r := range ds.Resources {
		for _, t := range r.Tasks {
			owner[t.ID] = ri
		}
	}

	for ri, r := range ds.Resources {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", ri)
		fmt.Fprintf(&buf, "    label=%q;\n", r.DisplayName())
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, t := range r.Tasks {
			if owner[t.ID] != ri {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", t.ID, strings.Join(nodeAttrs(ds, t, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, r := range ds.Resources {
		for _, t := range r.Tasks {
			for _, succ := range t.Successors {
				if _, ok := owner[succ]; !ok {
					continue
				}
				fmt.Fprintf(&buf, "  %q -> %q;\n", t.ID, succ)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(ds *gantt.Dataset, t gantt.Task, opts Options) []string {
	fill := t.Color
	if fill == "" && t.BatchID != "" {
		if b, ok := ds.Batch(t.BatchID); ok {
			fill = b.Color
		}
	}
	if fill == "" {
		fill = defaultFill
	}
	return []string{
		fmt.Sprintf("label=%q", label(t, opts)),
		fmt.Sprintf("fillcolor=%q", fill),
	}
}

func label(t gantt.Task, opts Options) string {
	l := t.DisplayLabel()
	if !opts.Detailed {
		return l
	}
	start, errS := t.Start.Resolve(opts.Location)
	end, errE := t.End.Resolve(opts.Location)
	if errS != nil || errE != nil {
		return l + "\n(invalid range)"
	}
	return fmt.Sprintf("%s\n%s\n%s", l, start.Format("Jan 2 15:04"), end.Format("Jan 2 15:04"))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a pixel
// viewBox at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
