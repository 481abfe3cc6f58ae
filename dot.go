package framegraph

import (
	"fmt"
	"strings"
)

// DOT renders the plan as a Graphviz digraph. Passes are boxes labelled
// with their execution position, resources are ellipses labelled with
// their allocation slot and lifetime, and each barrier is an edge into the
// pass it precedes.
func (p *Plan) DOT() string {
	var b strings.Builder
	b.WriteString("digraph framegraph {\n")
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\tnode [fontname=\"monospace\"];\n")

	for i, pp := range p.Passes {
		fmt.Fprintf(&b, "\tp%d [shape=box,label=%q];\n", pp.Handle, fmt.Sprintf("%d: %s", i, pp.Name))
	}

	for r, res := range p.Resources {
		if !res.Used() {
			continue
		}
		periph := 1
		if res.Imported {
			periph = 2
		}
		label := fmt.Sprintf("%s\nslot %d [%d,%d]", res.Name, p.AllocationIDs[r], res.FirstUse, res.LastUse)
		fmt.Fprintf(&b, "\tr%d [shape=ellipse,peripheries=%d,label=%q];\n", r, periph, label)
	}

	for _, e := range p.Edges {
		fmt.Fprintf(&b, "\tp%d -> p%d [style=bold];\n", e[0], e[1])
	}

	for _, br := range p.Barriers {
		src := fmt.Sprintf("p%d", br.Src)
		if br.Src == PlanStart {
			src = fmt.Sprintf("r%d", br.Resource)
		}
		label := fmt.Sprintf("%s: %s->%s", p.Resources[br.Resource].Name, br.Old, br.New)
		fmt.Fprintf(&b, "\t%s -> p%d [style=dashed,label=%q];\n", src, br.Dst, label)
	}

	b.WriteString("}\n")
	return b.String()
}
