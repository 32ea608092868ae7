package visualization

import (
	"fmt"
	"strings"

	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// jointStyles maps joint classes to Graphviz edge attributes.
var jointStyles = map[mechanism.JointType]string{
	mechanism.Revolute:   `color="black"`,
	mechanism.Prismatic:  `color="blue"`,
	mechanism.HigherPair: `color="purple", style="dashed"`,
	mechanism.Fixed:      `color="red", style="bold"`,
}

var roleShapes = map[mechanism.Role]string{
	mechanism.RoleGround: "box",
	mechanism.RoleInput:  "diamond",
	mechanism.RoleOutput: "doublecircle",
	mechanism.RoleNone:   "circle",
}

// DOT renders the graph as an undirected Graphviz document. Elements carry
// their positional reference and label; joints carry their type and
// behavior tag.
func DOT(g *mechanism.Graph, title string) string {
	var sb strings.Builder
	sb.WriteString("graph mechanism {\n")
	if title != "" {
		fmt.Fprintf(&sb, "  label=%q;\n  labelloc=\"t\";\n", title)
	}
	sb.WriteString("  node [fontname=\"Helvetica\"];\n")

	for _, e := range g.Elements() {
		label := fmt.Sprintf("E%d", e.ID)
		if e.Label != "" {
			label += "\\n" + e.Label
		}
		fmt.Fprintf(&sb, "  e%d [label=\"%s\", shape=%s];\n", e.ID, label, roleShapes[e.Role])
	}
	for _, j := range g.Joints() {
		label := string(j.Type)
		if j.Tag != "" {
			label += " (" + j.Tag + ")"
		}
		style := jointStyles[j.Type]
		fmt.Fprintf(&sb, "  e%d -- e%d [label=%q, %s];\n", j.A, j.B, label, style)
	}
	sb.WriteString("}\n")
	return sb.String()
}
