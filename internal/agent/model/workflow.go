package model

import (
	"fmt"
	"strings"
)

// Edge is one directed transition in the workflow graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WorkflowDescription is the introspection view of the engine's state table,
// consumed by the dashboard collaborator. It must reflect the executed table
// exactly, back-edges included.
type WorkflowDescription struct {
	NodeNames []string `json:"node_names"`
	Edges     []Edge   `json:"edges"`
	HasCycles bool     `json:"has_cycles"`
}

// Mermaid renders the workflow as a Mermaid flowchart.
func (d WorkflowDescription) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range d.NodeNames {
		fmt.Fprintf(&b, "    %s[%s]\n", mermaidID(n), n)
	}
	for _, e := range d.Edges {
		fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(e.From), mermaidID(e.To))
	}
	return b.String()
}

func mermaidID(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
