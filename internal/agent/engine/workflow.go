package engine

import (
	"github.com/replysight/server/internal/agent/model"
)

// workflowNodes and workflowEdges are the engine's transition table. The
// introspection view below is computed from this same table, so the
// dashboard cannot drift from what the engine executes.
var workflowNodes = []State{
	StateStart,
	StateAgentDecide,
	StateRouteTool,
	StateAcademicFetch,
	StateBestPracticeFetch,
	StateExtractAcademic,
	StateExtractBestPract,
	StateRouteAction,
	StateQualityGate,
	StateCompose,
	StateEnd,
}

var workflowEdges = []model.Edge{
	{From: string(StateStart), To: string(StateAgentDecide)},
	{From: string(StateAgentDecide), To: string(StateRouteTool)},
	{From: string(StateAgentDecide), To: string(StateRouteAction)},
	{From: string(StateRouteTool), To: string(StateAcademicFetch)},
	{From: string(StateRouteTool), To: string(StateBestPracticeFetch)},
	{From: string(StateAcademicFetch), To: string(StateExtractAcademic)},
	{From: string(StateBestPracticeFetch), To: string(StateExtractBestPract)},
	{From: string(StateExtractAcademic), To: string(StateAgentDecide)},
	{From: string(StateExtractBestPract), To: string(StateAgentDecide)},
	{From: string(StateRouteAction), To: string(StateCompose)},
	{From: string(StateRouteAction), To: string(StateQualityGate)},
	{From: string(StateQualityGate), To: string(StateAgentDecide)},
	{From: string(StateQualityGate), To: string(StateEnd)},
	{From: string(StateCompose), To: string(StateQualityGate)},
}

// DescribeWorkflow returns the node set and transition table for the
// visualization collaborator, cyclic edges included.
func (e *Engine) DescribeWorkflow() model.WorkflowDescription {
	nodes := make([]string, len(workflowNodes))
	for i, n := range workflowNodes {
		nodes[i] = string(n)
	}
	edges := make([]model.Edge, len(workflowEdges))
	copy(edges, workflowEdges)

	return model.WorkflowDescription{
		NodeNames: nodes,
		Edges:     edges,
		HasCycles: hasCycles(nodes, edges),
	}
}

// hasCycles reports whether the directed edge set contains a cycle, via
// iterative DFS with a three-color marking.
func hasCycles(nodes []string, edges []model.Edge) bool {
	adj := make(map[string][]string, len(nodes))
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))

	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = gray
		for _, next := range adj[n] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}

	for _, n := range nodes {
		if color[n] == white && visit(n) {
			return true
		}
	}
	return false
}
