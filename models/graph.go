package models

// GraphNode represents a generic node from a Neo4j graph, ready to be
// serialized for a graph visualization client.
type GraphNode struct {
	// ID is the ElementId assigned by Neo4j.
	ID string `json:"id"`

	Labels []string `json:"labels"`

	Properties map[string]any `json:"properties"`
}

// Edge represents a generic relationship between two nodes.
type Edge struct {
	// ID is the ElementId assigned by Neo4j.
	ID string `json:"id"`

	// Source and Target are the ElementIds of the start and end nodes.
	Source string `json:"source"`
	Target string `json:"target"`

	Type string `json:"type"`

	Properties map[string]any `json:"properties"`
}

// GraphResult is a de-duplicated set of nodes and edges, the shape most
// frontend graph libraries (D3.js, Cytoscape.js) consume directly.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}
