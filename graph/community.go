package graph

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Components returns the connected components of g, treating directed edges
// as undirected (weak connectivity). Components and their members follow
// node insertion order.
func Components(g *Graph) [][]string {
	if g.NumNodes() == 0 {
		return nil
	}

	adj := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		si := g.nodeIndex[e.Source]
		ti := g.nodeIndex[e.Target]
		adj[si] = append(adj[si], ti)
		adj[ti] = append(adj[ti], si)
	}

	visited := make([]bool, len(g.nodes))
	var components [][]string

	for i := range g.nodes {
		if visited[i] {
			continue
		}
		var comp []string
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, g.nodes[node].Label)
			for _, to := range adj[node] {
				if !visited[to] {
					visited[to] = true
					queue = append(queue, to)
				}
			}
		}
		components = append(components, comp)
	}

	slog.Debug("community: BFS found components",
		"components", len(components), "largest", largestComp(components))
	return components
}

func largestComp(comps [][]string) int {
	max := 0
	for _, c := range comps {
		if len(c) > max {
			max = len(c)
		}
	}
	return max
}

// AssignColors gives every component one random color and records the
// component index on each node. It returns the components.
func AssignColors(g *Graph, rng *rand.Rand) [][]string {
	comps := Components(g)
	for ci, comp := range comps {
		color := RandomColor(rng)
		for _, label := range comp {
			n := g.nodes[g.nodeIndex[label]]
			n.Color = color
			n.Component = ci
		}
	}
	return comps
}

// RandomColor returns a "#rrggbb" color.
func RandomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%06x", rng.IntN(0x1000000))
}
