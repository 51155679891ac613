package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v6/neo4j"

	"github.com/brunobiangulo/entgraph/graph"
)

// Neo4jExporter writes graphs into a Neo4j database. Each graph variant is
// stored under its own name so co-occurrence and relation graphs can live
// side by side.
type Neo4jExporter struct {
	driver   neo4j.Driver
	database string
}

// NewNeo4jExporter connects and verifies connectivity.
func NewNeo4jExporter(ctx context.Context, uri, user, password, database string) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriver(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver for %s: %w", uri, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		if closeErr := driver.Close(ctx); closeErr != nil {
			slog.Warn("neo4j: failed to close driver after connectivity check", "error", closeErr)
		}
		return nil, fmt.Errorf("verifying neo4j connectivity at %s: %w", uri, err)
	}

	slog.Info("neo4j: connected", "uri", uri, "user", user)
	return &Neo4jExporter{driver: driver, database: database}, nil
}

// Close releases the driver.
func (x *Neo4jExporter) Close(ctx context.Context) error {
	return x.driver.Close(ctx)
}

const (
	clearVariantQuery = `
		MATCH (e:Entity {variant: $variant})
		DETACH DELETE e`

	upsertEntitiesQuery = `
		UNWIND $nodes AS n
		MERGE (e:Entity {label: n.label, variant: $variant})
		SET e.color = n.color,
		    e.component = n.component`

	upsertRelationsQuery = `
		UNWIND $edges AS r
		MATCH (s:Entity {label: r.source, variant: $variant})
		MATCH (t:Entity {label: r.target, variant: $variant})
		MERGE (s)-[rel:RELATED {kind: r.kind}]->(t)
		SET rel.title = r.title,
		    rel.unit = r.unit,
		    rel.directed = $directed`
)

// ExportParams converts g into query parameters.
func ExportParams(g *graph.Graph, variant string) map[string]any {
	nodes := make([]map[string]any, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		nodes = append(nodes, map[string]any{
			"label":     n.Label,
			"color":     n.Color,
			"component": n.Component,
		})
	}
	edges := make([]map[string]any, 0, g.NumEdges())
	for _, e := range g.Edges() {
		edges = append(edges, map[string]any{
			"source": e.Source,
			"target": e.Target,
			"kind":   string(e.Kind),
			"title":  e.Title,
			"unit":   e.Unit,
		})
	}
	return map[string]any{
		"variant":  variant,
		"directed": g.Directed,
		"nodes":    nodes,
		"edges":    edges,
	}
}

// Export replaces the stored graph for variant with g.
func (x *Neo4jExporter) Export(ctx context.Context, g *graph.Graph, variant string) error {
	params := ExportParams(g, variant)

	for _, q := range []string{clearVariantQuery, upsertEntitiesQuery, upsertRelationsQuery} {
		_, err := neo4j.ExecuteQuery(ctx, x.driver, q, params,
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(x.database),
		)
		if err != nil {
			return fmt.Errorf("neo4j export of %s graph failed: %w", variant, err)
		}
	}

	slog.Info("neo4j: graph exported", "variant", variant, "nodes", g.NumNodes(), "edges", g.NumEdges())
	return nil
}
