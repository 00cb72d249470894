// Package graph stores the corpus in Neo4j: one SanctionedEntity node per
// entity, linked to its Alias nodes and to shared Program nodes.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"sdnscreen/internal/store"
)

var _ store.Store = (*Client)(nil)
var _ store.CypherRunner = (*Client)(nil)

type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewClient(ctx context.Context, uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT sanctioned_entity_id IF NOT EXISTS
FOR (e:SanctionedEntity) REQUIRE e.entity_id IS UNIQUE`,
		`CREATE CONSTRAINT program_name IF NOT EXISTS
FOR (p:Program) REQUIRE p.name IS UNIQUE`,
		`CREATE INDEX sanctioned_entity_type IF NOT EXISTS FOR (e:SanctionedEntity) ON (e.type)`,
		`CREATE INDEX alias_normalized_name IF NOT EXISTS FOR (a:Alias) ON (a.normalized_name)`,
	}

	for _, stmt := range statements {
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		}); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	return nil
}
