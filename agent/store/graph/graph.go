// Package graph implements the graph collaborator on Neo4j.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type Config struct {
	URI      string `envconfig:"URI" split_words:"true" default:"bolt://localhost:7687"`
	User     string `envconfig:"USER" split_words:"true" default:"neo4j"`
	Password string `envconfig:"PASSWORD" split_words:"true" required:"true"`
	Database string `envconfig:"DATABASE" split_words:"true" default:"neo4j"`
}

// Store wraps one Neo4j driver. Sessions are opened per query.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ contractx.GraphStore = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Store{driver: driver, database: cfg.Database}, nil
}

// Run executes a read query and returns one property map per record. A record
// whose first value is a node yields the node's properties; anything else
// yields the record's column map.
func (s *Store) Run(ctx context.Context, query string) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("run graph query: %w", err)
	}

	var out []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		if len(record.Values) > 0 {
			if node, ok := record.Values[0].(neo4j.Node); ok {
				out = append(out, node.Props)
				continue
			}
		}
		out = append(out, record.AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("consume graph result: %w", err)
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
