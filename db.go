// Package fruitgraph is the graph side of the fruit catalogue. It wraps the
// official Neo4j Go driver with an eager, session-per-call executor, a
// tag-driven generic repository and a Manager exposing the fruit/benefit
// graph operations.
package fruitgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jExecutor is a concrete implementation of the DBRunner interface that uses the
// official Neo4j Go driver. It manages the driver instance, the target database name
// and the per-call timeout.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string
	// Timeout bounds every query. Zero means no bound beyond the caller's context.
	Timeout time.Duration
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username, password: Basic auth credentials.
//   - dbName: The name of the database to run queries against (e.g., "neo4j").
//   - timeout: Upper bound for a single query.
func NewNeo4jExecutor(uri, username, password, dbName string, timeout time.Duration) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName, Timeout: timeout}, nil
}

// Verify checks the connectivity to the Neo4j server.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver and its connection pool.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a Cypher query through neo4j.ExecuteQuery, which acquires a
// session, runs the query in a managed transaction and releases the session
// on every exit path. All records are buffered before returning.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Execute runs query with params and returns every row as a key→value map.
func (e *Neo4jExecutor) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return Execute(ctx, e, query, params)
}

// Execute runs query on any DBRunner and materializes the rows as maps.
func Execute(ctx context.Context, runner DBRunner, query string, params map[string]any) ([]map[string]any, error) {
	result, err := runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}

func (e *Neo4jExecutor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}
