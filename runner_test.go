package fruitgraph

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type call struct {
	query  string
	params map[string]any
}

// fakeRunner records every query and answers through respond.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	respond func(query string, params map[string]any) (*neo4j.EagerResult, error)
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{query: query, params: params})
	f.mu.Unlock()
	if f.respond == nil {
		return &neo4j.EagerResult{}, nil
	}
	return f.respond(query, params)
}

func (f *fakeRunner) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.query
	}
	return out
}

func rowsResult(keys []string, rows ...[]any) *neo4j.EagerResult {
	result := &neo4j.EagerResult{Keys: keys}
	for _, values := range rows {
		result.Records = append(result.Records, &neo4j.Record{Keys: keys, Values: values})
	}
	return result
}

func paramValues(params map[string]any) []any {
	out := make([]any, 0, len(params))
	for _, v := range params {
		out = append(out, v)
	}
	return out
}
