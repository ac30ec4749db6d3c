package fruitgraph

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// ErrNotFound is returned by lookups when no node matches.
var ErrNotFound = errors.New("record not found")

// Repository provides CRUD operations for an entity type T whose fields are
// mapped to node properties with `crud` struct tags.
type Repository[T any] struct {
	runner DBRunner
	meta   *entityMetadata
}

// NewRepository creates a repository for T. It fails when T's tags are invalid.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	meta, err := parseTags[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		runner: runner,
		meta:   meta,
	}, nil
}

// Label returns the node label T is stored under.
func (r *Repository[T]) Label() string {
	return r.meta.Label
}

// Save creates the node or updates the existing one. It MERGEs on the
// primary key and SETs every other mapped property.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("save %s: nil entity", r.meta.Label)
	}
	val := reflect.ValueOf(entity).Elem()
	pkValue := val.FieldByName(r.meta.PKField).Interface()
	mergeProps := map[string]any{r.meta.PKProp: pkValue}

	setProps := make(map[string]any)
	for fieldName, propName := range r.meta.Mappings {
		if fieldName != r.meta.PKField {
			setProps["n."+propName] = val.FieldByName(fieldName).Interface()
		}
	}

	qb := gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", r.meta.Label).WithProperties(mergeProps))
	if len(setProps) > 0 {
		qb = qb.Set(setProps)
	}
	query, params, err := qb.Return("n").Build()
	if err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, query, params); err != nil {
		return fmt.Errorf("save %s: %w", r.meta.Label, err)
	}
	return nil
}

// FindByID returns the node whose primary key equals id, or ErrNotFound.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	props := map[string]any{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		Return("n").
		Build()
	if err != nil {
		return nil, err
	}

	eagerResult, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.meta.Label, err)
	}
	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}
	if len(eagerResult.Records) > 1 {
		// A primary key lookup must be unique.
		return nil, fmt.Errorf("expected 1 record but found %d", len(eagerResult.Records))
	}

	nodeValue, ok := eagerResult.Records[0].Get("n")
	if !ok {
		return nil, fmt.Errorf("could not find return value 'n' in query result")
	}
	node, ok := nodeValue.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("return value 'n' is not a node")
	}

	entity := new(T)
	mapNodeToStruct(node, entity, r.meta)
	return entity, nil
}

// Delete removes the node and all its relationships. Deleting a missing node
// is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	props := map[string]any{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		DetachDelete("n").
		Build()
	if err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, query, params); err != nil {
		return fmt.Errorf("delete %s: %w", r.meta.Label, err)
	}
	return nil
}

// Count returns the number of nodes carrying T's label.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", r.meta.Label)
	rows, err := Execute(ctx, r.runner, query, nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.meta.Label, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return int64Value(rows[0]["total"]), nil
}

// mapNodeToStruct copies node properties into the tagged fields of entity.
// Properties whose type does not fit the field are skipped.
func mapNodeToStruct(node neo4j.Node, entity any, meta *entityMetadata) {
	val := reflect.ValueOf(entity).Elem()
	for fieldName, propName := range meta.Mappings {
		field := val.FieldByName(fieldName)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		propValue, ok := node.Props[propName]
		if !ok || propValue == nil {
			continue
		}
		pv := reflect.ValueOf(propValue)
		if !pv.Type().AssignableTo(field.Type()) {
			continue
		}
		field.Set(pv)
	}
}
