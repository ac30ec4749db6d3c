package fruit

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/docstore"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// Detail is the response of GetByID.
type Detail struct {
	FruitID  string        `json:"fruit_id"`
	Detail   models.Record `json:"detail"`
	Benefits []string      `json:"benefits"`
}

// GetByID returns the record and its benefits. A graph failure is returned
// as CodeStoreUnavailable; single-fruit reads do not degrade.
func (s *Service) GetByID(ctx context.Context, fruitID string) (detail *Detail, err error) {
	fruitID = strings.TrimSpace(fruitID)
	ctx, span := s.start(ctx, "GetByID", attribute.String("fruit.id", fruitID))
	defer func() { finish(span, err) }()

	if fruitID == "" {
		return nil, invalidArgument("fruit_id is required")
	}
	rec, err := s.docs.FindByID(ctx, fruitID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, notFound("fruit " + fruitID + " not found")
	}
	if err != nil {
		return nil, storeUnavailable("load document", err)
	}

	benefits, err := s.graph.Benefits(ctx, fruitID)
	if err != nil {
		return nil, storeUnavailable("load benefits", err)
	}
	benefits = append([]string{}, benefits...)
	sort.Strings(benefits)
	return &Detail{FruitID: fruitID, Detail: rec, Benefits: benefits}, nil
}

// Create stores a new record in the document store, then merges its fruit
// node and benefit relationships into the graph. There is no compensation
// when the graph write fails after the insert.
func (s *Service) Create(ctx context.Context, input map[string]any) (err error) {
	ctx, span := s.start(ctx, "Create")
	defer func() { finish(span, err) }()

	fruitID := models.Record(input).FruitID()
	if fruitID == "" {
		return invalidArgument("fruit_id is required")
	}
	span.SetAttributes(attribute.String("fruit.id", fruitID))

	benefits, _, err := benefitsOf(input)
	if err != nil {
		return err
	}

	doc := documentFields(input)
	doc[models.KeyFruitID] = fruitID
	if err := s.docs.Insert(ctx, doc); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return conflict("fruit "+fruitID+" already exists", err)
		}
		return storeUnavailable("insert document", err)
	}

	if err := s.graph.MergeFruit(ctx, doc.Fruit(), benefits); err != nil {
		s.diverged(ctx, "create", fruitID, err)
		return storeUnavailable("document stored but graph write failed", err)
	}
	return nil
}

// Update merges the supplied fields into the record. fruit_id and _id are
// never overwritten. Display names are copied to the graph node when it
// exists, and a supplied benefit list replaces every existing benefit
// relationship and clears any benefit list left in the document. Updating an unknown fruit succeeds without effect.
func (s *Service) Update(ctx context.Context, fruitID string, input map[string]any) (err error) {
	fruitID = strings.TrimSpace(fruitID)
	ctx, span := s.start(ctx, "Update", attribute.String("fruit.id", fruitID))
	defer func() { finish(span, err) }()

	if fruitID == "" {
		return invalidArgument("fruit_id is required")
	}
	benefits, replace, err := benefitsOf(input)
	if err != nil {
		return err
	}

	fields := documentFields(input)
	delete(fields, models.KeyFruitID)
	if len(fields) > 0 {
		if err := s.docs.UpdateFields(ctx, fruitID, fields); err != nil {
			return storeUnavailable("update document", err)
		}
	}

	nameVI, nameEN := stringField(fields, models.KeyNameVI), stringField(fields, models.KeyNameEN)
	if nameVI != nil || nameEN != nil {
		if err := s.graph.RenameFruit(ctx, fruitID, nameVI, nameEN); err != nil {
			s.diverged(ctx, "update", fruitID, err)
			return storeUnavailable("document updated but graph write failed", err)
		}
	}

	if replace {
		if err := s.graph.ReplaceBenefits(ctx, fruitID, benefits); err != nil {
			s.diverged(ctx, "update", fruitID, err)
			return storeUnavailable("document updated but benefit replace failed", err)
		}
		if err := s.dropLegacyBenefits(ctx, fruitID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record and then detach-deletes the fruit node.
func (s *Service) Delete(ctx context.Context, fruitID string) (err error) {
	fruitID = strings.TrimSpace(fruitID)
	ctx, span := s.start(ctx, "Delete", attribute.String("fruit.id", fruitID))
	defer func() { finish(span, err) }()

	if fruitID == "" {
		return invalidArgument("fruit_id is required")
	}
	if err := s.docs.Delete(ctx, fruitID); err != nil {
		return storeUnavailable("delete document", err)
	}
	if err := s.graph.DeleteFruit(ctx, fruitID); err != nil {
		s.diverged(ctx, "delete", fruitID, err)
		return storeUnavailable("document deleted but graph delete failed", err)
	}
	return nil
}

// FruitGraph returns the fruit's benefit sub-graph as nodes and edges.
func (s *Service) FruitGraph(ctx context.Context, fruitID string) (graph *models.GraphResult, err error) {
	fruitID = strings.TrimSpace(fruitID)
	ctx, span := s.start(ctx, "FruitGraph", attribute.String("fruit.id", fruitID))
	defer func() { finish(span, err) }()

	if fruitID == "" {
		return nil, invalidArgument("fruit_id is required")
	}
	graph, err = s.graph.FruitGraph(ctx, fruitID)
	if errors.Is(err, fruitgraph.ErrNotFound) {
		return nil, notFound("fruit " + fruitID + " has no graph node")
	}
	if err != nil {
		return nil, storeUnavailable("load fruit graph", err)
	}
	return graph, nil
}

// Ping checks the graph store and returns the probe rows.
func (s *Service) Ping(ctx context.Context) (rows []map[string]any, err error) {
	ctx, span := s.start(ctx, "Ping")
	defer func() { finish(span, err) }()

	rows, err = s.graph.Ping(ctx)
	if err != nil {
		return nil, storeUnavailable("ping graph", err)
	}
	return rows, nil
}

func (s *Service) diverged(ctx context.Context, op, fruitID string, err error) {
	s.log.ErrorContext(ctx, "document and graph stores diverged",
		"op", op, "fruit_id", fruitID, "error", err)
}
