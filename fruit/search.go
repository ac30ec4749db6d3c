package fruit

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// SearchResult is the response of Search.
type SearchResult struct {
	Query   string      `json:"query"`
	Total   int         `json:"total"`
	Results []SearchHit `json:"results"`
}

// SearchHit is one matched record with its benefits.
type SearchHit struct {
	FruitID  string        `json:"fruit_id"`
	NameVI   string        `json:"name_vi"`
	NameEN   string        `json:"name_en"`
	Benefits []string      `json:"benefits"`
	Detail   models.Record `json:"detail"`
	// BenefitsUnavailable is set when the graph lookup failed and Benefits
	// is empty for that reason rather than because there are none.
	BenefitsUnavailable bool `json:"benefits_unavailable,omitempty"`
}

// BenefitLookup is the outcome of one benefit lookup. Err is non-nil when
// the graph store failed; Names is then empty.
type BenefitLookup struct {
	Names []string
	Err   error
}

// Degraded reports whether the lookup failed upstream.
func (l BenefitLookup) Degraded() bool {
	return l.Err != nil
}

// Search finds records whose Vietnamese or English name contains keyword and
// attaches each record's benefits. Graph failures never fail the search:
// the affected hits carry no benefits and BenefitsUnavailable.
func (s *Service) Search(ctx context.Context, keyword string) (result *SearchResult, err error) {
	keyword = strings.TrimSpace(keyword)
	ctx, span := s.start(ctx, "Search", attribute.String("fruit.query", keyword))
	defer func() { finish(span, err) }()

	if keyword == "" {
		return nil, invalidArgument("missing query parameter q")
	}

	records, err := s.docs.FindByKeyword(ctx, keyword)
	if err != nil {
		return nil, storeUnavailable("search documents", err)
	}

	lookups := s.lookupBenefits(ctx, records)
	hits := make([]SearchHit, len(records))
	for i, rec := range records {
		hits[i] = SearchHit{
			FruitID:             rec.FruitID(),
			NameVI:              rec.String(models.KeyNameVI),
			NameEN:              rec.String(models.KeyNameEN),
			Benefits:            lookups[i].Names,
			Detail:              rec,
			BenefitsUnavailable: lookups[i].Degraded(),
		}
	}
	return &SearchResult{Query: keyword, Total: len(hits), Results: hits}, nil
}

// lookupBenefits queries the graph for every record with at most
// searchConcurrency lookups in flight. The result is index-aligned with
// records.
func (s *Service) lookupBenefits(ctx context.Context, records []models.Record) []BenefitLookup {
	lookups := make([]BenefitLookup, len(records))
	var g errgroup.Group
	g.SetLimit(s.searchConcurrency)
	for i, rec := range records {
		g.Go(func() error {
			lookups[i] = s.benefitLookup(ctx, rec.FruitID())
			return nil
		})
	}
	_ = g.Wait()
	return lookups
}

func (s *Service) benefitLookup(ctx context.Context, fruitID string) BenefitLookup {
	if fruitID == "" {
		return BenefitLookup{Names: []string{}}
	}
	names, err := s.graph.Benefits(ctx, fruitID)
	if err != nil {
		s.log.WarnContext(ctx, "benefit lookup failed, returning no benefits",
			"fruit_id", fruitID, "error", err)
		return BenefitLookup{Names: []string{}, Err: err}
	}
	if names == nil {
		names = []string{}
	}
	return BenefitLookup{Names: names}
}
