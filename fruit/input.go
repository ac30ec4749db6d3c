package fruit

import (
	"fmt"
	"strings"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// benefitKeys are the input keys carrying the benefit list, in priority
// order. cong_dung is the legacy name.
var benefitKeys = []string{models.KeyBenefits, models.KeyCongDung}

// benefitsOf extracts the benefit list from input. present reports whether
// any benefit key was supplied; a null value means an empty list. Names are
// trimmed, blanks dropped and duplicates removed, keeping first occurrence.
func benefitsOf(input map[string]any) (benefits []string, present bool, err error) {
	for _, key := range benefitKeys {
		raw, ok := input[key]
		if !ok {
			continue
		}
		benefits, err = stringSet(raw)
		if err != nil {
			return nil, true, invalidArgument(fmt.Sprintf("%s: %v", key, err))
		}
		return benefits, true, nil
	}
	return nil, false, nil
}

func stringSet(raw any) ([]string, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", raw)
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d must be a string, got %T", i, item)
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// documentFields returns input without the keys the document store must
// not receive: benefit lists (owned by the graph) and Mongo's _id.
func documentFields(input map[string]any) models.Record {
	out := make(models.Record, len(input))
	for k, v := range input {
		switch k {
		case models.KeyBenefits, models.KeyCongDung, models.KeyMongoID:
			continue
		}
		out[k] = v
	}
	return out
}

func stringField(fields map[string]any, key string) *string {
	s, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &s
}
