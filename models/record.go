package models

import "strings"

// Well-known record keys.
const (
	KeyFruitID       = "fruit_id"
	KeyNameVI        = "name_vi"
	KeyNameEN        = "name_en"
	KeyHarvestSeason = "harvest_season"
	KeyRegions       = "regions"
	KeyBenefits      = "benefits"
	KeyCongDung      = "cong_dung"
	KeyMongoID       = "_id"
)

// Record is a schema-flexible fruit document as stored in the document store.
type Record map[string]any

// FruitID returns the trimmed fruit_id of the record, or "" when it is
// missing or not a string.
func (r Record) FruitID() string {
	id, _ := r[KeyFruitID].(string)
	return strings.TrimSpace(id)
}

// String returns the string value stored under key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Fruit projects the record onto its graph node.
func (r Record) Fruit() Fruit {
	return Fruit{
		FruitID: r.FruitID(),
		NameVI:  r.String(KeyNameVI),
		NameEN:  r.String(KeyNameEN),
	}
}
