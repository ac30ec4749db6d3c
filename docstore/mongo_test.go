package docstore

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDistinctCountsPipelineExcludesEmptyArrays(t *testing.T) {
	p := distinctCountsPipeline("regions")
	require.Len(t, p, 4)

	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.M{"regions": bson.M{"$type": "array", "$ne": bson.A{}}}, p[0][0].Value)
	assert.Equal(t, "$unwind", p[1][0].Key)
	assert.Equal(t, "$regions", p[1][0].Value)
	assert.Equal(t, "$group", p[2][0].Key)
	assert.Equal(t, "$sort", p[3][0].Key)
}

func TestToRecordNormalizesDriverTypes(t *testing.T) {
	doc := bson.M{
		"_id":            primitive.NewObjectID(),
		"fruit_id":       "apple1",
		"harvest_season": primitive.A{"summer", "autumn"},
		"nutrition":      primitive.M{"kcal": int32(52), "tags": primitive.A{"sweet"}},
		"origin":         primitive.D{{Key: "country", Value: "VN"}},
	}

	r := toRecord(doc)
	assert.NotContains(t, r, "_id")
	assert.Equal(t, []any{"summer", "autumn"}, r["harvest_season"])
	assert.Equal(t, map[string]any{"kcal": int32(52), "tags": []any{"sweet"}}, r["nutrition"])
	assert.Equal(t, map[string]any{"country": "VN"}, r["origin"])
}

func TestKeywordFilterMatchesLiterally(t *testing.T) {
	f := keywordFilter("a.b(c")
	pattern := bson.M{"$regex": `a\.b\(c`, "$options": "i"}
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"name_vi": pattern},
		bson.M{"name_en": pattern},
	}}, f)

	re := regexp.MustCompile("(?i)" + pattern["$regex"].(string))
	assert.True(t, re.MatchString("xxA.B(Cyy"))
	assert.False(t, re.MatchString("aXb(c"))
}

func TestUnsetUpdate(t *testing.T) {
	assert.Equal(t,
		bson.M{"$unset": bson.M{"benefits": "", "cong_dung": ""}},
		unsetUpdate([]string{"benefits", "cong_dung"}))
}

func TestInsertErrorMapsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
	err := insertError("apple1", dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "apple1")

	other := errors.New("connection reset")
	err = insertError("apple1", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrDuplicateKey)

	assert.NoError(t, insertError("apple1", nil))
}
