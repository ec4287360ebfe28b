package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestTourStatsPipeline(t *testing.T) {
	p := TourStatsPipeline()

	assert.Equal(t, []string{"$match", "$group", "$addFields", "$sort"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: "avgPrice", Value: 1}}, p[3][0].Value)

	rounding := p[2][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "$round", Value: bson.A{"$avgPrice", 2}}}, rounding[0].Value)
	assert.Equal(t, bson.D{{Key: "$round", Value: bson.A{"$avgRatings", 2}}}, rounding[1].Value)
}

func TestMonthlyPlanPipeline(t *testing.T) {
	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	p := MonthlyPlanPipeline(from, to)

	assert.Equal(t,
		[]string{"$unwind", "$match", "$group", "$addFields", "$project", "$sort", "$limit"},
		stageNames(p))
	assert.Equal(t, bson.D{{Key: "startDates", Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lt", Value: to},
	}}}, p[1][0].Value)
	assert.Equal(t, bson.D{{Key: "numTourStarts", Value: -1}}, p[5][0].Value)
	assert.Equal(t, 12, p[6][0].Value)
}

func TestDistancesPipeline(t *testing.T) {
	p := DistancesPipeline(-118.11, 34.11, 0.001)

	require.Equal(t, []string{"$geoNear", "$project"}, stageNames(p))
	geo := p[0][0].Value.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "type", Value: "Point"},
		{Key: "coordinates", Value: bson.A{-118.11, 34.11}},
	}, geo[0].Value)
	assert.Equal(t, 0.001, geo[2].Value)
	assert.Equal(t, PublicTours, geo[3].Value)
}

func TestWithinFilter(t *testing.T) {
	f := WithinFilter(-118.11, 34.11, 0.0251)

	want := bson.D{{Key: "startLocation", Value: bson.D{{Key: "$geoWithin", Value: bson.D{
		{Key: "$centerSphere", Value: bson.A{bson.A{-118.11, 34.11}, 0.0251}},
	}}}}}
	assert.Equal(t, want, f)
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()

	got, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("wwwww")
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	e, _ := apperr.As(err)
	assert.Equal(t, "Invalid _id: wwwww.", e.Message)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))
	assert.ErrorIs(t, classify("op", mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "The Forest Hiker" }`,
	}}}
	err := classify("op", dup)
	require.Equal(t, apperr.KindDuplicateKey, apperr.KindOf(err))
	e, _ := apperr.As(err)
	assert.Equal(t, `Duplicate field value: "The Forest Hiker". Please use another value!`, e.Message)

	other := errors.New("connection refused")
	assert.ErrorIs(t, classify("op", other), other)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(classify("op", other)))
}

func TestByID(t *testing.T) {
	id := primitive.NewObjectID()

	assert.Equal(t, bson.D{{Key: "_id", Value: id}}, byID(id, nil))
	assert.Equal(t,
		bson.D{{Key: "$and", Value: bson.A{PublicTours, bson.D{{Key: "_id", Value: id}}}}},
		byID(id, PublicTours))
}

func TestSetFields_SkipsIDAndVersion(t *testing.T) {
	tour := &models.Tour{ID: primitive.NewObjectID(), Name: "The Park Camper", Price: 1497, Version: 3}

	set, err := setFields(tour)
	require.NoError(t, err)

	keys := make([]string, 0, len(set))
	for _, e := range set {
		keys = append(keys, e.Key)
	}
	assert.Contains(t, keys, "name")
	assert.Contains(t, keys, "price")
	assert.NotContains(t, keys, "_id")
	assert.NotContains(t, keys, "__v")
}

func TestRatingStatsPipeline(t *testing.T) {
	id := primitive.NewObjectID()

	p := RatingStatsPipeline(id)

	assert.Equal(t, []string{"$match", "$group"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: "tour", Value: id}}, p[0][0].Value)
}
