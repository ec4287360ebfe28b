package apifeatures

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var notSecret = bson.D{{Key: "secretTour", Value: bson.D{{Key: "$ne", Value: true}}}}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int64
		wantLimit int64
	}{
		{name: "defaults", query: "", wantSkip: 0, wantLimit: 100},
		{name: "non-numeric page", query: "page=abc", wantSkip: 0, wantLimit: 100},
		{name: "zero limit", query: "limit=0", wantSkip: 0, wantLimit: 100},
		{name: "negative page", query: "page=-3&limit=10", wantSkip: 0, wantLimit: 10},
		{name: "third page", query: "page=3&limit=10", wantSkip: 20, wantLimit: 10},
		{name: "huge page", query: "page=9223372036854775807&limit=100", wantSkip: math.MaxInt64, wantLimit: 100},
		{name: "huge limit", query: "page=2&limit=9223372036854775807", wantSkip: math.MaxInt64, wantLimit: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			opts := New(nil, q).Paginate().Options()

			require.NotNil(t, opts.Skip)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, tt.wantSkip, *opts.Skip)
			assert.Equal(t, tt.wantLimit, *opts.Limit)
		})
	}
}

func TestFilter_Operators(t *testing.T) {
	q := url.Values{"price[gte]": {"100"}, "duration[lt]": {"7.5"}}

	got := New(nil, q).Filter().Query()

	want := bson.D{
		{Key: "duration", Value: bson.D{{Key: "$lt", Value: 7.5}}},
		{Key: "price", Value: bson.D{{Key: "$gte", Value: int64(100)}}},
	}
	assert.Equal(t, want, got)
}

func TestFilter_RangeOnSameField(t *testing.T) {
	q := url.Values{"price[gte]": {"100"}, "price[lte]": {"500"}}

	got := New(nil, q).Filter().Query()

	want := bson.D{
		{Key: "price", Value: bson.D{
			{Key: "$gte", Value: int64(100)},
			{Key: "$lte", Value: int64(500)},
		}},
	}
	assert.Equal(t, want, got)
}

func TestFilter_DropsReservedAndUnsafeKeys(t *testing.T) {
	q := url.Values{
		"page":           {"2"},
		"sort":           {"price"},
		"limit":          {"5"},
		"fields":         {"name"},
		"$where":         {"1"},
		"price[$ne]":     {"1"},
		"price[regex]":   {"x"},
		"difficulty":     {"easy"},
		"secretTour":     {"true"},
		"ratingsAverage": {"4.5"},
	}

	got := New(nil, q).Filter().Query()

	want := bson.D{
		{Key: "difficulty", Value: "easy"},
		{Key: "ratingsAverage", Value: 4.5},
		{Key: "secretTour", Value: true},
	}
	assert.Equal(t, want, got)
}

func TestFilter_BaseCannotBeOverridden(t *testing.T) {
	q := url.Values{"secretTour": {"true"}}

	got := New(notSecret, q).Filter().Query()

	want := bson.D{{Key: "$and", Value: bson.A{
		notSecret,
		bson.D{{Key: "secretTour", Value: true}},
	}}}
	assert.Equal(t, want, got)
}

func TestFilter_BaseOnly(t *testing.T) {
	got := New(notSecret, url.Values{"page": {"2"}}).Filter().Query()

	assert.Equal(t, notSecret, got)
}

func TestFilter_ParameterPollution(t *testing.T) {
	q := url.Values{
		"duration": {"5", "9"},
		"name":     {"first", "second"},
	}

	got := New(nil, q).Filter().Query()

	want := bson.D{
		{Key: "duration", Value: bson.D{{Key: "$in", Value: bson.A{int64(5), int64(9)}}}},
		{Key: "name", Value: "second"},
	}
	assert.Equal(t, want, got)
}

func TestSort(t *testing.T) {
	q := url.Values{"sort": {"price,-ratingsAverage"}}

	opts := New(nil, q).Sort().Options()

	want := bson.D{
		{Key: "price", Value: 1},
		{Key: "ratingsAverage", Value: -1},
	}
	assert.Equal(t, want, opts.Sort)
}

func TestSort_Absent(t *testing.T) {
	opts := New(nil, url.Values{}).Sort().Options()

	assert.Nil(t, opts.Sort)
}

func TestLimitFields(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  bson.D
	}{
		{
			name:  "default hides version",
			query: url.Values{},
			want:  bson.D{{Key: "__v", Value: 0}},
		},
		{
			name:  "inclusion",
			query: url.Values{"fields": {"name,price"}},
			want:  bson.D{{Key: "name", Value: 1}, {Key: "price", Value: 1}},
		},
		{
			name:  "exclusion",
			query: url.Values{"fields": {"-description"}},
			want:  bson.D{{Key: "description", Value: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := New(nil, tt.query).LimitFields().Options()
			assert.Equal(t, tt.want, opts.Projection)
		})
	}
}

func TestApply_Chain(t *testing.T) {
	q := url.Values{
		"difficulty": {"easy"},
		"sort":       {"-price"},
		"fields":     {"name"},
		"page":       {"2"},
		"limit":      {"3"},
	}

	f := New(nil, q).Apply()

	assert.Equal(t, bson.D{{Key: "difficulty", Value: "easy"}}, f.Query())
	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, f.Options().Sort)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, f.Options().Projection)
	assert.Equal(t, int64(3), *f.Options().Skip)
	assert.Equal(t, int64(3), *f.Options().Limit)
}
