// Package apifeatures переводит query-строку запроса в фильтр, сортировку,
// проекцию и пагинацию для MongoDB.
package apifeatures

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 100
)

var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

var operators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Whitelist — поля, для которых повтор параметра превращается в $in.
var Whitelist = map[string]struct{}{
	"duration":        {},
	"ratingsAverage":  {},
	"ratingsQuantity": {},
	"difficulty":      {},
	"price":           {},
}

// Features накапливает запрос по цепочке Filter -> Sort -> LimitFields -> Paginate.
type Features struct {
	base   bson.D
	query  url.Values
	filter bson.D
	opts   *options.FindOptions
}

// New создаёт транслятор. base — фильтр по умолчанию, который пользователь не может переопределить.
func New(base bson.D, query url.Values) *Features {
	if query == nil {
		query = url.Values{}
	}
	return &Features{
		base:   base,
		query:  query,
		filter: base,
		opts:   options.Find(),
	}
}

// Filter строит фильтр из не зарезервированных параметров.
func (f *Features) Filter() *Features {
	keys := make([]string, 0, len(f.query))
	for k := range f.query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	predicates := make(map[string]bson.D)
	var order []string
	user := bson.D{}

	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}
		values := f.query[key]
		if len(values) == 0 || strings.Contains(key, "$") {
			continue
		}

		field, op, hasOp := splitOperator(key)
		if field == "" {
			continue
		}
		if hasOp {
			mongoOp, ok := operators[op]
			if !ok {
				continue
			}
			if _, seen := predicates[field]; !seen {
				order = append(order, field)
			}
			predicates[field] = append(predicates[field], bson.E{Key: mongoOp, Value: coerce(values[len(values)-1])})
			continue
		}

		if _, ok := Whitelist[field]; ok && len(values) > 1 {
			in := make(bson.A, 0, len(values))
			for _, v := range values {
				in = append(in, coerce(v))
			}
			user = append(user, bson.E{Key: field, Value: bson.D{{Key: "$in", Value: in}}})
			continue
		}
		user = append(user, bson.E{Key: field, Value: coerce(values[len(values)-1])})
	}

	for _, field := range order {
		user = append(user, bson.E{Key: field, Value: predicates[field]})
	}

	f.filter = combine(f.base, user)
	return f
}

// Sort задаёт порядок сортировки; префикс "-" означает убывание.
func (f *Features) Sort() *Features {
	raw := f.query.Get("sort")
	if raw == "" {
		return f
	}
	spec := bson.D{}
	for _, name := range splitList(raw) {
		dir := 1
		if strings.HasPrefix(name, "-") {
			dir = -1
			name = strings.TrimPrefix(name, "-")
		}
		if name == "" || strings.Contains(name, "$") {
			continue
		}
		spec = append(spec, bson.E{Key: name, Value: dir})
	}
	if len(spec) > 0 {
		f.opts.SetSort(spec)
	}
	return f
}

// LimitFields задаёт проекцию; без параметра скрывается только __v.
func (f *Features) LimitFields() *Features {
	raw := f.query.Get("fields")
	if raw == "" {
		f.opts.SetProjection(bson.D{{Key: "__v", Value: 0}})
		return f
	}
	proj := bson.D{}
	for _, name := range splitList(raw) {
		val := 1
		if strings.HasPrefix(name, "-") {
			val = 0
			name = strings.TrimPrefix(name, "-")
		}
		if name == "" || strings.Contains(name, "$") {
			continue
		}
		proj = append(proj, bson.E{Key: name, Value: val})
	}
	if len(proj) == 0 {
		proj = bson.D{{Key: "__v", Value: 0}}
	}
	f.opts.SetProjection(proj)
	return f
}

// Paginate задаёт skip и limit.
func (f *Features) Paginate() *Features {
	page := positiveInt(f.query.Get("page"), DefaultPage)
	limit := positiveInt(f.query.Get("limit"), DefaultLimit)
	// страница за пределами int64 даёт пустой результат
	skip := int64(math.MaxInt64)
	if page-1 <= math.MaxInt64/limit {
		skip = (page - 1) * limit
	}
	f.opts.SetSkip(skip)
	f.opts.SetLimit(limit)
	return f
}

// Apply применяет все шаги в стандартном порядке.
func (f *Features) Apply() *Features {
	return f.Filter().Sort().LimitFields().Paginate()
}

// Query возвращает итоговый фильтр.
func (f *Features) Query() bson.D {
	if f.filter == nil {
		return bson.D{}
	}
	return f.filter
}

// Options возвращает опции поиска.
func (f *Features) Options() *options.FindOptions {
	return f.opts
}

func combine(base, user bson.D) bson.D {
	switch {
	case len(base) == 0 && len(user) == 0:
		return bson.D{}
	case len(base) == 0:
		return user
	case len(user) == 0:
		return base
	}
	return bson.D{{Key: "$and", Value: bson.A{base, user}}}
}

// splitOperator разбирает ключ вида price[gte].
func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func coerce(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func positiveInt(raw string, def int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
