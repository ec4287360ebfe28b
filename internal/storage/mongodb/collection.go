package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection — типизированная обёртка над коллекцией MongoDB.
type Collection[T any] struct {
	coll *mongo.Collection
}

// NewCollection создаёт обёртку над коллекцией name.
func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name)}
}

// Name возвращает имя коллекции.
func (c *Collection[T]) Name() string {
	return c.coll.Name()
}

// byID объединяет фильтр по умолчанию с условием на _id.
func byID(id primitive.ObjectID, base bson.D) bson.D {
	if len(base) == 0 {
		return bson.D{{Key: "_id", Value: id}}
	}
	return bson.D{{Key: "$and", Value: bson.A{base, bson.D{{Key: "_id", Value: id}}}}}
}

// FindByID ищет документ по hex-идентификатору с учётом фильтра по умолчанию.
func (c *Collection[T]) FindByID(ctx context.Context, id string, base bson.D) (*T, error) {
	const op = "storage.mongodb.FindByID"

	oid, err := ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.FindOne(ctx, byID(oid, base))
}

// FindOne возвращает первый документ, подходящий под filter.
func (c *Collection[T]) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	const op = "storage.mongodb.FindOne"

	var doc T
	if err := c.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, classify(op, err)
	}
	return &doc, nil
}

// Find возвращает все документы под filter; пустой результат — пустой срез.
func (c *Collection[T]) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	const op = "storage.mongodb.Find"

	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, classify(op, err)
	}
	docs := make([]T, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(op, err)
	}
	return docs, nil
}

// Insert сохраняет новый документ и возвращает его идентификатор.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	const op = "storage.mongodb.Insert"

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, classify(op, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%s: unexpected id type %T", op, res.InsertedID)
	}
	return id, nil
}

// Update записывает все поля документа через $set и увеличивает __v.
func (c *Collection[T]) Update(ctx context.Context, id primitive.ObjectID, doc *T) error {
	const op = "storage.mongodb.Update"

	set, err := setFields(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "__v", Value: 1}}},
	}
	res, err := c.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateFields применяет update к документу и возвращает его новое состояние.
func (c *Collection[T]) UpdateFields(ctx context.Context, filter any, update any) (*T, error) {
	const op = "storage.mongodb.UpdateFields"

	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, classify(op, err)
	}
	return &doc, nil
}

// DeleteByID удаляет документ и возвращает его последнее состояние.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string, base bson.D) (*T, error) {
	const op = "storage.mongodb.DeleteByID"

	oid, err := ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var doc T
	if err := c.coll.FindOneAndDelete(ctx, byID(oid, base)).Decode(&doc); err != nil {
		return nil, classify(op, err)
	}
	return &doc, nil
}

// Aggregate выполняет pipeline и декодирует результат в out (указатель на срез).
func (c *Collection[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	const op = "storage.mongodb.Aggregate"

	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return classify(op, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return classify(op, err)
	}
	return nil
}

// setFields превращает документ в набор полей для $set без _id и __v.
func setFields(doc any) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var all bson.D
	if err := bson.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	set := make(bson.D, 0, len(all))
	for _, e := range all {
		if e.Key == "_id" || e.Key == "__v" {
			continue
		}
		set = append(set, e)
	}
	return set, nil
}
