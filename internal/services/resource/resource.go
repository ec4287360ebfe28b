// Package resource реализует обобщённые CRUD-операции над коллекциями документов.
//
// Один Service обслуживает один вид ресурса (туры, пользователи, отзывы).
// Особенности вида задаются в Kind: фильтр по умолчанию, загрузка связанных
// документов, запрет на изменение полей и хук после записи.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/tour-booking/internal/cache"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apifeatures"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Store описывает операции коллекции, нужные обобщённому сервису.
type Store[T any] interface {
	FindByID(ctx context.Context, id string, base bson.D) (*T, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error)
	Insert(ctx context.Context, doc *T) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, doc *T) error
	DeleteByID(ctx context.Context, id string, base bson.D) (*T, error)
}

// Cache описывает методы для кэширования документов.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// Doc связывает тип документа с его указателем, реализующим models.Document.
type Doc[T any] interface {
	*T
	models.Document
}

// Kind описывает вид ресурса.
type Kind[T any] struct {
	// Name — имя вида в сообщениях об ошибках ("tour").
	Name string
	// Collection — имя коллекции, префикс ключей кеша.
	Collection string
	// DefaultFilter добавляется к каждому чтению, изменению и удалению.
	DefaultFilter bson.D
	// Populate загружает связанные документы для любого чтения.
	Populate func(ctx context.Context, docs []*T) error
	// PopulateOne дополнительно загружает связанные документы в GetOne.
	PopulateOne func(ctx context.Context, doc *T) error
	// Protect восстанавливает в merged поля, которые нельзя менять через UpdateOne.
	Protect func(old, merged *T)
	// PostWrite вызывается после создания, обновления и удаления документа.
	PostWrite func(ctx context.Context, doc *T) error
	// CacheTTL > 0 включает кеширование GetOne.
	CacheTTL time.Duration
}

// Service реализует CRUD для одного вида ресурса.
type Service[T any, PT Doc[T]] struct {
	kind  Kind[T]
	store Store[T]
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// Option настраивает Service.
type Option[T any, PT Doc[T]] func(*Service[T, PT])

// WithCache подключает кеш документов.
func WithCache[T any, PT Doc[T]](c Cache) Option[T, PT] {
	return func(s *Service[T, PT]) {
		s.cache = c
	}
}

// WithClock подменяет источник времени.
func WithClock[T any, PT Doc[T]](now func() time.Time) Option[T, PT] {
	return func(s *Service[T, PT]) {
		s.now = now
	}
}

// New создаёт сервис ресурса.
func New[T any, PT Doc[T]](kind Kind[T], store Store[T], log *slog.Logger, opts ...Option[T, PT]) *Service[T, PT] {
	s := &Service[T, PT]{
		kind:  kind,
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind возвращает описание вида ресурса.
func (s *Service[T, PT]) Kind() Kind[T] {
	return s.kind
}

// GetOne возвращает документ по идентификатору.
func (s *Service[T, PT]) GetOne(ctx context.Context, id string) (*T, error) {
	const op = "resource.GetOne"

	if _, err := mongodb.ParseID(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, cached := s.fromCache(ctx, id)
	if !cached {
		var err error
		doc, err = s.store.FindByID(ctx, id, s.kind.DefaultFilter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, s.notFound(err))
		}
		s.toCache(ctx, id, doc)
	}

	if err := s.populate(ctx, []*T{doc}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.kind.PopulateOne != nil {
		if err := s.kind.PopulateOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return doc, nil
}

// GetAll возвращает документы по query-строке. owner сужает выборку
// (например, отзывы одного тура) и, как и фильтр по умолчанию, не может быть переопределён запросом.
func (s *Service[T, PT]) GetAll(ctx context.Context, query url.Values, owner bson.D) ([]T, error) {
	const op = "resource.GetAll"

	base := make(bson.D, 0, len(s.kind.DefaultFilter)+len(owner))
	base = append(base, s.kind.DefaultFilter...)
	base = append(base, owner...)

	features := apifeatures.New(base, query).Apply()
	docs, err := s.store.Find(ctx, features.Query(), features.Options())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ptrs := make([]*T, len(docs))
	for i := range docs {
		ptrs[i] = &docs[i]
	}
	if err := s.populate(ctx, ptrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// CreateOne проверяет и сохраняет новый документ.
func (s *Service[T, PT]) CreateOne(ctx context.Context, doc *T) (*T, error) {
	const op = "resource.CreateOne"

	pd := PT(doc)
	pd.BeforeWrite(models.OpCreate, s.now())
	if fields := pd.Validate(models.OpCreate); len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation(fields))
	}

	id, err := s.store.Insert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pd.SetID(id)

	s.log.Info("document created", slog.String("op", op), slog.String("kind", s.kind.Name), slog.String("id", id.Hex()))

	if err := s.postWrite(ctx, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// UpdateOne применяет JSON-патч к документу, проверяет результат слияния и сохраняет его.
func (s *Service[T, PT]) UpdateOne(ctx context.Context, id string, patch []byte) (*T, error) {
	const op = "resource.UpdateOne"

	old, err := s.store.FindByID(ctx, id, s.kind.DefaultFilter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.notFound(err))
	}

	merged, err := s.merge(old, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pm := PT(merged)
	pm.SetID(PT(old).GetID())
	if s.kind.Protect != nil {
		s.kind.Protect(old, merged)
	}

	pm.BeforeWrite(models.OpUpdate, s.now())
	if fields := pm.Validate(models.OpUpdate); len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation(fields))
	}

	if err := s.store.Update(ctx, pm.GetID(), merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.notFound(err))
	}
	s.invalidate(ctx, id)

	if err := s.postWrite(ctx, merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return merged, nil
}

// DeleteOne удаляет документ по идентификатору.
func (s *Service[T, PT]) DeleteOne(ctx context.Context, id string) error {
	const op = "resource.DeleteOne"

	doc, err := s.store.DeleteByID(ctx, id, s.kind.DefaultFilter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, s.notFound(err))
	}
	s.invalidate(ctx, id)

	s.log.Info("document deleted", slog.String("op", op), slog.String("kind", s.kind.Name), slog.String("id", id))

	if err := s.postWrite(ctx, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// merge накладывает патч на глубокую копию документа old.
// Поля, скрытые из JSON (хеш пароля, дата создания тура), патчем не меняются.
// old после merge не меняется, включая указатели и срезы.
func (s *Service[T, PT]) merge(old *T, patch []byte) (*T, error) {
	raw, err := bson.Marshal(old)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	merged := new(T)
	if err := bson.Unmarshal(raw, merged); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	if err := json.Unmarshal(patch, merged); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "Invalid request body", err)
	}
	return merged, nil
}

func (s *Service[T, PT]) populate(ctx context.Context, docs []*T) error {
	if s.kind.Populate == nil || len(docs) == 0 {
		return nil
	}
	return s.kind.Populate(ctx, docs)
}

func (s *Service[T, PT]) postWrite(ctx context.Context, doc *T) error {
	if s.kind.PostWrite == nil || doc == nil {
		return nil
	}
	return s.kind.PostWrite(ctx, doc)
}

func (s *Service[T, PT]) notFound(err error) error {
	if errors.Is(err, mongodb.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, apperr.NotFound(s.kind.Name).Message, err)
	}
	return err
}

func (s *Service[T, PT]) cacheEnabled() bool {
	return s.cache != nil && s.kind.CacheTTL > 0
}

func (s *Service[T, PT]) fromCache(ctx context.Context, id string) (*T, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}
	doc := new(T)
	found, err := s.cache.Get(ctx, cache.Key(s.kind.Collection, id), doc)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("id", id), sl.Err(err))
		return nil, false
	}
	return doc, found
}

func (s *Service[T, PT]) toCache(ctx context.Context, id string, doc *T) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Set(ctx, cache.Key(s.kind.Collection, id), doc, s.kind.CacheTTL); err != nil {
		s.log.Warn("failed to cache document", slog.String("id", id), sl.Err(err))
	}
}

func (s *Service[T, PT]) invalidate(ctx context.Context, id string) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.Key(s.kind.Collection, id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("id", id), sl.Err(err))
	}
}
