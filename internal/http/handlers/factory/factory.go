// Package factory содержит обобщённые HTTP-обработчики CRUD для любого вида ресурса.
//
// Ответ кладёт документ (или список) в data под ключом вида ресурса:
// {"status":"success","data":{"tour":{...}}}.
package factory

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
)

// Service описывает CRUD-операции вида ресурса.
type Service[T any] interface {
	GetOne(ctx context.Context, id string) (*T, error)
	GetAll(ctx context.Context, query url.Values, owner bson.D) ([]T, error)
	CreateOne(ctx context.Context, doc *T) (*T, error)
	UpdateOne(ctx context.Context, id string, patch []byte) (*T, error)
	DeleteOne(ctx context.Context, id string) error
}

// Handlers обслуживает один вид ресурса.
type Handlers[T any] struct {
	log     *slog.Logger
	key     string
	service Service[T]
	owner   func(r *http.Request) (bson.D, error)
	prepare func(r *http.Request, doc *T) error
	query   func(url.Values) url.Values
}

// Option настраивает Handlers.
type Option[T any] func(*Handlers[T])

// WithOwner ограничивает GetAll документами владельца, например
// отзывами тура из вложенного маршрута.
func WithOwner[T any](owner func(r *http.Request) (bson.D, error)) Option[T] {
	return func(h *Handlers[T]) {
		h.owner = owner
	}
}

// WithPrepare дополняет документ перед созданием.
func WithPrepare[T any](prepare func(r *http.Request, doc *T) error) Option[T] {
	return func(h *Handlers[T]) {
		h.prepare = prepare
	}
}

// WithQuery подменяет строку запроса GetAll, например для псевдонимов маршрутов.
func WithQuery[T any](query func(url.Values) url.Values) Option[T] {
	return func(h *Handlers[T]) {
		h.query = query
	}
}

// New создаёт обработчики. key — ключ документа в ответе.
func New[T any](log *slog.Logger, key string, service Service[T], opts ...Option[T]) *Handlers[T] {
	h := &Handlers[T]{
		log:     log,
		key:     key,
		service: service,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers[T]) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("kind", h.key),
	)
}

// GetOne отдаёт документ по {id}.
func (h *Handlers[T]) GetOne(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.factory.GetOne")

	doc, err := h.service.GetOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Success(h.key, doc))
}

// GetAll отдаёт список документов с фильтром, сортировкой, проекцией и пагинацией из строки запроса.
func (h *Handlers[T]) GetAll(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.factory.GetAll")

	var owner bson.D
	if h.owner != nil {
		var err error
		if owner, err = h.owner(r); err != nil {
			response.Fail(w, r, log, err)
			return
		}
	}
	query := r.URL.Query()
	if h.query != nil {
		query = h.query(query)
	}

	docs, err := h.service.GetAll(r.Context(), query, owner)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if docs == nil {
		docs = []T{}
	}
	log.Debug("documents listed", slog.Int("count", len(docs)))
	response.JSON(w, r, http.StatusOK, response.List(h.key, docs, len(docs)))
}

// Create создаёт документ из тела запроса.
func (h *Handlers[T]) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.factory.Create")

	doc := new(T)
	if err := response.DecodeJSON(r, doc); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if h.prepare != nil {
		if err := h.prepare(r, doc); err != nil {
			response.Fail(w, r, log, err)
			return
		}
	}

	created, err := h.service.CreateOne(r.Context(), doc)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, response.Success(h.key, created))
}

// Update применяет тело запроса к документу {id}.
func (h *Handlers[T]) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.factory.Update")

	patch, err := response.ReadBody(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	doc, err := h.service.UpdateOne(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Success(h.key, doc))
}

// Delete удаляет документ {id}.
func (h *Handlers[T]) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.factory.Delete")

	if err := h.service.DeleteOne(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("document deleted", slog.String("id", chi.URLParam(r, "id")))
	response.NoContent(w, r)
}
