package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfacet/facetstore/internal/domain"
)

type stubStore struct {
	records    []map[string]any
	record     map[string]any
	lastQuery  domain.StorageQuery
	lastEntity domain.Entity
	lastTenant string
	removed    []string
}

func (s *stubStore) Exists(ctx context.Context, tenant, entityType, uuid string) bool { return false }

func (s *stubStore) FindByID(ctx context.Context, tenant, entityType, uuid string, fields domain.FieldSet) (map[string]any, error) {
	return s.record, nil
}

func (s *stubStore) Find(ctx context.Context, query domain.StorageQuery) ([]map[string]any, error) {
	s.lastQuery = query
	return s.records, nil
}

func (s *stubStore) Count(ctx context.Context, query domain.StorageQuery) (int, error) {
	s.lastQuery = query
	return len(s.records), nil
}

func (s *stubStore) CreateOrUpdate(ctx context.Context, tenant string, entity domain.Entity, fields domain.FieldSet) (string, error) {
	s.lastTenant = tenant
	s.lastEntity = entity
	return entity.UUID, nil
}

func (s *stubStore) Update(ctx context.Context, tenant string, entity domain.Entity) error {
	return nil
}

func (s *stubStore) Remove(ctx context.Context, tenant, entityType, uuid string) error {
	s.removed = append(s.removed, uuid)
	return nil
}

func (s *stubStore) DeclareIndex(ctx context.Context, entityType string, tenants []string) error {
	return nil
}

func (s *stubStore) DropIndex(ctx context.Context, entityType string, tenants []string) error {
	return nil
}

func (s *stubStore) DeclareFieldMapping(ctx context.Context, entityType string, field domain.FieldDescriptor, tenants []string) error {
	return nil
}

func (s *stubStore) Autocomplete(ctx context.Context, tenant, entityType, field, partial string) ([]string, error) {
	return []string{"Widget", "Widget Pro"}, nil
}

func (s *stubStore) Shutdown() {}

type stubSchema struct{}

func (stubSchema) Fields(entityType string) (domain.FieldSet, bool) {
	if !strings.EqualFold(entityType, "product") {
		return nil, false
	}
	return domain.FieldSet{
		"Name":  {Code: "Name", Type: domain.FieldTypeString},
		"price": {Code: "price", Type: domain.FieldTypeDouble},
	}, true
}

func newTestHandler() (*Handler, *stubStore, *http.ServeMux) {
	store := &stubStore{}
	handler := NewHandler(store, stubSchema{})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return handler, store, mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerSearch(t *testing.T) {
	t.Run("passes query through to the store", func(t *testing.T) {
		_, store, mux := newTestHandler()
		store.records = []map[string]any{{"uuid": "abc", "Name": "Widget"}}

		rec := do(mux, http.MethodPost, "/api/v1/default/product/search",
			`{"keyword": "wid", "filters": {"price": 9.99}, "from": 10, "size": 5}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)

		assert.Equal(t, "default", store.lastQuery.Tenant)
		assert.Equal(t, "product", store.lastQuery.EntityType)
		assert.Equal(t, "wid", store.lastQuery.Keyword)
		assert.Equal(t, 10, store.lastQuery.Paging.From)
		assert.Equal(t, 5, store.lastQuery.Paging.Size)
	})

	t.Run("unknown entity type", func(t *testing.T) {
		_, _, mux := newTestHandler()

		rec := do(mux, http.MethodPost, "/api/v1/default/order/search", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, _, mux := newTestHandler()

		rec := do(mux, http.MethodPost, "/api/v1/default/product/search", `{broken`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerEntityLifecycle(t *testing.T) {
	t.Run("create assigns a uuid", func(t *testing.T) {
		_, store, mux := newTestHandler()

		rec := do(mux, http.MethodPost, "/api/v1/default/product",
			`{"values": {"Name": "Widget"}}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, store.lastEntity.UUID)
		assert.Equal(t, "default", store.lastTenant)
	})

	t.Run("put keeps the caller-assigned uuid", func(t *testing.T) {
		_, store, mux := newTestHandler()

		rec := do(mux, http.MethodPut, "/api/v1/default/product/abc",
			`{"values": {"Name": "Widget"}}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc", store.lastEntity.UUID)
	})

	t.Run("get absent document", func(t *testing.T) {
		_, _, mux := newTestHandler()

		rec := do(mux, http.MethodGet, "/api/v1/default/product/ghost", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get found document", func(t *testing.T) {
		_, store, mux := newTestHandler()
		store.record = map[string]any{"uuid": "abc", "Name": "Widget"}

		rec := do(mux, http.MethodGet, "/api/v1/default/product/abc", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		_, store, mux := newTestHandler()

		rec := do(mux, http.MethodDelete, "/api/v1/default/product/abc", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"abc"}, store.removed)
	})
}

func TestHandlerAutocomplete(t *testing.T) {
	t.Run("returns matched values", func(t *testing.T) {
		_, _, mux := newTestHandler()

		rec := do(mux, http.MethodGet, "/api/v1/default/product/autocomplete?field=Name&q=wid", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("field is required", func(t *testing.T) {
		_, _, mux := newTestHandler()

		rec := do(mux, http.MethodGet, "/api/v1/default/product/autocomplete?q=wid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	_, _, mux := newTestHandler()
	h := corsMiddleware(mux)

	t.Run("cross-origin headers on every response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight short-circuits with OK", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/default/product/search", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
