package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/openfacet/facetstore/internal/domain"
	"github.com/openfacet/facetstore/pkg/log"
	"github.com/openfacet/facetstore/pkg/storage"
)

// Schema resolves an entity type's field descriptors.
type Schema interface {
	Fields(entityType string) (domain.FieldSet, bool)
}

// Handler handles HTTP API requests
type Handler struct {
	logger *slog.Logger
	store  storage.EntityStore
	schema Schema
}

// NewHandler creates a new HTTP handler
func NewHandler(store storage.EntityStore, schema Schema) *Handler {
	return &Handler{
		logger: log.Logger("http.handler"),
		store:  store,
		schema: schema,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SearchRequest carries keyword, filters and pagination for one search.
type SearchRequest struct {
	Keyword string         `json:"keyword"`
	Filters map[string]any `json:"filters"`
	From    int            `json:"from"`
	Size    int            `json:"size"`
}

// EntityRequest carries the field values of one entity.
type EntityRequest struct {
	Values map[string]any `json:"values"`
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/{tenant}/{entity}/search", h.Search)
	mux.HandleFunc("POST /api/v1/{tenant}/{entity}/count", h.Count)
	mux.HandleFunc("GET /api/v1/{tenant}/{entity}/count", h.Count)
	mux.HandleFunc("GET /api/v1/{tenant}/{entity}/autocomplete", h.Autocomplete)

	mux.HandleFunc("POST /api/v1/{tenant}/{entity}", h.Create)
	mux.HandleFunc("PUT /api/v1/{tenant}/{entity}/{id}", h.Put)
	mux.HandleFunc("GET /api/v1/{tenant}/{entity}/{id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/{tenant}/{entity}/{id}", h.Delete)

	mux.HandleFunc("GET /health", h.Health)
}

// Search handles POST /api/v1/{tenant}/{entity}/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.schema.Fields(r.PathValue("entity"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown entity type: "+r.PathValue("entity"))
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	records, err := h.store.Find(r.Context(), domain.StorageQuery{
		Tenant:     r.PathValue("tenant"),
		EntityType: r.PathValue("entity"),
		Filters:    req.Filters,
		Keyword:    req.Keyword,
		Fields:     fields,
		Paging:     domain.Pagination{From: req.From, Size: req.Size},
	})
	if err != nil {
		h.logger.Error("search failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: records})
}

// Count handles POST/GET /api/v1/{tenant}/{entity}/count
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.schema.Fields(r.PathValue("entity"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown entity type: "+r.PathValue("entity"))
		return
	}

	var req SearchRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	count, err := h.store.Count(r.Context(), domain.StorageQuery{
		Tenant:     r.PathValue("tenant"),
		EntityType: r.PathValue("entity"),
		Filters:    req.Filters,
		Fields:     fields,
	})
	if err != nil {
		h.logger.Error("count failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]any{"count": count}})
}

// Autocomplete handles GET /api/v1/{tenant}/{entity}/autocomplete
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		h.writeError(w, http.StatusBadRequest, "field is required")
		return
	}

	values, err := h.store.Autocomplete(r.Context(),
		r.PathValue("tenant"), r.PathValue("entity"), field, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("autocomplete failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: values})
}

// Create handles POST /api/v1/{tenant}/{entity}; the server assigns the uuid.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.storeEntity(w, r, uuid.NewString())
}

// Put handles PUT /api/v1/{tenant}/{entity}/{id} with a caller-assigned uuid.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	h.storeEntity(w, r, r.PathValue("id"))
}

func (h *Handler) storeEntity(w http.ResponseWriter, r *http.Request, id string) {
	fields, ok := h.schema.Fields(r.PathValue("entity"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown entity type: "+r.PathValue("entity"))
		return
	}

	var req EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	stored, err := h.store.CreateOrUpdate(r.Context(), r.PathValue("tenant"), domain.Entity{
		UUID:   id,
		Type:   r.PathValue("entity"),
		Values: req.Values,
	}, fields)
	if err != nil {
		h.logger.Error("createOrUpdate failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]any{"uuid": stored}})
}

// Get handles GET /api/v1/{tenant}/{entity}/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.schema.Fields(r.PathValue("entity"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown entity type: "+r.PathValue("entity"))
		return
	}

	record, err := h.store.FindByID(r.Context(),
		r.PathValue("tenant"), r.PathValue("entity"), r.PathValue("id"), fields)
	if err != nil {
		h.logger.Error("findById failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		h.writeError(w, http.StatusNotFound, "document not found")
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: record})
}

// Delete handles DELETE /api/v1/{tenant}/{entity}/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Remove(r.Context(),
		r.PathValue("tenant"), r.PathValue("entity"), r.PathValue("id"))
	if err != nil {
		h.logger.Error("remove failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]string{"status": "ok"}})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, Response{Success: false, Error: message})
}
