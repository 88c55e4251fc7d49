package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/pkg/errors"

	"github.com/openfacet/facetstore/internal/domain"
	"github.com/openfacet/facetstore/pkg/log"
	"github.com/openfacet/facetstore/pkg/storage"
)

const defaultAutocompleteSize = 10

// Store projects the dynamically-typed entity model onto the search engine.
// It composes the client registry, the query/mapping builders and the
// response decoder; it holds no per-operation state of its own.
type Store struct {
	registry *Registry
	logger   *slog.Logger
}

// assert the port is implemented
var _ storage.EntityStore = (*Store)(nil)

// NewStore creates a store backed by the given client registry.
func NewStore(registry *Registry) *Store {
	return &Store{
		registry: registry,
		logger:   log.Logger("search.store"),
	}
}

// indexName returns the engine index for an entity type. One index per entity
// type per tenant deployment, keyed lower-case.
func indexName(entityType string) string {
	return strings.ToLower(entityType)
}

// Exists reports whether the document is indexed. Failures degrade to false.
func (s *Store) Exists(ctx context.Context, tenant, entityType, uuid string) bool {
	if uuid == "" {
		return false
	}

	client, err := s.registry.Client(tenant)
	if err != nil {
		s.logger.Error("exists check failed", "tenant", tenant, "entity", entityType, "error", err)
		return false
	}

	resp, err := client.api.Document.Exists(ctx, opensearchapi.DocumentExistsReq{
		Index:      indexName(entityType),
		DocumentID: uuid,
	})
	if resp != nil {
		// 200 means indexed; any other status means absent.
		return resp.StatusCode == http.StatusOK
	}
	if err != nil && !isNotFound(err) {
		s.logger.Error("exists check failed", "tenant", tenant, "entity", entityType, "uuid", uuid, "error", err)
	}
	return false
}

// FindByID retrieves one decoded record. Absent documents and unreachable
// engines both yield (nil, nil); the latter is logged.
func (s *Store) FindByID(ctx context.Context, tenant, entityType, uuid string, fields domain.FieldSet) (map[string]any, error) {
	client, err := s.registry.Client(tenant)
	if err != nil {
		s.logger.Error("findById failed", "tenant", tenant, "entity", entityType, "error", err)
		return nil, nil
	}

	resp, err := client.api.Document.Get(ctx, opensearchapi.DocumentGetReq{
		Index:      indexName(entityType),
		DocumentID: uuid,
	})
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("findById failed", "tenant", tenant, "entity", entityType, "uuid", uuid, "error", err)
		}
		return nil, nil
	}

	if !resp.Found {
		return nil, nil
	}

	source, err := decodeSource(resp.Source)
	if err != nil {
		s.logger.Error("findById decode failed", "tenant", tenant, "entity", entityType, "uuid", uuid, "error", err)
		return nil, nil
	}

	return DecodeHit(uuid, source, fields), nil
}

// Find returns the decoded records matching the query in relevance order.
func (s *Store) Find(ctx context.Context, query domain.StorageQuery) ([]map[string]any, error) {
	client, err := s.registry.Client(query.Tenant)
	if err != nil {
		return nil, err
	}

	doc := withPaging(BuildSearchQuery(query.Keyword, query.Filters, query.Fields), query.Paging)

	body, _ := json.Marshal(doc)
	resp, err := client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{indexName(query.EntityType)},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, s.categorize(err, "find", query.Tenant, query.EntityType)
	}

	records, err := DecodeSearchResults(resp.Hits.Hits, query.Fields)
	if err != nil {
		return nil, opError(KindTransport, "find", query.Tenant, query.EntityType, err)
	}

	return records, nil
}

// Count returns the number of documents matching the query's filters.
func (s *Store) Count(ctx context.Context, query domain.StorageQuery) (int, error) {
	client, err := s.registry.Client(query.Tenant)
	if err != nil {
		return 0, err
	}

	doc := BuildFilterQuery(query.Filters, query.Fields)

	body, _ := json.Marshal(doc)
	resp, err := client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{indexName(query.EntityType)},
		Body:    bytes.NewReader(body),
		Params: opensearchapi.SearchParams{
			Size:           opensearchapi.ToPointer(0),
			TrackTotalHits: true,
		},
	})
	if err != nil {
		return 0, s.categorize(err, "count", query.Tenant, query.EntityType)
	}

	return resp.Hits.Total.Value, nil
}

// CreateOrUpdate indexes the entity under its pre-assigned identifier using
// the engine's atomic create, falling through to update semantics when the
// identifier already exists. The exists pre-check is advisory; a conflict
// racing past it is surfaced, never reported as creation success.
func (s *Store) CreateOrUpdate(ctx context.Context, tenant string, entity domain.Entity, fields domain.FieldSet) (string, error) {
	if entity.UUID == "" {
		return "", errors.New("entity uuid must be pre-assigned")
	}

	if s.Exists(ctx, tenant, entity.Type, entity.UUID) {
		if err := s.Update(ctx, tenant, entity); err != nil {
			return "", err
		}
		return entity.UUID, nil
	}

	client, err := s.registry.Client(tenant)
	if err != nil {
		return "", err
	}

	body, _ := json.Marshal(encodeEntityBody(entity, fields))
	resp, err := client.api.Index(ctx, opensearchapi.IndexReq{
		Index:      indexName(entity.Type),
		DocumentID: entity.UUID,
		Body:       bytes.NewReader(body),
		Params:     opensearchapi.IndexParams{OpType: "create", Refresh: "true"},
	})
	if err != nil {
		if isConflict(err) {
			return "", opError(KindEngine, "create", tenant, entity.Type,
				errors.Wrapf(err, "document %s already exists", entity.UUID))
		}
		return "", s.categorize(err, "create", tenant, entity.Type)
	}

	if resp.Result != "created" {
		return "", opError(KindEngine, "create", tenant, entity.Type,
			fmt.Errorf("document %s not created (result %q)", entity.UUID, resp.Result))
	}

	return entity.UUID, nil
}

// Update applies the entity's values to an existing document and positively
// checks the engine's result.
func (s *Store) Update(ctx context.Context, tenant string, entity domain.Entity) error {
	client, err := s.registry.Client(tenant)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]any{"doc": encodeEntityBody(entity, nil)})
	resp, err := client.api.Update(ctx, opensearchapi.UpdateReq{
		Index:      indexName(entity.Type),
		DocumentID: entity.UUID,
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		if isNotFound(err) {
			return opError(KindEngine, "update", tenant, entity.Type,
				errors.Wrapf(err, "document %s does not exist", entity.UUID))
		}
		return s.categorize(err, "update", tenant, entity.Type)
	}

	// "noop" means the document already held the same values.
	if resp.Result != "updated" && resp.Result != "noop" {
		return opError(KindEngine, "update", tenant, entity.Type,
			fmt.Errorf("document %s not updated (result %q)", entity.UUID, resp.Result))
	}

	return nil
}

// Remove deletes a document. Removing an absent document is not an error.
func (s *Store) Remove(ctx context.Context, tenant, entityType, uuid string) error {
	client, err := s.registry.Client(tenant)
	if err != nil {
		return err
	}

	_, err = client.api.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      indexName(entityType),
		DocumentID: uuid,
		Params:     opensearchapi.DocumentDeleteParams{Refresh: "true"},
	})
	if err != nil && !isNotFound(err) {
		return s.categorize(err, "remove", tenant, entityType)
	}

	return nil
}

// DeclareIndex creates the entity type's index on every given tenant. An
// already-existing index is success.
func (s *Store) DeclareIndex(ctx context.Context, entityType string, tenants []string) error {
	for _, tenant := range tenants {
		client, err := s.registry.Client(tenant)
		if err != nil {
			return err
		}

		_, err = client.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
			Index: indexName(entityType),
		})
		if err != nil {
			if isAlreadyExists(err) {
				s.logger.Debug("index already exists", "tenant", tenant, "entity", entityType)
				continue
			}
			return s.categorize(err, "declare index", tenant, entityType)
		}

		s.logger.Info("index created", "tenant", tenant, "entity", entityType)
	}

	return nil
}

// DropIndex deletes the entity type's index on every given tenant. An absent
// index is success; any other failure is fatal.
func (s *Store) DropIndex(ctx context.Context, entityType string, tenants []string) error {
	for _, tenant := range tenants {
		client, err := s.registry.Client(tenant)
		if err != nil {
			return err
		}

		_, err = client.api.Indices.Delete(ctx, opensearchapi.IndicesDeleteReq{
			Indices: []string{indexName(entityType)},
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return s.categorize(err, "drop index", tenant, entityType)
		}

		s.logger.Info("index dropped", "tenant", tenant, "entity", entityType)
	}

	return nil
}

// DeclareFieldMapping submits the mapping property for exactly one field.
// Types without a declared property fall back to the engine's dynamic
// mapping. Mapping conflicts are surfaced, not retried.
func (s *Store) DeclareFieldMapping(ctx context.Context, entityType string, field domain.FieldDescriptor, tenants []string) error {
	property, ok := PropertyFor(field.Type)
	if !ok {
		return nil
	}

	body, _ := json.Marshal(mappingBody(field, property))
	for _, tenant := range tenants {
		client, err := s.registry.Client(tenant)
		if err != nil {
			return err
		}

		_, err = client.api.Indices.Mapping.Put(ctx, opensearchapi.MappingPutReq{
			Indices: []string{indexName(entityType)},
			Body:    bytes.NewReader(body),
		})
		if err != nil {
			return s.categorize(err, "declare field mapping", tenant, entityType)
		}

		s.logger.Info("field mapping declared", "tenant", tenant, "entity", entityType, "field", field.Key())
	}

	return nil
}

// Autocomplete returns the values of one field matched by incremental typing,
// in relevance order.
func (s *Store) Autocomplete(ctx context.Context, tenant, entityType, field, partial string) ([]string, error) {
	client, err := s.registry.Client(tenant)
	if err != nil {
		return nil, err
	}

	doc := BuildAutocompleteQuery(field, partial)
	doc["size"] = defaultAutocompleteSize

	body, _ := json.Marshal(doc)
	resp, err := client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{indexName(entityType)},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, s.categorize(err, "autocomplete", tenant, entityType)
	}

	key := strings.ToLower(field)
	values := make([]string, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		source, err := decodeSource(hit.Source)
		if err != nil {
			return nil, opError(KindTransport, "autocomplete", tenant, entityType, err)
		}
		switch v := source[key].(type) {
		case nil:
		case string:
			values = append(values, v)
		default:
			values = append(values, fmt.Sprintf("%v", v))
		}
	}

	return values, nil
}

// Shutdown disposes every tenant client.
func (s *Store) Shutdown() {
	s.registry.Shutdown()
}

// encodeEntityBody builds the engine document from the entity's values.
// Keys are stored lower-cased; the uuid is carried by the document id, not
// the body. When descriptors are supplied, only declared fields are indexed.
func encodeEntityBody(entity domain.Entity, fields domain.FieldSet) map[string]any {
	body := make(map[string]any, len(entity.Values))

	for code, value := range entity.Values {
		if value == nil || strings.EqualFold(code, domain.UUIDKey) {
			continue
		}
		key := strings.ToLower(code)
		if fields != nil {
			descriptor, ok := fields.Lookup(code)
			if !ok {
				continue
			}
			key = descriptor.Key()
		}
		body[key] = value
	}

	return body
}

// categorize maps a client error to the taxonomy: engine-reported when the
// error carries an HTTP status, transport otherwise.
func (s *Store) categorize(err error, op, tenant, entityType string) error {
	if statusOf(err) > 0 {
		return opError(KindEngine, op, tenant, entityType, err)
	}
	return opError(KindTransport, op, tenant, entityType, err)
}
