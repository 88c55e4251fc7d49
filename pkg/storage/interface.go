package storage

import (
	"context"

	"github.com/openfacet/facetstore/internal/domain"
)

// EntityStore is the persistence port implemented by search-engine backends.
// All record methods work with map[string]any keyed by field code, with the
// implicit "uuid" key carrying the document identifier. Field typing is driven
// by the descriptors supplied per call; the store holds no schema state.
type EntityStore interface {
	// Exists reports whether a document with the given identifier is indexed.
	// Transport or engine failures degrade to false.
	Exists(ctx context.Context, tenant, entityType, uuid string) bool

	// FindByID retrieves one decoded record, or (nil, nil) when the document
	// is absent or the engine could not be reached.
	FindByID(ctx context.Context, tenant, entityType, uuid string, fields domain.FieldSet) (map[string]any, error)

	// Find returns the decoded records matching the query, in the engine's
	// relevance order. Transport and decoding failures are surfaced.
	Find(ctx context.Context, query domain.StorageQuery) ([]map[string]any, error)

	// Count returns the number of documents matching the query's filters.
	Count(ctx context.Context, query domain.StorageQuery) (int, error)

	// CreateOrUpdate indexes the entity under its pre-assigned identifier,
	// falling through to update semantics when the identifier already exists.
	// Returns the identifier of the stored document.
	CreateOrUpdate(ctx context.Context, tenant string, entity domain.Entity, fields domain.FieldSet) (string, error)

	// Update applies the entity's values to an existing document. The engine
	// response is positively checked; "not updated" raises an error.
	Update(ctx context.Context, tenant string, entity domain.Entity) error

	// Remove deletes a document. Removing an absent document is not an error.
	Remove(ctx context.Context, tenant, entityType, uuid string) error

	// DeclareIndex creates the entity type's index on every given tenant.
	// An already-existing index is treated as success.
	DeclareIndex(ctx context.Context, entityType string, tenants []string) error

	// DropIndex deletes the entity type's index on every given tenant.
	// An absent index is treated as success; any other failure is fatal.
	DropIndex(ctx context.Context, entityType string, tenants []string) error

	// DeclareFieldMapping submits the mapping property for exactly one field
	// on every given tenant. Fields without a declared property are a no-op.
	DeclareFieldMapping(ctx context.Context, entityType string, field domain.FieldDescriptor, tenants []string) error

	// Autocomplete returns the values of one field matched by a partial
	// query, in relevance order.
	Autocomplete(ctx context.Context, tenant, entityType, field, partial string) ([]string, error)

	// Shutdown disposes every tenant client. Best effort; close errors are
	// logged, not returned.
	Shutdown()
}
