package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openfacet/facetstore/internal/domain"
)

// BuildSearchQuery composes free-text keyword input and typed filter
// predicates into one query document. The keyword clause scores in the bool
// must context; filter clauses constrain in the non-scoring filter context.
// Either part alone reduces to its standalone form; neither reduces to
// match_all.
func BuildSearchQuery(keyword string, filters map[string]any, fields domain.FieldSet) map[string]any {
	clauses := filterClauses(filters, fields)

	if strings.TrimSpace(keyword) == "" {
		return BuildFilterQuery(filters, fields)
	}
	if len(clauses) == 0 {
		return BuildKeywordQuery(keyword)
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []map[string]any{keywordClause(keyword)},
				"filter": clauses,
			},
		},
	}
}

// BuildFilterQuery turns typed filter predicates into the engine's query
// document. Every clause must match (logical AND).
func BuildFilterQuery(filters map[string]any, fields domain.FieldSet) map[string]any {
	clauses := filterClauses(filters, fields)
	if len(clauses) == 0 {
		return matchAllQuery()
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": clauses},
		},
	}
}

// filterClauses emits one predicate per filter entry. The uuid key and nil
// values are excluded from query construction. Filter keys are visited in
// sorted order so the same filters always produce the same document.
func filterClauses(filters map[string]any, fields domain.FieldSet) []map[string]any {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var clauses []map[string]any
	for _, key := range keys {
		value := filters[key]
		if value == nil || strings.EqualFold(key, domain.UUIDKey) {
			continue
		}
		clauses = append(clauses, filterClause(key, value, fields))
	}
	return clauses
}

// filterClause emits one predicate. A bounds map (gt/gte/lt/lte keys only)
// becomes a range predicate regardless of field type. STRING fields match
// substrings via wildcard tokens; every other type gets an approximate match
// with automatic fuzziness. Document keys are referenced lower-cased.
func filterClause(code string, value any, fields domain.FieldSet) map[string]any {
	key := strings.ToLower(code)
	if descriptor, ok := fields.Lookup(code); ok {
		key = descriptor.Key()
	}

	if bounds, ok := rangeBounds(value); ok {
		return map[string]any{
			"range": map[string]any{key: bounds},
		}
	}

	if descriptor, ok := fields.Lookup(code); ok && descriptor.Type == domain.FieldTypeString {
		return map[string]any{
			"wildcard": map[string]any{
				key: map[string]any{"value": fmt.Sprintf("*%v*", value)},
			},
		}
	}

	return map[string]any{
		"match": map[string]any{
			key: map[string]any{"query": value, "fuzziness": "AUTO"},
		},
	}
}

var rangeOperators = map[string]bool{"gt": true, "gte": true, "lt": true, "lte": true}

// rangeBounds recognizes a filter value of the form {"gte": 5, "lt": 10}.
// Any key outside the four range operators disqualifies the map, so a plain
// object value still falls through to the default match clause.
func rangeBounds(value any) (map[string]any, bool) {
	raw, ok := value.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}

	bounds := make(map[string]any, len(raw))
	for op, bound := range raw {
		if bound == nil || !rangeOperators[strings.ToLower(op)] {
			return nil, false
		}
		bounds[strings.ToLower(op)] = bound
	}
	return bounds, true
}

// BuildKeywordQuery turns free-text keyword input into a phrase-prefix
// multi-match across all fields and their typeahead sub-fields. A blank
// keyword matches everything.
func BuildKeywordQuery(keyword string) map[string]any {
	if strings.TrimSpace(keyword) == "" {
		return matchAllQuery()
	}

	return map[string]any{"query": keywordClause(keyword)}
}

func keywordClause(keyword string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":  keyword,
			"type":   "phrase_prefix",
			"fields": []string{"*", "*._2gram", "*._3gram"},
		},
	}
}

// BuildAutocompleteQuery matches incremental typing against one field and its
// typeahead sub-fields.
func BuildAutocompleteQuery(field, partial string) map[string]any {
	key := strings.ToLower(field)
	if strings.TrimSpace(partial) == "" {
		return matchAllQuery()
	}

	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  partial,
				"type":   "phrase_prefix",
				"fields": []string{key, key + "._2gram", key + "._3gram"},
			},
		},
	}
}

func matchAllQuery() map[string]any {
	return map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	}
}

// withPaging merges from/size pagination into a query document.
func withPaging(query map[string]any, paging domain.Pagination) map[string]any {
	if paging.Size > 0 {
		query["size"] = paging.Size
	}
	if paging.From > 0 {
		query["from"] = paging.From
	}
	return query
}
