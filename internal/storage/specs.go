// internal/storage/specs.go
// Saved query/aggregation registry: id grammar, payload validation and
// one-file-per-id persistence.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SpecExt is the file extension used for saved specs.
const SpecExt = ".json"

// ScopeKind discriminates shared from collection-bound specs.
type ScopeKind int

const (
	// ScopeShared runs against whatever database/collection is currently
	// selected.
	ScopeShared ScopeKind = iota
	// ScopeCollection is pinned to a database and collection baked into
	// the spec id.
	ScopeCollection
)

// Scope is where a saved spec executes.
type Scope struct {
	Kind       ScopeKind
	Database   string
	Collection string
}

// SharedScope returns the shared scope value.
func SharedScope() Scope { return Scope{Kind: ScopeShared} }

// CollectionScope returns a scope pinned to db/coll.
func CollectionScope(db, coll string) Scope {
	return Scope{Kind: ScopeCollection, Database: db, Collection: coll}
}

func (s Scope) String() string {
	if s.Kind == ScopeShared {
		return "shared"
	}
	return s.Database + "." + s.Collection
}

// DeriveScope parses a spec id into its scope. One segment means shared;
// three or more mean database.collection...name, where the collection may
// itself contain dots; exactly two segments is ambiguous and rejected.
func DeriveScope(id string) (Scope, error) {
	if id == "" {
		return Scope{}, fmt.Errorf("spec id must not be empty")
	}
	segments := strings.Split(id, ".")
	for _, seg := range segments {
		if seg == "" {
			return Scope{}, fmt.Errorf("spec id %q has an empty segment", id)
		}
	}
	switch n := len(segments); {
	case n == 1:
		return SharedScope(), nil
	case n == 2:
		return Scope{}, fmt.Errorf("spec id %q is ambiguous: use either a bare name or database.collection.name", id)
	default:
		return CollectionScope(segments[0], strings.Join(segments[1:n-1], ".")), nil
	}
}

// SpecName returns the final segment of an id (the whole id when shared).
func SpecName(id string) string {
	segments := strings.Split(id, ".")
	return segments[len(segments)-1]
}

// SavedQuery is a persisted find specification. The payload fields hold
// raw JSON; conversion to driver types happens at execution time.
type SavedQuery struct {
	ID         string
	Scope      Scope
	Filter     json.RawMessage
	Projection json.RawMessage
	Sort       json.RawMessage
	Limit      *int64
}

// SavedAggregation is a persisted pipeline.
type SavedAggregation struct {
	ID       string
	Scope    Scope
	Pipeline json.RawMessage
}

// QueryFields is the decoded body of a query payload, independent of
// any id. Inline drafts use it directly.
type QueryFields struct {
	Filter     json.RawMessage
	Projection json.RawMessage
	Sort       json.RawMessage
	Limit      *int64
}

// queryPayloadKeys is the closed set of top-level keys a query file may
// carry.
var queryPayloadKeys = map[string]bool{
	"filter":     true,
	"projection": true,
	"sort":       true,
	"limit":      true,
}

// ParseQueryFields validates and decodes a query payload: a JSON object
// whose only allowed keys are filter, projection, sort and limit.
func ParseQueryFields(data []byte) (QueryFields, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return QueryFields{}, fmt.Errorf("query payload must be a JSON object: %w", err)
	}
	for key := range fields {
		if !queryPayloadKeys[key] {
			return QueryFields{}, fmt.Errorf("unknown field %q in query payload (allowed: filter, projection, sort, limit)", key)
		}
	}

	q := QueryFields{
		Filter:     fields["filter"],
		Projection: fields["projection"],
		Sort:       fields["sort"],
	}
	if raw, ok := fields["limit"]; ok {
		var limit int64
		if err := json.Unmarshal(raw, &limit); err != nil {
			return QueryFields{}, fmt.Errorf("limit must be an integer: %w", err)
		}
		if limit < 0 {
			return QueryFields{}, fmt.Errorf("limit must not be negative")
		}
		q.Limit = &limit
	}
	return q, nil
}

// ParseQueryPayload decodes a saved-query file, deriving the scope from
// its id.
func ParseQueryPayload(id string, data []byte) (SavedQuery, error) {
	scope, err := DeriveScope(id)
	if err != nil {
		return SavedQuery{}, err
	}
	fields, err := ParseQueryFields(data)
	if err != nil {
		return SavedQuery{}, err
	}
	return SavedQuery{
		ID:         id,
		Scope:      scope,
		Filter:     fields.Filter,
		Projection: fields.Projection,
		Sort:       fields.Sort,
		Limit:      fields.Limit,
	}, nil
}

// NormalizePipeline validates that data is a bare JSON array and returns
// it in compact form.
func NormalizePipeline(data []byte) (json.RawMessage, error) {
	var stages []json.RawMessage
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("aggregation payload must be a JSON array: %w", err)
	}
	return json.Marshal(stages)
}

// ParseAggregationPayload decodes a saved-aggregation file: a bare JSON
// array holding the pipeline stages.
func ParseAggregationPayload(id string, data []byte) (SavedAggregation, error) {
	scope, err := DeriveScope(id)
	if err != nil {
		return SavedAggregation{}, err
	}
	compact, err := NormalizePipeline(data)
	if err != nil {
		return SavedAggregation{}, err
	}
	return SavedAggregation{ID: id, Scope: scope, Pipeline: compact}, nil
}

// Payload re-serializes a saved query into its on-disk shape.
func (q SavedQuery) Payload() ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(q.Filter) > 0 {
		fields["filter"] = q.Filter
	}
	if len(q.Projection) > 0 {
		fields["projection"] = q.Projection
	}
	if len(q.Sort) > 0 {
		fields["sort"] = q.Sort
	}
	if q.Limit != nil {
		raw, err := json.Marshal(*q.Limit)
		if err != nil {
			return nil, err
		}
		fields["limit"] = raw
	}
	return json.MarshalIndent(fields, "", "  ")
}

// Payload re-serializes a saved aggregation into its on-disk shape.
func (a SavedAggregation) Payload() ([]byte, error) {
	var stages []json.RawMessage
	if err := json.Unmarshal(a.Pipeline, &stages); err != nil {
		return nil, err
	}
	return json.MarshalIndent(stages, "", "  ")
}

// SpecPath returns the file a spec id maps to inside dir.
func SpecPath(dir, id string) string {
	return filepath.Join(dir, id+SpecExt)
}

// SpecExists reports whether a spec file is already on disk.
func SpecExists(dir, id string) bool {
	_, err := os.Stat(SpecPath(dir, id))
	return err == nil
}

// WriteSavedQuery persists a query. The explicit scope must equal the one
// derived from the id, and an existing file is only replaced when
// overwrite is set; both checks run before any disk I/O.
func WriteSavedQuery(dir string, q SavedQuery, overwrite bool) error {
	if err := checkScope(q.ID, q.Scope); err != nil {
		return err
	}
	if !overwrite && SpecExists(dir, q.ID) {
		return fmt.Errorf("saved query %q already exists", q.ID)
	}
	payload, err := q.Payload()
	if err != nil {
		return err
	}
	return writeSpecFile(SpecPath(dir, q.ID), payload)
}

// WriteSavedAggregation persists an aggregation under the same rules as
// WriteSavedQuery.
func WriteSavedAggregation(dir string, a SavedAggregation, overwrite bool) error {
	if err := checkScope(a.ID, a.Scope); err != nil {
		return err
	}
	if !overwrite && SpecExists(dir, a.ID) {
		return fmt.Errorf("saved aggregation %q already exists", a.ID)
	}
	payload, err := a.Payload()
	if err != nil {
		return err
	}
	return writeSpecFile(SpecPath(dir, a.ID), payload)
}

func checkScope(id string, explicit Scope) error {
	derived, err := DeriveScope(id)
	if err != nil {
		return err
	}
	if derived != explicit {
		return fmt.Errorf("scope %s does not match the scope derived from id %q (%s)", explicit, id, derived)
	}
	return nil
}

func writeSpecFile(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0600)
}

// LoadSavedQueries scans dir (non-recursively) for query files. A file
// that fails to parse produces a warning and is skipped; the scan itself
// only fails on I/O errors other than a missing directory.
func LoadSavedQueries(dir string) ([]SavedQuery, []string, error) {
	var queries []SavedQuery
	warnings, err := scanSpecDir(dir, func(id string, data []byte) error {
		q, err := ParseQueryPayload(id, data)
		if err != nil {
			return err
		}
		queries = append(queries, q)
		return nil
	})
	return queries, warnings, err
}

// LoadSavedAggregations scans dir for aggregation files under the same
// rules as LoadSavedQueries.
func LoadSavedAggregations(dir string) ([]SavedAggregation, []string, error) {
	var aggs []SavedAggregation
	warnings, err := scanSpecDir(dir, func(id string, data []byte) error {
		a, err := ParseAggregationPayload(id, data)
		if err != nil {
			return err
		}
		aggs = append(aggs, a)
		return nil
	})
	return aggs, warnings, err
}

func scanSpecDir(dir string, accept func(id string, data []byte) error) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var warnings []string
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SpecExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		id := strings.TrimSuffix(name, SpecExt)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", name, err))
			continue
		}
		if err := accept(id, data); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", name, err))
		}
	}
	return warnings, nil
}

// UpsertSavedQuery replaces a same-id entry in place or appends; the
// relative order of other entries is preserved.
func UpsertSavedQuery(list []SavedQuery, q SavedQuery) []SavedQuery {
	for i := range list {
		if list[i].ID == q.ID {
			list[i] = q
			return list
		}
	}
	return append(list, q)
}

// UpsertSavedAggregation is the aggregation counterpart of
// UpsertSavedQuery.
func UpsertSavedAggregation(list []SavedAggregation, a SavedAggregation) []SavedAggregation {
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return list
		}
	}
	return append(list, a)
}
