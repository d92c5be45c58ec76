package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Namespace tags the key-value namespaces used by the service. Keys take
// the shape "<namespace>:<id>".
type Namespace string

const (
	NamespaceProfessors Namespace = "professors"
	NamespaceQueue      Namespace = "professor-queue"
	NamespaceUsers      Namespace = "users"
	NamespaceReports    Namespace = "reports"
	NamespaceRatingLog  Namespace = "rating-log"
)

// Key builds the full store key for an id within a namespace.
func Key(ns Namespace, id string) string {
	return string(ns) + ":" + id
}

// ValidationError reports a value that failed schema validation on read or
// write. It is always surfaced to the caller; invalid records are never
// silently repaired.
type ValidationError struct {
	Key    string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: value at %q failed schema validation: %s", e.Key, e.Detail)
}

// Typed wraps the raw KV port with per-record JSON schema validation.
type Typed struct {
	kv      KV
	schemas map[Schema]*jsonschema.Schema
}

// NewTyped compiles the record schemas and returns the typed store.
func NewTyped(kv KV) (*Typed, error) {
	compiler := jsonschema.NewCompiler()
	for id, source := range schemaSources {
		if err := compiler.AddResource(id, strings.NewReader(source)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", id, err)
		}
	}

	compiled := make(map[Schema]*jsonschema.Schema)
	for _, schema := range []Schema{SchemaProfessor, SchemaProfessorIndex, SchemaPendingRating, SchemaRatingReport, SchemaUser} {
		sch, err := compiler.Compile(string(schema))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", schema, err)
		}
		compiled[schema] = sch
	}

	return &Typed{kv: kv, schemas: compiled}, nil
}

// Get fetches and validates the value at key, then unmarshals it into out.
func (t *Typed) Get(ctx context.Context, key string, schema Schema, out any) error {
	raw, err := t.GetRaw(ctx, key, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("store: decode value at %q: %w", key, err)
	}
	return nil
}

// GetRaw fetches and validates the value at key, returning the raw bytes.
func (t *Typed) GetRaw(ctx context.Context, key string, schema Schema) ([]byte, error) {
	raw, err := t.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := t.validate(key, schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Put validates the value against the schema and overwrites key with it.
// A zero ttl stores the value without expiry.
func (t *Typed) Put(ctx context.Context, key string, schema Schema, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode value for %q: %w", key, err)
	}
	if err := t.validate(key, schema, raw); err != nil {
		return err
	}
	return t.kv.Put(ctx, key, raw, ttl)
}

// Delete removes the value at key. Deleting an absent key is not an error.
func (t *Typed) Delete(ctx context.Context, key string) error {
	return t.kv.Delete(ctx, key)
}

// List returns one page of keys in the namespace and the continuation cursor.
func (t *Typed) List(ctx context.Context, ns Namespace, cursor uint64) ([]string, uint64, error) {
	return t.kv.List(ctx, string(ns)+":", cursor)
}

func (t *Typed) validate(key string, schema Schema, raw []byte) error {
	sch, ok := t.schemas[schema]
	if !ok {
		return fmt.Errorf("store: unknown schema %q", schema)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return &ValidationError{Key: key, Detail: err.Error()}
	}

	if err := sch.Validate(value); err != nil {
		return &ValidationError{Key: key, Detail: err.Error()}
	}
	return nil
}
