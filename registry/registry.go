// Package registry accumulates the types and root fields generated during one
// schema build and enforces the naming rules shared by every generator.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/internal/logging"
)

// ErrNameCollision is matched by every *CollisionError.
var ErrNameCollision = errors.New("name collision")

// Kind names what was being registered.
type Kind string

const (
	KindType         Kind = "Type"
	KindQuery        Kind = "Query"
	KindMutation     Kind = "Mutation"
	KindSubscription Kind = "Subscription"
)

// CollisionError reports a rejected registration.
type CollisionError struct {
	Kind Kind
	Name string
}

func (e *CollisionError) Error() string {
	if e.Kind == KindType {
		return fmt.Sprintf("Type %s could not be added to the auto schema because it collided with an existing type.", e.Name)
	}
	return fmt.Sprintf("%s %s could not be added to the auto schema because it collided with an existing field.", e.Kind, e.Name)
}

func (e *CollisionError) Is(target error) bool {
	return target == ErrNameCollision
}

// Registry holds the output of the generators for one build. It is not safe
// for concurrent use.
type Registry struct {
	log logr.Logger

	types     []graphql.Type
	typeIndex map[string]graphql.Type

	queries       *fieldSet
	mutations     *fieldSet
	subscriptions *fieldSet
}

// New returns an empty registry that logs rejected registrations to log.
func New(log logr.Logger) *Registry {
	return &Registry{
		log:           log,
		typeIndex:     make(map[string]graphql.Type),
		queries:       newFieldSet(KindQuery, IsReservedQuery),
		mutations:     newFieldSet(KindMutation, IsReservedMutation),
		subscriptions: newFieldSet(KindSubscription, func(string) bool { return false }),
	}
}

// RegisterType adds a named type. The registration is rejected when the
// name is reserved (unless skipReservedCheck), already registered, or ends
// in ConnectionSuffix (unless skipConnectionCheck).
//
// A rejection returns a *CollisionError when throwOnConflict is set.
// Otherwise a warning is logged and (nil, nil) is returned.
func (r *Registry) RegisterType(t graphql.Type, throwOnConflict, skipReservedCheck, skipConnectionCheck bool) (graphql.Type, error) {
	name := graphql.NameOf(t)
	if name == "" {
		return nil, fmt.Errorf("cannot register unnamed type %v", t)
	}

	if !r.TypeAvailable(name, skipReservedCheck, skipConnectionCheck) {
		return nil, r.reject(&CollisionError{Kind: KindType, Name: name}, throwOnConflict)
	}

	r.types = append(r.types, t)
	r.typeIndex[name] = t
	return t, nil
}

// TypeAvailable reports whether RegisterType would accept a type called
// name. Nothing is logged.
func (r *Registry) TypeAvailable(name string, skipReservedCheck, skipConnectionCheck bool) bool {
	_, exists := r.typeIndex[name]
	return !exists &&
		(skipReservedCheck || !IsReservedType(name)) &&
		(skipConnectionCheck || !strings.HasSuffix(name, ConnectionSuffix))
}

// MutationAvailable reports whether RegisterMutation would accept name.
// Nothing is logged.
func (r *Registry) MutationAvailable(name string, skipReservedCheck bool) bool {
	return r.mutations.available(name, skipReservedCheck)
}

// RegisterQuery adds a field to the root query type.
func (r *Registry) RegisterQuery(name string, field *graphql.Field, throwOnConflict, skipReservedCheck bool) (*graphql.Field, error) {
	return r.registerField(r.queries, name, field, throwOnConflict, skipReservedCheck)
}

// RegisterMutation adds a field to the root mutation type.
func (r *Registry) RegisterMutation(name string, field *graphql.Field, throwOnConflict, skipReservedCheck bool) (*graphql.Field, error) {
	return r.registerField(r.mutations, name, field, throwOnConflict, skipReservedCheck)
}

// RegisterSubscription adds a field to the root subscription type. No
// subscription names are reserved.
func (r *Registry) RegisterSubscription(name string, field *graphql.Field, throwOnConflict, skipReservedCheck bool) (*graphql.Field, error) {
	return r.registerField(r.subscriptions, name, field, throwOnConflict, skipReservedCheck)
}

func (r *Registry) registerField(set *fieldSet, name string, field *graphql.Field, throwOnConflict, skipReservedCheck bool) (*graphql.Field, error) {
	if field == nil {
		return nil, fmt.Errorf("cannot register nil %s field %s", strings.ToLower(string(set.kind)), name)
	}
	if !set.available(name, skipReservedCheck) {
		return nil, r.reject(&CollisionError{Kind: set.kind, Name: name}, throwOnConflict)
	}
	set.add(name, field)
	return field, nil
}

func (r *Registry) reject(err *CollisionError, throwOnConflict bool) error {
	if throwOnConflict {
		return err
	}
	logging.Warn(r.log, err.Error())
	return nil
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []graphql.Type {
	return append([]graphql.Type(nil), r.types...)
}

// Type returns the registered type called name, or nil.
func (r *Registry) Type(name string) graphql.Type {
	return r.typeIndex[name]
}

// HasType reports whether a type called name is registered.
func (r *Registry) HasType(name string) bool {
	_, ok := r.typeIndex[name]
	return ok
}

// Queries returns a copy of the registered query fields.
func (r *Registry) Queries() map[string]*graphql.Field { return r.queries.copy() }

// Mutations returns a copy of the registered mutation fields.
func (r *Registry) Mutations() map[string]*graphql.Field { return r.mutations.copy() }

// Subscriptions returns a copy of the registered subscription fields.
func (r *Registry) Subscriptions() map[string]*graphql.Field { return r.subscriptions.copy() }

// QueryNames returns the query field names in registration order.
func (r *Registry) QueryNames() []string { return r.queries.names() }

// MutationNames returns the mutation field names in registration order.
func (r *Registry) MutationNames() []string { return r.mutations.names() }

type fieldSet struct {
	kind     Kind
	reserved func(string) bool
	order    []string
	fields   map[string]*graphql.Field
}

func newFieldSet(kind Kind, reserved func(string) bool) *fieldSet {
	return &fieldSet{kind: kind, reserved: reserved, fields: make(map[string]*graphql.Field)}
}

func (s *fieldSet) has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

func (s *fieldSet) available(name string, skipReservedCheck bool) bool {
	return !s.has(name) && (skipReservedCheck || !s.reserved(name))
}

func (s *fieldSet) add(name string, f *graphql.Field) {
	s.order = append(s.order, name)
	s.fields[name] = f
}

func (s *fieldSet) names() []string {
	return append([]string(nil), s.order...)
}

func (s *fieldSet) copy() map[string]*graphql.Field {
	out := make(map[string]*graphql.Field, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}
