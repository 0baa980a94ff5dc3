package cep

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"horizonte-forms/internal/validation"
)

// FieldKey scopes a form field to the client that owns it, so that two
// visitors editing a field with the same id never see each other's values.
// It returns "" when field is empty, which disables the staleness check.
func FieldKey(client string, field string) string {
	client, field = strings.TrimSpace(client), strings.TrimSpace(field)
	if field == "" {
		return ""
	}
	return client + "\x1f" + field
}

// Tracker remembers the latest CEP each form field asked for, so that a
// response for a value the field no longer holds can be discarded. Fields
// are keyed with FieldKey.
type Tracker struct {
	mu     sync.Mutex
	fields map[string]*fieldState
}

type fieldState struct {
	cep      string
	inFlight int
}

// Request identifies one in-flight lookup for a field.
type Request struct {
	Field string
	CEP   string
}

func NewTracker() *Tracker {
	return &Tracker{fields: make(map[string]*fieldState)}
}

// Begin records rawCEP as the value field currently holds.
func (t *Tracker) Begin(field string, rawCEP string) Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[field]
	if !ok {
		state = &fieldState{}
		t.fields[field] = state
	}
	state.cep = validation.NormalizeDigits(rawCEP)
	state.inFlight++
	return Request{Field: field, CEP: state.cep}
}

// Observe records an edit to field without starting a lookup. In-flight
// lookups for any other value become stale.
func (t *Tracker) Observe(field string, rawCEP string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.fields[field]; ok {
		state.cep = validation.NormalizeDigits(rawCEP)
	}
}

// Current reports whether the field still holds the CEP req was made for.
func (t *Tracker) Current(req Request) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[req.Field]
	return ok && state.cep == req.CEP
}

// Done releases req. The field is forgotten once no lookup for it is in
// flight.
func (t *Tracker) Done(req Request) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[req.Field]
	if !ok {
		return
	}
	state.inFlight--
	if state.inFlight <= 0 {
		delete(t.fields, req.Field)
	}
}

// Guarded wraps a Lookuper so that lookups tied to a field are dropped with
// ErrStale when the field moved on before the response arrived.
type Guarded struct {
	next    Lookuper
	tracker *Tracker
}

func NewGuarded(next Lookuper, tracker *Tracker) *Guarded {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Guarded{next: next, tracker: tracker}
}

func (g *Guarded) Lookup(ctx context.Context, rawCEP string) (Address, error) {
	return g.next.Lookup(ctx, rawCEP)
}

// Observe forwards a field edit to the tracker. An empty field is ignored.
func (g *Guarded) Observe(field string, rawCEP string) {
	if field == "" {
		return
	}
	g.tracker.Observe(field, rawCEP)
}

// LookupField resolves rawCEP on behalf of field. An empty field disables
// the staleness check.
func (g *Guarded) LookupField(ctx context.Context, field string, rawCEP string) (Address, error) {
	if field == "" {
		return g.next.Lookup(ctx, rawCEP)
	}

	req := g.tracker.Begin(field, rawCEP)
	defer g.tracker.Done(req)

	address, err := g.next.Lookup(ctx, rawCEP)
	if !g.tracker.Current(req) {
		return Address{}, fmt.Errorf("%w: field %s", ErrStale, field)
	}
	return address, err
}
