// Package session holds the last successful fetch for one interactive
// session.
package session

import (
	"encoding/json"
	"time"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// State is a snapshot of the most recent successful fetch. It is created on
// the first success and replaced wholesale on each subsequent one; there is
// no explicit clear operation.
type State struct {
	Resource  catalog.Resource
	Payload   tabular.Payload
	Raw       json.RawMessage
	Table     *tabular.Table
	FetchedAt time.Time
}

// Store scopes state to a single interactive session. Failed fetches must
// never reach Set, so the previously displayed data survives them.
type Store struct {
	current *State
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Set overwrites the session with a successful fetch outcome.
func (s *Store) Set(res catalog.Resource, payload tabular.Payload, raw json.RawMessage) *State {
	s.current = &State{
		Resource:  res,
		Payload:   payload,
		Raw:       raw,
		Table:     tabular.ToTable(payload),
		FetchedAt: time.Now(),
	}
	return s.current
}

// Current returns the latest state, or false before the first success.
func (s *Store) Current() (*State, bool) {
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}
