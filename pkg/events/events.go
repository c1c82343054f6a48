package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event is an audit record of something that changed the running service:
// a catalog swap, a config reload, or a failed attempt at either.
type Event interface {
	Type() string
	Timestamp() time.Time
	MarshalData() ([]byte, error)
}

// Base contains common event metadata.
type Base struct {
	Ts     time.Time `json:"ts"`
	Source string    `json:"source"` // file path or "config"
}

func (b Base) Timestamp() time.Time { return b.Ts }

const (
	TypeCatalogReloaded = "catalog.reloaded"
	TypeCatalogFailed   = "catalog.reload_failed"
	TypeConfigApplied   = "config.applied"
	TypeConfigRejected  = "config.rejected"
)

// CatalogReloaded is emitted after a new table replaced the active one.
type CatalogReloaded struct {
	Base
	Rows   int      `json:"rows"`
	Brands []string `json:"brands"`
}

func (e CatalogReloaded) Type() string                 { return TypeCatalogReloaded }
func (e CatalogReloaded) MarshalData() ([]byte, error) { return json.Marshal(e) }

// CatalogReloadFailed records a reload that kept the previous table.
type CatalogReloadFailed struct {
	Base
	Error string `json:"error"`
}

func (e CatalogReloadFailed) Type() string                 { return TypeCatalogFailed }
func (e CatalogReloadFailed) MarshalData() ([]byte, error) { return json.Marshal(e) }

// ConfigApplied lists the settings that changed.
type ConfigApplied struct {
	Base
	Fields    []string `json:"fields"`
	Metric    string   `json:"metric"`
	Threshold float64  `json:"threshold"`
}

func (e ConfigApplied) Type() string                 { return TypeConfigApplied }
func (e ConfigApplied) MarshalData() ([]byte, error) { return json.Marshal(e) }

// ConfigRejected records an invalid configuration that was not applied.
type ConfigRejected struct {
	Base
	Error string `json:"error"`
}

func (e ConfigRejected) Type() string                 { return TypeConfigRejected }
func (e ConfigRejected) MarshalData() ([]byte, error) { return json.Marshal(e) }

// EventStore keeps events in append order.
type EventStore interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, limit int) ([]StoredEvent, error)
}

// StoredEvent is the stored representation. Seq increases monotonically.
type StoredEvent struct {
	Seq     int64           `json:"seq"`
	Type    string          `json:"type"`
	Ts      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

// MemoryStore keeps the most recent events in a ring buffer.
type MemoryStore struct {
	mu   sync.RWMutex
	buf  []StoredEvent
	next int
	full bool
	seq  int64
}

// NewMemoryStore retains up to capacity events.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryStore{buf: make([]StoredEvent, capacity)}
}

func (s *MemoryStore) Append(_ context.Context, e Event) error {
	data, err := e.MarshalData()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.buf[s.next] = StoredEvent{Seq: s.seq, Type: e.Type(), Ts: e.Timestamp(), Payload: data}
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// List returns up to limit events, newest first. limit <= 0 returns all retained.
func (s *MemoryStore) List(_ context.Context, limit int) ([]StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.next
	if s.full {
		n = len(s.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]StoredEvent, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (s.next - 1 - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out, nil
}

// ReloadState summarises the reload history.
type ReloadState struct {
	LastReload     *time.Time `json:"last_reload,omitempty"`
	LastFailure    *time.Time `json:"last_failure,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	Reloads        int        `json:"reloads"`
	Failures       int        `json:"failures"`
	ConsecFailures int        `json:"consecutive_failures"`
}

// Replay folds events (oldest first) into a ReloadState.
func Replay(events []StoredEvent) *ReloadState {
	st := &ReloadState{}
	for _, se := range events {
		ts := se.Ts
		switch se.Type {
		case TypeCatalogReloaded, TypeConfigApplied:
			st.Reloads++
			st.ConsecFailures = 0
			st.LastReload = &ts
		case TypeCatalogFailed, TypeConfigRejected:
			var ev struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(se.Payload, &ev)
			st.Failures++
			st.ConsecFailures++
			st.LastFailure = &ts
			st.LastError = ev.Error
		}
	}
	return st
}
