// Package store is the persistence gateway: a namespaced key-value store of
// whole collections. Every write replaces a collection and is checked against
// the version the writer read.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Collection keys.
const (
	KeyApplicants      = "applicants"
	KeyExamQuestions   = "exam_questions"
	KeyExamSuites      = "exam_suites"
	KeyFieldConfigs    = "field_configs"
	KeyDocumentConfigs = "document_configs"
	KeyPaymentConfig   = "payment_config"
	KeyInterviewSlots  = "interview_slots"
	KeyAnnouncements   = "announcements"
	KeyStaffUsers      = "staff_users"
	KeyEducationMajors = "education_majors"
)

// Keys lists every collection key.
var Keys = []string{
	KeyApplicants,
	KeyExamQuestions,
	KeyExamSuites,
	KeyFieldConfigs,
	KeyDocumentConfigs,
	KeyPaymentConfig,
	KeyInterviewSlots,
	KeyAnnouncements,
	KeyStaffUsers,
	KeyEducationMajors,
}

// Collection is one stored collection. A key never written has no records and version 0.
type Collection struct {
	Key     string
	Records []json.RawMessage
	Version int64
}

// Store reads and replaces whole collections.
type Store interface {
	Get(ctx context.Context, key string) (Collection, error)
	// Put replaces the collection when its stored version equals expectedVersion
	// and returns the new version. Otherwise it returns *VersionConflict.
	Put(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error)
	Close() error
}

// VersionConflict reports a write against a stale read.
type VersionConflict struct {
	Key      string
	Expected int64
	Actual   int64
}

func (e *VersionConflict) Error() string {
	return fmt.Sprintf("collection %s changed: expected version %d, found %d", e.Key, e.Expected, e.Actual)
}

// UnknownDriverError reports an unsupported store driver.
type UnknownDriverError struct {
	Driver string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown store driver %q (want memory, sqlite, or postgres)", e.Driver)
}

// Open connects to the store named by driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		p, err := ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, &UnknownDriverError{Driver: driver}
}

// Load decodes a collection into typed records.
func Load[T any](ctx context.Context, s Store, key string) ([]T, int64, error) {
	c, err := s.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(c.Records))
	for i, raw := range c.Records {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, 0, fmt.Errorf("failed to decode %s record %d: %w", key, i, err)
		}
		out = append(out, v)
	}
	return out, c.Version, nil
}

// Save encodes typed records and replaces the collection.
func Save[T any](ctx context.Context, s Store, key string, records []T, expectedVersion int64) (int64, error) {
	raw, err := encode(records)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw, expectedVersion)
}

func encode[T any](records []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// marshalRecords serializes records as one JSON array for SQL storage.
func marshalRecords(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	return json.Marshal(records)
}

func unmarshalRecords(key string, data []byte) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", key, err)
	}
	return records, nil
}
