// Package storage defines the record store contract and the backend-agnostic
// pieces shared by every implementation: the factory registry, the SQL store
// used by the relational backends, content hashing and the batched loader.
//
// An event document is stored whole (raw JSON, the source of every export) and
// also split into devices, patients and mdr_texts rows so completeness checks
// such as MissingPatients can run as joins.
package storage

import (
	"context"
	"fmt"

	"maude/internal/domain"
	"maude/internal/value"
)

// Store is a key to document store with insert and ordered scan.
type Store interface {
	// Insert stores docs in order, assigning increasing ids. Documents whose
	// canonical JSON was already stored are skipped and counted as duplicates.
	Insert(ctx context.Context, docs []value.Value) (InsertResult, error)
	// Scan calls fn for every stored event in id order. A non-nil error from
	// fn stops the scan and is returned.
	Scan(ctx context.Context, fn func(Raw) error) error
	// MissingPatients lists events that have no patient rows, in id order.
	MissingPatients(ctx context.Context) ([]domain.MissingPatient, error)
	Counts(ctx context.Context) (Counts, error)
	// Clear deletes every event and sub-record.
	Clear(ctx context.Context) error
	Close()
}

// Raw is one stored event as scanned.
type Raw struct {
	ID   int64
	JSON []byte
}

// Record decodes the stored JSON.
func (r Raw) Record() (domain.Record, error) {
	doc, err := value.Parse(r.JSON)
	if err != nil {
		return domain.Record{ID: r.ID}, fmt.Errorf("record %d: decode: %w", r.ID, err)
	}
	return domain.Record{ID: r.ID, Doc: doc}, nil
}

type InsertResult struct {
	Inserted   int
	Duplicates int
}

func (r *InsertResult) Add(o InsertResult) {
	r.Inserted += o.Inserted
	r.Duplicates += o.Duplicates
}

// Counts reports rows per collection.
type Counts struct {
	Events   int64 `json:"events"`
	Devices  int64 `json:"devices"`
	Patients int64 `json:"patients"`
	Texts    int64 `json:"mdr_texts"`
}
