package manifest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/oshokin/agf-installer/internal/domain/release"
)

// LatestVersion is the version alias that resolves to the newest published release.
const LatestVersion = "latest"

// ErrVersionExists is returned when a version appears twice or is re-published.
var ErrVersionExists = errors.New("release version already exists")

// Store provides read access to release records.
type Store interface {
	// Get returns the record for version, or release.ErrNotFound.
	// The alias LatestVersion resolves to the newest published record.
	Get(ctx context.Context, version string) (*release.Record, error)
	// List returns every record in ascending version order.
	List(ctx context.Context) ([]*release.Record, error)
	// Latest returns the newest published record, or release.ErrNotFound.
	Latest(ctx context.Context) (*release.Record, error)
}

// MemoryStore is an immutable Store over an in-memory record set.
type MemoryStore struct {
	// records are sorted by ascending version.
	records []*release.Record
	// byVersion indexes records by normalized version.
	byVersion map[string]*release.Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore indexes records. Duplicate versions are rejected.
func NewMemoryStore(records []*release.Record) (*MemoryStore, error) {
	store := &MemoryStore{
		records:   slices.Clone(records),
		byVersion: make(map[string]*release.Record, len(records)),
	}

	for _, record := range records {
		if _, exists := store.byVersion[record.Version()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrVersionExists, record.Version())
		}

		store.byVersion[record.Version()] = record
	}

	slices.SortStableFunc(store.records, func(a, b *release.Record) int {
		return a.Compare(b)
	})

	return store, nil
}

// Load parses manifest bytes into a MemoryStore.
func Load(data []byte) (*MemoryStore, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records()
	if err != nil {
		return nil, err
	}

	return NewMemoryStore(records)
}

// Get returns the record for version.
func (s *MemoryStore) Get(ctx context.Context, version string) (*release.Record, error) {
	if strings.EqualFold(strings.TrimSpace(version), LatestVersion) {
		return s.Latest(ctx)
	}

	normalized := release.NormalizeVersion(version)

	record, ok := s.byVersion[normalized]
	if !ok {
		return nil, fmt.Errorf("version %q: %w", version, release.ErrNotFound)
	}

	return record, nil
}

// List returns all records in ascending version order.
func (s *MemoryStore) List(_ context.Context) ([]*release.Record, error) {
	return slices.Clone(s.records), nil
}

// Latest returns the newest record whose artifacts all carry checksums.
func (s *MemoryStore) Latest(_ context.Context) (*release.Record, error) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Published() {
			return s.records[i], nil
		}
	}

	return nil, fmt.Errorf("no published release: %w", release.ErrNotFound)
}
