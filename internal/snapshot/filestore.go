package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
)

// FileStore keeps the snapshot in one JSON file. Save writes a temp file and
// renames it over the target, so a crash mid-save leaves the previous
// snapshot intact; the mutex keeps concurrent saves from interleaving.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Gateway = (*FileStore)(nil)

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and validates the snapshot. A missing file is an empty store,
// not an error: the service boots clean on first run.
func (s *FileStore) Load(ctx context.Context) (model.Snapshot, error) {
	const op = "snapshot.load"
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, fault.Storage(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return model.Snapshot{}, fault.Storage(op, err)
	}

	var snap model.Snapshot
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return model.Snapshot{}, fault.Storage(op, fmt.Errorf("%w: %v", ErrCorrupt, err))
	}
	if err := validate(snap); err != nil {
		return model.Snapshot{}, fault.Storage(op, fmt.Errorf("%w: %v", ErrCorrupt, err))
	}
	return snap, nil
}

// Save atomically replaces the snapshot file.
func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	const op = "snapshot.save"
	if err := ctx.Err(); err != nil {
		return fault.Storage(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fault.Storage(op, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fault.Storage(op, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fault.Storage(op, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fault.Storage(op, err)
	}
	return nil
}

func emptySnapshot() model.Snapshot {
	return model.Snapshot{
		Goods:     []model.Good{},
		Employees: []model.Employee{},
		Customers: []model.Customer{},
		Sales:     []model.Sale{},
	}
}

// validate rejects snapshots that break the store invariants.
func validate(snap model.Snapshot) error {
	if snap.Goods == nil || snap.Customers == nil {
		return fmt.Errorf("missing goods or customers field")
	}
	for _, g := range snap.Goods {
		if g.Name == "" {
			return fmt.Errorf("good with empty name")
		}
		if g.Quantity < 0 {
			return fmt.Errorf("good %q has negative quantity", g.Name)
		}
		if g.Price.IsNegative() {
			return fmt.Errorf("good %q has negative price", g.Name)
		}
	}
	for _, c := range snap.Customers {
		if c.ID == "" {
			return fmt.Errorf("customer with empty id")
		}
		sum := decimal.Zero
		for _, o := range c.Orders {
			sum = sum.Add(o.TotalAmount)
		}
		if !sum.Equal(c.LoyaltyPoints) {
			return fmt.Errorf("customer %q loyalty points %s do not match order total %s", c.ID, c.LoyaltyPoints, sum)
		}
	}
	return nil
}
