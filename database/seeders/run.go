// Package seeders fills a freshly migrated database with sample shop data.
//
// A seeder registers itself from init():
//
//	func init() {
//	    seeders.Register("products", seedProducts)
//	}
//
// and runs via the CLI: rangershop seed.
package seeders

import (
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

// Seeder inserts one kind of sample data. Seeders must be idempotent so
// repeated seed runs do not duplicate rows.
type Seeder func(db *gorm.DB) error

type entry struct {
	name string
	fn   Seeder
}

var (
	mu       sync.Mutex
	registry []entry
)

// Register adds a seeder under name. Seeders run in registration order.
func Register(name string, fn Seeder) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, entry{name: name, fn: fn})
}

// RunAll executes every registered seeder and stops on the first failure.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]entry, len(registry))
	copy(current, registry)
	mu.Unlock()

	for _, e := range current {
		slog.Info("seed: running", "name", e.name)
		if err := e.fn(db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
	}

	slog.Info("seed: done", "seeders", len(current))
	return nil
}
