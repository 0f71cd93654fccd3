// Package migration tracks and applies registered schema migrations.
//
// Each file in database/migrations calls Register from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
//	}
//
// Run from the CLI: rangershop migrate / migrate:rollback / migrate:status.
package migration

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Migration applies or reverses one schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is one applied migration in the tracking table. Batch groups the
// migrations applied by a single Run, so Rollback reverses exactly one Run.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration under a timestamp-prefixed name, so name order
// and intended order agree.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// Runner applies registered migrations against one database handle.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) applied() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read table: %w", err)
	}

	byName := make(map[string]record, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	return byName, nil
}

// pending returns unapplied migrations in name order.
func (r *Runner) pending() ([]registered, error) {
	applied, err := r.applied()
	if err != nil {
		return nil, err
	}

	var out []registered
	for _, reg := range registry {
		if _, ok := applied[reg.name]; !ok {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// Run applies every pending migration as one batch and returns how many ran.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}

	pending, err := r.pending()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	batch := r.lastBatch() + 1
	for _, reg := range pending {
		slog.Info("migration: applying", "name", reg.name)

		if err := reg.m.Up(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.db.Create(&record{Name: reg.name, Batch: batch}).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
	}

	return len(pending), nil
}

// Rollback reverses the most recent batch, newest migration first, and
// returns how many were reversed.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}

	batch := r.lastBatch()
	if batch == 0 {
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: read batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return 0, fmt.Errorf("migration: %s applied but not registered", row.Name)
		}

		slog.Info("migration: reversing", "name", row.Name)

		if err := m.Down(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return 0, fmt.Errorf("migration: unrecord %s: %w", row.Name, err)
		}
	}

	return len(rows), nil
}

// Status is one row of the migrate:status table.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Statuses reports every registered migration and whether it has run.
func (r *Runner) Statuses() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}

	applied, err := r.applied()
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(registry))
	for _, reg := range registry {
		row, ran := applied[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ran, Batch: row.Batch})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("MAX(batch) as max").Scan(&max)
	return max.Max
}
