package court

import (
	"errors"
	"strings"
)

// Status values computed on read.
const (
	StatusOpen = "Open"
	StatusFull = "Full"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("court name is required")
	ErrNegativeCapacity  = errors.New("capacity cannot be negative")
	ErrNegativeOccupancy = errors.New("occupancy cannot be negative")
)

// Court is a playable court with a denormalized occupancy counter.
type Court struct {
	ID          string
	Name        string
	MaxCapacity int // 0 means unlimited
	Occupancy   int
}

// Validate checks if the Court has valid data.
// PRE: Court struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Court) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.MaxCapacity < 0 {
		return ErrNegativeCapacity
	}
	if c.Occupancy < 0 {
		return ErrNegativeOccupancy
	}
	return nil
}

// HasRoom reports whether one more player may check in.
func (c *Court) HasRoom() bool {
	return c.MaxCapacity == 0 || c.Occupancy < c.MaxCapacity
}

// Status returns StatusFull when a capped court is at capacity.
func (c *Court) Status() string {
	if c.HasRoom() {
		return StatusOpen
	}
	return StatusFull
}
