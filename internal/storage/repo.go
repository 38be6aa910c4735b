// Package storage persists named calculator scenarios.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pefman/cr-calc/internal/models"
)

var ErrNotFound = errors.New("scenario not found")

// Scenario is a saved calculator setup. Results are not stored; they are
// recomputed from the current dataset when read.
type Scenario struct {
	ID        int64                    `json:"id"`
	Name      string                   `json:"name"`
	DefenceID int                      `json:"defence_id,omitempty"`
	Attacks   []models.AttackSelection `json:"attacks"`
	CreatedAt time.Time                `json:"created_at"`
}

type Repo interface {
	Save(ctx context.Context, sc Scenario) (Scenario, error)
	Get(ctx context.Context, id int64) (Scenario, error)
	List(ctx context.Context) ([]Scenario, error)
	Delete(ctx context.Context, id int64) error
}

// Validate checks and normalizes a scenario before it is stored.
func Validate(sc Scenario) (Scenario, error) {
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return Scenario{}, errors.New("scenario name is required")
	}
	if sc.DefenceID < 0 {
		return Scenario{}, errors.New("defence id must not be negative")
	}
	if sc.Attacks == nil {
		sc.Attacks = []models.AttackSelection{}
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	return sc, nil
}
