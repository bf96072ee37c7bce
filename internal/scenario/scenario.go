// Package scenario persists named assumption sets per user.
//
// The forecast engine never touches this package; callers load a scenario and
// pass its DialValues to forecast.BuildPlan.
package scenario

import (
	"context"
	"errors"
	"time"

	"runway-forecast/internal/model"

	"github.com/goccy/go-json"
)

var (
	// ErrNotFound is returned when no scenario has the requested id.
	ErrNotFound = errors.New("scenario not found")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid scenario")
)

// Scenario is a saved assumption set.
type Scenario struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Name       string            `json:"name"`
	DialValues model.Assumptions `json:"dialValues"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Patch carries the fields of an update; nil fields are left unchanged.
type Patch struct {
	Name       *string
	DialValues *model.Assumptions
}

// Store is the persistence contract implemented by the memory, SQLite and
// Postgres backends.
type Store interface {
	Create(ctx context.Context, s Scenario) error
	Get(ctx context.Context, id string) (Scenario, error)
	// ListByUser returns a user's scenarios, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]Scenario, error)
	// Update replaces name, dial values and updatedAt of an existing scenario.
	Update(ctx context.Context, s Scenario) error
	Delete(ctx context.Context, id string) error
	Close() error
}

func encodeDialValues(a model.Assumptions) ([]byte, error) {
	return json.Marshal(a)
}

func decodeDialValues(raw []byte) (model.Assumptions, error) {
	var a model.Assumptions
	if err := json.Unmarshal(raw, &a); err != nil {
		return model.Assumptions{}, err
	}
	return a, nil
}
