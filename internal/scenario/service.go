package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"runway-forecast/internal/model"

	"github.com/google/uuid"
)

// Service applies validation, ids and timestamps on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Service) Create(ctx context.Context, userID, name string, dial model.Assumptions) (Scenario, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" {
		return Scenario{}, fmt.Errorf("%w: userId is required", ErrInvalid)
	}
	if name == "" {
		return Scenario{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if err := dial.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("%w: dialValues: %v", ErrInvalid, err)
	}

	now := s.now()
	sc := Scenario{
		ID:         s.newID(),
		UserID:     userID,
		Name:       name,
		DialValues: dial,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, sc); err != nil {
		return Scenario{}, fmt.Errorf("creating scenario: %w", err)
	}
	return sc, nil
}

func (s *Service) Get(ctx context.Context, id string) (Scenario, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Scenario, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalid)
	}
	return s.store.ListByUser(ctx, userID)
}

// Update applies only the fields present in p.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Scenario, error) {
	sc, err := s.store.Get(ctx, id)
	if err != nil {
		return Scenario{}, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Scenario{}, fmt.Errorf("%w: name cannot be empty", ErrInvalid)
		}
		sc.Name = name
	}
	if p.DialValues != nil {
		if err := p.DialValues.Validate(); err != nil {
			return Scenario{}, fmt.Errorf("%w: dialValues: %v", ErrInvalid, err)
		}
		sc.DialValues = *p.DialValues
	}
	sc.UpdatedAt = s.now()

	if err := s.store.Update(ctx, sc); err != nil {
		return Scenario{}, fmt.Errorf("updating scenario: %w", err)
	}
	return sc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
