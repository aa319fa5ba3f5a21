package feeding

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service orchestrates feeding site listing, upkeep and proximity queries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates the feeding site service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Add registers a new feeding site.
func (s *Service) Add(ctx context.Context, site *Site) (*Site, error) {
	if err := validateSite(site); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info("feeding site added", "id", site.ID, "name", site.Name)
	return site, nil
}

// Get retrieves a single site by ID.
func (s *Service) Get(ctx context.Context, id string) (*Site, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all sites ordered by name.
func (s *Service) List(ctx context.Context) ([]Site, error) {
	return s.repo.List(ctx)
}

// Update applies supply-state changes to an existing site and stamps the
// visit time when the caller left it zero.
func (s *Service) Update(ctx context.Context, site *Site) (*Site, error) {
	if site.ID == "" {
		return nil, ErrValidation
	}
	if err := validateSite(site); err != nil {
		return nil, err
	}
	if site.LastVisit.IsZero() {
		site.LastVisit = time.Now().UTC().Truncate(time.Second)
	}

	if err := s.repo.Update(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info("feeding site updated", "id", site.ID)
	return site, nil
}

// Nearest returns all sites ordered by distance from the given point.
func (s *Service) Nearest(ctx context.Context, lat, lng float64) ([]Site, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	sites, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	SortByDistance(sites, lat, lng)
	return sites, nil
}

func validateSite(site *Site) error {
	if site.Name == "" {
		return ErrValidation
	}
	return validateCoordinates(site.Latitude, site.Longitude)
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	return nil
}
