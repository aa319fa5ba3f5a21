package feeding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for feeding site persistence.
type Repository interface {
	Create(ctx context.Context, site *Site) error
	GetByID(ctx context.Context, id string) (*Site, error)
	List(ctx context.Context) ([]Site, error)
	Update(ctx context.Context, site *Site) error
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed feeding site repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const siteColumns = "id, name, latitude, longitude, description, last_visit, food_level, water_level, cat_count"

// Create inserts a new site. The ID is generated if empty and unset supply
// levels default to Unknown.
func (r *SQLiteRepository) Create(ctx context.Context, site *Site) error {
	if site.ID == "" {
		site.ID = "site-" + uuid.NewString()[:8]
	}
	if site.FoodLevel == "" {
		site.FoodLevel = "Unknown"
	}
	if site.WaterLevel == "" {
		site.WaterLevel = "Unknown"
	}
	if site.LastVisit.IsZero() {
		site.LastVisit = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feeding_sites (id, name, latitude, longitude, description, last_visit, food_level, water_level, cat_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		site.ID, site.Name, site.Latitude, site.Longitude, site.Description,
		site.LastVisit.UTC().Format(time.RFC3339), site.FoodLevel, site.WaterLevel, site.CatCount,
	)
	if err != nil {
		return fmt.Errorf("creating feeding site: %w", err)
	}

	return nil
}

// GetByID retrieves a site by its ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Site, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+siteColumns+" FROM feeding_sites WHERE id = ?", id)

	site, err := scanSite(row)
	if err != nil {
		return nil, err
	}
	return site, nil
}

// List returns all sites ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Site, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+siteColumns+" FROM feeding_sites ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing feeding sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feeding sites: %w", err)
	}

	if sites == nil {
		sites = []Site{}
	}
	return sites, nil
}

// Update modifies a site's mutable fields (supply state, visit, cat count,
// description).
func (r *SQLiteRepository) Update(ctx context.Context, site *Site) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE feeding_sites
		 SET name = ?, description = ?, last_visit = ?, food_level = ?, water_level = ?, cat_count = ?
		 WHERE id = ?`,
		site.Name, site.Description, site.LastVisit.UTC().Format(time.RFC3339),
		site.FoodLevel, site.WaterLevel, site.CatCount, site.ID,
	)
	if err != nil {
		return fmt.Errorf("updating feeding site: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of sites.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeding_sites").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting feeding sites: %w", err)
	}
	return count, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanSite scans a site from any scanner (Row or Rows).
func scanSite(s scanner) (*Site, error) {
	var site Site
	var lastVisit string

	err := s.Scan(&site.ID, &site.Name, &site.Latitude, &site.Longitude,
		&site.Description, &lastVisit, &site.FoodLevel, &site.WaterLevel, &site.CatCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning feeding site: %w", err)
	}

	site.LastVisit, _ = time.Parse(time.RFC3339, lastVisit) //nolint:errcheck // format is controlled
	return &site, nil
}

// earthRadiusMetres is the mean Earth radius used by the haversine formula.
const earthRadiusMetres = 6371000

// HaversineMetres returns the great-circle distance between two points.
func HaversineMetres(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMetres * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// SortByDistance orders sites in place by great-circle distance from the
// given point, nearest first.
func SortByDistance(sites []Site, lat, lng float64) {
	sort.Slice(sites, func(i, j int) bool {
		return HaversineMetres(lat, lng, sites[i].Latitude, sites[i].Longitude) <
			HaversineMetres(lat, lng, sites[j].Latitude, sites[j].Longitude)
	})
}
