package feeding

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// sampleSites are the two starter locations inserted on first boot.
var sampleSites = []Site{
	{
		Name:        "Qatar University Campus",
		Latitude:    25.3755,
		Longitude:   51.4904,
		Description: "Feeding station near the main library",
		FoodLevel:   "Medium",
		WaterLevel:  "High",
		CatCount:    5,
	},
	{
		Name:        "Katara Cultural Village",
		Latitude:    25.3594,
		Longitude:   51.5259,
		Description: "Feeding area near the amphitheater",
		FoodLevel:   "Low",
		WaterLevel:  "Medium",
		CatCount:    3,
	},
}

// SeedSites inserts the sample feeding sites when the table is empty.
// Returns the number of sites created.
func SeedSites(ctx context.Context, repo Repository, logger *slog.Logger) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking site count: %w", err)
	}

	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	created := 0
	for _, sample := range sampleSites {
		site := sample
		site.LastVisit = now
		if err := repo.Create(ctx, &site); err != nil {
			return created, fmt.Errorf("seeding site %q: %w", site.Name, err)
		}
		created++
	}

	logger.Info("sample feeding sites created", "count", created)
	return created, nil
}
