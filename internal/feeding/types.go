package feeding

import (
	"errors"
	"time"
)

// Site is a campus cat feeding station with its supply state and location.
type Site struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	LastVisit   time.Time `json:"last_visit"`
	FoodLevel   string    `json:"food_level"`
	WaterLevel  string    `json:"water_level"`
	CatCount    int       `json:"cat_count"`
}

// Sentinel errors for feeding site operations.
var (
	ErrValidation = errors.New("missing or malformed required field")
	ErrNotFound   = errors.New("feeding site not found")
)
