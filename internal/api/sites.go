package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/feeding"
)

// handleListSites returns all feeding sites. Public: the listing is meant
// for anyone looking after the campus cats.
func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.feeding.List(r.Context())
	if err != nil {
		s.logger.Error("listing feeding sites", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// handleNearestSites returns all sites ordered by distance from the
// lat/lng query coordinates.
func (s *Server) handleNearestSites(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeBadRequest(w, "lat and lng query parameters are required")
		return
	}

	sites, err := s.feeding.Nearest(r.Context(), lat, lng)
	switch {
	case errors.Is(err, feeding.ErrValidation):
		writeBadRequest(w, "coordinates out of range")
		return
	case err != nil:
		s.logger.Error("sorting feeding sites", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// handleGetSite returns a single feeding site.
func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.feeding.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, feeding.ErrNotFound):
		writeNotFound(w, "feeding site not found")
		return
	case err != nil:
		s.logger.Error("getting feeding site", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, site)
}

// siteRequest is the JSON body for creating or updating a feeding site.
type siteRequest struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	FoodLevel   string  `json:"food_level"`
	WaterLevel  string  `json:"water_level"`
	CatCount    int     `json:"cat_count"`
}

// handleCreateSite registers a new feeding site.
func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var body siteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	site, err := s.feeding.Add(r.Context(), &feeding.Site{
		Name:        body.Name,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Description: body.Description,
		FoodLevel:   body.FoodLevel,
		WaterLevel:  body.WaterLevel,
		CatCount:    body.CatCount,
	})
	switch {
	case errors.Is(err, feeding.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name and valid coordinates are required")
		return
	case err != nil:
		s.logger.Error("creating feeding site", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	identity := identityFrom(r)
	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "create",
		EntityType: "site",
		EntityID:   site.ID,
		Username:   identity.Username,
		Role:       string(identity.Role),
	})
	writeJSON(w, http.StatusCreated, site)
}

// handleUpdateSite applies supply-state changes to a feeding site.
func (s *Server) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.feeding.Get(r.Context(), id)
	switch {
	case errors.Is(err, feeding.ErrNotFound):
		writeNotFound(w, "feeding site not found")
		return
	case err != nil:
		s.logger.Error("getting feeding site", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	// Patch semantics: absent fields keep their stored values
	body := siteRequest{
		Name:        existing.Name,
		Latitude:    existing.Latitude,
		Longitude:   existing.Longitude,
		Description: existing.Description,
		FoodLevel:   existing.FoodLevel,
		WaterLevel:  existing.WaterLevel,
		CatCount:    existing.CatCount,
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	existing.Name = body.Name
	existing.Latitude = body.Latitude
	existing.Longitude = body.Longitude
	existing.Description = body.Description
	existing.FoodLevel = body.FoodLevel
	existing.WaterLevel = body.WaterLevel
	existing.CatCount = body.CatCount
	// an update counts as a visit
	existing.LastVisit = time.Time{}

	site, err := s.feeding.Update(r.Context(), existing)
	switch {
	case errors.Is(err, feeding.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "name and valid coordinates are required")
		return
	case err != nil:
		s.logger.Error("updating feeding site", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	identity := identityFrom(r)
	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "update",
		EntityType: "site",
		EntityID:   site.ID,
		Username:   identity.Username,
		Role:       string(identity.Role),
	})
	writeJSON(w, http.StatusOK, site)
}
