package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"health-diagnosis/internal/places"
)

const (
	DefaultSpecialization = "General Practitioner"

	MsgMapsKeyMissing = "Google Maps API Key not found. Cannot fetch doctor recommendations."
	MsgNoDoctorsFound = "No doctors found or API issue occurred."

	defaultMaxDoctors = 5
)

type PlacesSearcher interface {
	Configured() bool
	TextSearch(ctx context.Context, query string) ([]places.Place, error)
}

type DoctorService struct {
	places     PlacesSearcher
	maxResults int
	logger     *slog.Logger
}

func NewDoctorService(searcher PlacesSearcher, maxResults int, logger *slog.Logger) *DoctorService {
	if maxResults <= 0 {
		maxResults = defaultMaxDoctors
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DoctorService{places: searcher, maxResults: maxResults, logger: logger}
}

// FindDoctors lists "name - address" entries for the first maxResults places
// near location. Entries missing a name or address are dropped.
// Missing credentials and non-200 answers degrade to a single explanatory
// entry; only transport failures are returned as errors.
func (s *DoctorService) FindDoctors(ctx context.Context, location, specialization string) ([]string, error) {
	if !s.places.Configured() {
		return []string{MsgMapsKeyMissing}, nil
	}
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		specialization = DefaultSpecialization
	}
	location = strings.TrimSpace(location)

	query := fmt.Sprintf("%s doctor near %s", specialization, location)
	results, err := s.places.TextSearch(ctx, query)
	if err != nil {
		var statusErr *places.StatusError
		if errors.As(err, &statusErr) || errors.Is(err, places.ErrMissingResults) {
			s.logger.Warn("doctor lookup returned nothing usable", "location", location, "err", err)
			return []string{MsgNoDoctorsFound}, nil
		}
		return nil, fmt.Errorf("find doctors failed: %w", err)
	}

	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	doctors := make([]string, 0, len(results))
	for _, p := range results {
		if p.Name == "" || p.FormattedAddress == "" {
			continue
		}
		doctors = append(doctors, p.Name+" - "+p.FormattedAddress)
	}
	return doctors, nil
}
