package simulation

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"colisapp/internal/models"
	"colisapp/internal/pricing"

	"github.com/google/uuid"
)

// LocationServiceInterface is what the simulation service needs from the location module.
type LocationServiceInterface interface {
	GetAgency(ctx context.Context, agencyID string) (*models.Agency, error)
	RouteAllowed(ctx context.Context, departureCountryID, arrivalCountryID string) (bool, error)
}

// ServiceInterface defines the contract for the simulation service.
type ServiceInterface interface {
	Create(ctx context.Context, userID string, req models.CreateSimulationRequest) (*models.SimulationCreated, error)
	Pending(ctx context.Context, simulationID, userID string) (*models.Simulation, error)
	Discard(ctx context.Context, simulationID string) error
	Get(ctx context.Context, simulationID, token, userID string) (*models.Simulation, error)
	Confirm(ctx context.Context, simulationID, userID string, req models.ConfirmSimulationRequest) (string, error)
}

// ErrUnknownAgency is returned when a request names an agency that does not exist.
var ErrUnknownAgency = errors.New("unknown agency")

// Service implements the simulation service logic.
type Service struct {
	repo      RepositoryInterface
	locations LocationServiceInterface
	tariff    pricing.Tariff
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a new simulation service.
func NewService(repo RepositoryInterface, locations LocationServiceInterface, tariff pricing.Tariff, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		locations: locations,
		tariff:    tariff,
		now:       time.Now,
		logger:    logger,
	}
}

// Create stores a new simulation. Totals, price and dates sent by the client
// are recomputed here; the stored values are authoritative.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateSimulationRequest) (*models.SimulationCreated, error) {
	departure, err := s.agency(ctx, req.DepartureAgencyID)
	if err != nil {
		return nil, err
	}
	arrival, err := s.agency(ctx, req.ArrivalAgencyID)
	if err != nil {
		return nil, err
	}

	ok, err := s.locations.RouteAllowed(ctx, departure.CountryID, arrival.CountryID)
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	if !ok {
		return nil, models.ErrNoRoute
	}

	quote := s.tariff.Compute(req.Parcels, departure.CountryID != arrival.CountryID, s.now())
	if req.TotalPrice > 0 && req.TotalPrice != quote.TotalPrice {
		s.logger.Info("client price differs from server quote",
			slog.Float64("client", req.TotalPrice), slog.Float64("server", quote.TotalPrice))
	}

	sim := &models.Simulation{
		DestinataireID:    req.DestinataireID,
		DepartureAgencyID: departure.ID,
		ArrivalAgencyID:   arrival.ID,
		Parcels:           req.Parcels,
		TotalWeight:       quote.TotalWeight,
		TotalVolume:       quote.TotalVolume,
		TotalPrice:        quote.TotalPrice,
		DepartureDate:     quote.DepartureDate,
		ArrivalDate:       quote.ArrivalDate,
		SimulationStatus:  req.SimulationStatus,
		EnvoiStatus:       req.EnvoiStatus,
		VerificationToken: uuid.NewString(),
	}
	if sim.SimulationStatus == "" {
		sim.SimulationStatus = models.SimulationDraft
	}
	if sim.EnvoiStatus == "" {
		sim.EnvoiStatus = models.EnvoiPending
	}
	// The owner comes from the token, never from the body.
	if userID != "" {
		sim.UserID = &userID
	}

	if err := s.repo.Create(ctx, sim); err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	return &models.SimulationCreated{ID: sim.ID, VerificationToken: sim.VerificationToken}, nil
}

func (s *Service) agency(ctx context.Context, agencyID string) (*models.Agency, error) {
	a, err := s.locations.GetAgency(ctx, agencyID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUnknownAgency
	}
	if err != nil {
		return nil, fmt.Errorf("service.agency: %w", err)
	}
	return a, nil
}

// Pending returns the draft referenced by the pending-simulation cookie.
// Authenticated callers claim it atomically on the way.
func (s *Service) Pending(ctx context.Context, simulationID, userID string) (*models.Simulation, error) {
	if userID != "" {
		if err := s.repo.Claim(ctx, simulationID, userID); err != nil {
			return nil, err
		}
	}
	sim, err := s.repo.FindByID(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	if sim.SimulationStatus != models.SimulationDraft {
		return nil, models.ErrNotFound
	}
	return sim, nil
}

func (s *Service) Discard(ctx context.Context, simulationID string) error {
	return s.repo.DeleteDraft(ctx, simulationID)
}

// Get returns a simulation to its owner or to a holder of its verification token.
func (s *Service) Get(ctx context.Context, simulationID, token, userID string) (*models.Simulation, error) {
	sim, err := s.repo.FindByID(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(sim.VerificationToken)) == 1 {
		return sim, nil
	}
	if userID != "" && sim.UserID != nil && *sim.UserID == userID {
		return sim, nil
	}
	return nil, models.ErrNotFound // Return NotFound to avoid leaking information
}

// Confirm turns a draft into an envoi owned by userID.
func (s *Service) Confirm(ctx context.Context, simulationID, userID string, req models.ConfirmSimulationRequest) (string, error) {
	envoiID, err := s.repo.Confirm(ctx, simulationID, userID, req.DestinataireID)
	if err != nil {
		return "", fmt.Errorf("service.Confirm: %w", err)
	}
	s.logger.Info("simulation confirmed", slog.String("simulation_id", simulationID), slog.String("envoi_id", envoiID))
	return envoiID, nil
}
