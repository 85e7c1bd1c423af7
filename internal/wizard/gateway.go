package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"colisapp/internal/models"
	"colisapp/internal/pricing"
	"colisapp/internal/validation"
)

// SimulationService is the server side of the wizard.
type SimulationService interface {
	CreateSimulation(ctx context.Context, req models.CreateSimulationRequest) (*models.SimulationCreated, error)
	// PendingSimulation returns nil, nil when no simulation is pending.
	PendingSimulation(ctx context.Context) (*models.Simulation, error)
	DiscardPending(ctx context.Context) error
}

// StatusError is implemented by transport errors carrying an HTTP answer.
type StatusError interface {
	error
	StatusCode() int
	Messages() []string
}

// ValidationError carries every schema violation of a rejected submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ErrServer wraps 5xx answers of the creation endpoint.
var ErrServer = errors.New("server error")

// Gateway turns a draft into a creation request, checks it against the
// submission schema and sends it.
type Gateway struct {
	client   SimulationService
	validate *validation.Validator
	tariff   pricing.Tariff
	now      func() time.Time
}

func NewGateway(client SimulationService, maxParcels int, tariff pricing.Tariff) *Gateway {
	return &Gateway{
		client:   client,
		validate: validation.New(maxParcels),
		tariff:   tariff,
		now:      time.Now,
	}
}

// BuildRequest serializes draft with a client-side price estimate. The server
// recomputes totals on creation.
func (g *Gateway) BuildRequest(draft SimulationDraft) models.CreateSimulationRequest {
	quote := g.tariff.Compute(draft.Parcels, draft.International(), g.now())
	return models.CreateSimulationRequest{
		DepartureAgencyID: draft.Departure.AgencyID,
		ArrivalAgencyID:   draft.Destination.AgencyID,
		Parcels:           append([]models.Parcel(nil), draft.Parcels...),
		TotalWeight:       quote.TotalWeight,
		TotalVolume:       quote.TotalVolume,
		TotalPrice:        quote.TotalPrice,
		DepartureDate:     quote.DepartureDate,
		ArrivalDate:       quote.ArrivalDate,
		SimulationStatus:  models.SimulationDraft,
		EnvoiStatus:       models.EnvoiPending,
	}
}

// Submit validates every rule before any network call. A schema failure, local
// or from a 400 answer, is a *ValidationError listing all messages.
func (g *Gateway) Submit(ctx context.Context, draft SimulationDraft) (*models.SimulationCreated, error) {
	req := g.BuildRequest(draft)
	if err := g.validate.Struct(req); err != nil {
		return nil, &ValidationError{Messages: g.validate.Messages(err)}
	}

	created, err := g.client.CreateSimulation(ctx, req)
	if err != nil {
		var se StatusError
		if errors.As(err, &se) {
			switch {
			case se.StatusCode() == http.StatusBadRequest:
				return nil, &ValidationError{Messages: se.Messages()}
			case se.StatusCode() >= http.StatusInternalServerError:
				return nil, fmt.Errorf("%w: %w", ErrServer, err)
			}
		}
		return nil, fmt.Errorf("submit simulation: %w", err)
	}
	return created, nil
}
