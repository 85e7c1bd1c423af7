package envoi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"colisapp/internal/models"
	"colisapp/pkg/events"
	"colisapp/pkg/mailer"
	"colisapp/pkg/payment"
)

// ServiceInterface defines the contract for the envoi service.
type ServiceInterface interface {
	Get(ctx context.Context, envoiID, userID, role string) (*models.Envoi, error)
	List(ctx context.Context, userID string, page, limit int) (*models.Page[models.Envoi], error)
	Update(ctx context.Context, envoiID, userID, role string, req models.UpdateEnvoiRequest) (*models.Envoi, error)
	CreatePayment(ctx context.Context, envoiID, userID string) (*models.PaymentIntentResponse, error)
	HandlePaymentEvent(ctx context.Context, ev payment.Event) error
}

// Service implements the envoi service logic.
type Service struct {
	repo      RepositoryInterface
	payments  payment.ServiceInterface
	mail      mailer.Mailer
	publisher events.Publisher
	currency  string
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a new envoi service.
func NewService(repo RepositoryInterface, payments payment.ServiceInterface, mail mailer.Mailer, publisher events.Publisher, currency string, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		payments:  payments,
		mail:      mail,
		publisher: publisher,
		currency:  currency,
		now:       time.Now,
		logger:    logger,
	}
}

// Get returns an envoi to its owner or to an administrator.
func (s *Service) Get(ctx context.Context, envoiID, userID, role string) (*models.Envoi, error) {
	e, err := s.repo.FindByID(ctx, envoiID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID && role != models.RoleAdmin {
		return nil, models.ErrForbidden
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, userID string, page, limit int) (*models.Page[models.Envoi], error) {
	items, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("service.List: %w", err)
	}
	return &models.Page[models.Envoi]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Update writes the status fields, tracking number and payment linkage, then
// notifies the client and publishes an event. Notification failures are logged.
func (s *Service) Update(ctx context.Context, envoiID, userID, role string, req models.UpdateEnvoiRequest) (*models.Envoi, error) {
	if _, err := s.Get(ctx, envoiID, userID, role); err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, envoiID, req, s.currency)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}

	s.notify(ctx, e)
	return e, nil
}

func (s *Service) notify(ctx context.Context, e *models.Envoi) {
	ev := models.EnvoiEvent{
		EnvoiID:          e.ID,
		SimulationID:     e.SimulationID,
		EnvoiStatus:      e.Status,
		SimulationStatus: e.SimulationStatus,
		TrackingNumber:   e.TrackingNumber,
		OccurredAt:       s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.TypeEnvoiUpdated, e.ID, ev); err != nil {
		s.logger.Error("publish envoi event", slog.String("envoi_id", e.ID), slog.Any("error", err))
	}

	email, err := s.repo.UserEmail(ctx, e.UserID)
	if err != nil {
		s.logger.Error("lookup envoi owner email", slog.String("envoi_id", e.ID), slog.Any("error", err))
		return
	}
	if err := s.mail.Send(ctx, statusMail(email, e)); err != nil {
		s.logger.Error("send envoi mail", slog.String("envoi_id", e.ID), slog.Any("error", err))
	}
}

func statusMail(to string, e *models.Envoi) mailer.Message {
	body := fmt.Sprintf("Bonjour,\n\nVotre envoi %s est maintenant au statut %s.\n", e.ID, e.Status)
	if e.TrackingNumber != nil {
		body += fmt.Sprintf("Numéro de suivi : %s\n", *e.TrackingNumber)
	}
	body += "\nL'équipe ColisApp\n"
	return mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("ColisApp : envoi %s", e.Status),
		Body:    body,
	}
}

// CreatePayment opens a provider payment for the envoi price and records it as pending.
func (s *Service) CreatePayment(ctx context.Context, envoiID, userID string) (*models.PaymentIntentResponse, error) {
	e, err := s.repo.FindByID(ctx, envoiID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, models.ErrForbidden
	}
	if e.SimulationStatus != models.SimulationConfirmed {
		return nil, models.ErrConflict
	}

	intent, err := s.payments.CreateIntent(ctx, payment.IntentRequest{
		Amount:      e.TotalPrice,
		Currency:    s.currency,
		ReferenceID: "envoi-" + e.ID,
		Metadata:    map[string]string{"envoi_id": e.ID, "simulation_id": e.SimulationID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentFailed, err)
	}

	p, err := s.repo.UpsertPayment(ctx, e.ID, models.PaymentInput{
		ProviderRef: intent.ProviderRef,
		Amount:      e.TotalPrice,
		Currency:    s.currency,
		Status:      models.PaymentPending,
	})
	if err != nil {
		return nil, fmt.Errorf("service.CreatePayment: %w", err)
	}
	return &models.PaymentIntentResponse{PaymentID: p.ID, ClientSecret: intent.ClientSecret}, nil
}

// HandlePaymentEvent applies a verified provider outcome. Unknown payments are ignored.
func (s *Service) HandlePaymentEvent(ctx context.Context, ev payment.Event) error {
	status := models.PaymentFailed
	if ev.Outcome == payment.OutcomeSucceeded {
		status = models.PaymentSucceeded
	}

	envoiID, err := s.repo.ApplyPaymentOutcome(ctx, ev.ProviderRef, status)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("webhook for unknown payment", slog.String("provider_ref", ev.ProviderRef))
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.HandlePaymentEvent: %w", err)
	}

	s.logger.Info("payment outcome applied",
		slog.String("envoi_id", envoiID), slog.String("status", string(status)), slog.String("error", ev.ErrorMessage))
	return nil
}
