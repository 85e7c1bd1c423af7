package envoi

import (
	"context"
	"errors"
	"fmt"

	"colisapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence of envois and their payments.
type RepositoryInterface interface {
	FindByID(ctx context.Context, envoiID string) (*models.Envoi, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Envoi, int, error)
	Update(ctx context.Context, envoiID string, req models.UpdateEnvoiRequest, currency string) (*models.Envoi, error)
	UpsertPayment(ctx context.Context, envoiID string, in models.PaymentInput) (*models.Payment, error)
	ApplyPaymentOutcome(ctx context.Context, providerRef string, status models.PaymentStatus) (string, error)
	UserEmail(ctx context.Context, userID string) (string, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new envoi repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const envoiSelect = `
	SELECT e.id, e.simulation_id, e.user_id, e.destinataire_id, e.tracking_number,
	       e.envoi_status, s.simulation_status, s.total_price, p.id,
	       e.created_at, e.updated_at
	FROM envois e
	JOIN simulations s ON s.id = e.simulation_id
	LEFT JOIN payments p ON p.envoi_id = e.id`

func scanEnvoi(row pgx.Row) (*models.Envoi, error) {
	var e models.Envoi
	err := row.Scan(
		&e.ID, &e.SimulationID, &e.UserID, &e.DestinataireID, &e.TrackingNumber,
		&e.Status, &e.SimulationStatus, &e.TotalPrice, &e.PaymentID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func findByID(ctx context.Context, q querier, envoiID string) (*models.Envoi, error) {
	e, err := scanEnvoi(q.QueryRow(ctx, envoiSelect+` WHERE e.id = $1`, envoiID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *Repository) FindByID(ctx context.Context, envoiID string) (*models.Envoi, error) {
	e, err := findByID(ctx, r.db, envoiID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return e, err
}

// ListByUser returns one page of the user's envois, newest first, and the total count.
func (r *Repository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Envoi, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM envois WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Count: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, envoiSelect+`
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Query: %w", err)
	}
	defer rows.Close()

	envois := []models.Envoi{}
	for rows.Next() {
		e, err := scanEnvoi(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByUser.Scan: %w", err)
		}
		envois = append(envois, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Rows: %w", err)
	}
	return envois, total, nil
}

// Update applies the non-nil fields of req in one transaction. The envoi
// status is mirrored on the simulation row.
func (r *Repository) Update(ctx context.Context, envoiID string, req models.UpdateEnvoiRequest, currency string) (*models.Envoi, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Update.Begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var simulationID string
	err = tx.QueryRow(ctx, `
		UPDATE envois
		SET envoi_status = COALESCE($2, envoi_status),
		    tracking_number = COALESCE($3, tracking_number),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING simulation_id`, envoiID, req.EnvoiStatus, req.TrackingNumber).Scan(&simulationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update.Envoi: %w", err)
	}

	if req.EnvoiStatus != nil || req.SimulationStatus != nil {
		_, err = tx.Exec(ctx, `
			UPDATE simulations
			SET envoi_status = COALESCE($2, envoi_status),
			    simulation_status = COALESCE($3, simulation_status),
			    updated_at = NOW()
			WHERE id = $1`, simulationID, req.EnvoiStatus, req.SimulationStatus)
		if err != nil {
			return nil, fmt.Errorf("repository.Update.Simulation: %w", err)
		}
	}

	if req.Payment != nil {
		in := *req.Payment
		if in.Currency == "" {
			in.Currency = currency
		}
		if _, err := upsertPayment(ctx, tx, envoiID, in); err != nil {
			return nil, fmt.Errorf("repository.Update.Payment: %w", err)
		}
	}

	e, err := findByID(ctx, tx, envoiID)
	if err != nil {
		return nil, fmt.Errorf("repository.Update.Reload: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Update.Commit: %w", err)
	}
	return e, nil
}

// UpsertPayment records the provider payment of an envoi; an envoi has at most one.
func (r *Repository) UpsertPayment(ctx context.Context, envoiID string, in models.PaymentInput) (*models.Payment, error) {
	p, err := upsertPayment(ctx, r.db, envoiID, in)
	if err != nil {
		return nil, fmt.Errorf("repository.UpsertPayment: %w", err)
	}
	return p, nil
}

func upsertPayment(ctx context.Context, q querier, envoiID string, in models.PaymentInput) (*models.Payment, error) {
	const query = `
		INSERT INTO payments (envoi_id, provider_ref, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (envoi_id) DO UPDATE
		SET provider_ref = EXCLUDED.provider_ref,
		    amount = EXCLUDED.amount,
		    currency = EXCLUDED.currency,
		    status = EXCLUDED.status,
		    updated_at = NOW()
		RETURNING id, envoi_id, provider_ref, amount, currency, status, updated_at`
	var p models.Payment
	err := q.QueryRow(ctx, query, envoiID, in.ProviderRef, in.Amount, in.Currency, in.Status).Scan(
		&p.ID, &p.EnvoiID, &p.ProviderRef, &p.Amount, &p.Currency, &p.Status, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyPaymentOutcome sets the status of the payment identified by its
// provider reference. A successful payment completes the simulation.
// It returns the envoi id.
func (r *Repository) ApplyPaymentOutcome(ctx context.Context, providerRef string, status models.PaymentStatus) (string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("repository.ApplyPaymentOutcome.Begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var envoiID string
	err = tx.QueryRow(ctx, `
		UPDATE payments SET status = $2, updated_at = NOW()
		WHERE provider_ref = $1
		RETURNING envoi_id`, providerRef, status).Scan(&envoiID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.ApplyPaymentOutcome.Payment: %w", err)
	}

	if status == models.PaymentSucceeded {
		_, err = tx.Exec(ctx, `
			UPDATE simulations s
			SET simulation_status = 'COMPLETED', updated_at = NOW()
			FROM envois e
			WHERE e.id = $1 AND s.id = e.simulation_id`, envoiID)
		if err != nil {
			return "", fmt.Errorf("repository.ApplyPaymentOutcome.Simulation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("repository.ApplyPaymentOutcome.Commit: %w", err)
	}
	return envoiID, nil
}

func (r *Repository) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.UserEmail: %w", err)
	}
	return email, nil
}
