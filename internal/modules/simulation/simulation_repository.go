package simulation

import (
	"context"
	"errors"
	"fmt"

	"colisapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence of simulations and their parcels.
type RepositoryInterface interface {
	Create(ctx context.Context, sim *models.Simulation) error
	FindByID(ctx context.Context, simulationID string) (*models.Simulation, error)
	Claim(ctx context.Context, simulationID, userID string) error
	DeleteDraft(ctx context.Context, simulationID string) error
	Confirm(ctx context.Context, simulationID, userID string, destinataireID *string) (string, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new simulation repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const simulationColumns = `id, user_id, destinataire_id, departure_agency_id, arrival_agency_id,
	total_weight, total_volume, total_price, departure_date, arrival_date,
	simulation_status, envoi_status, verification_token, created_at, updated_at`

// Create inserts the simulation and its parcels in one transaction and fills
// ID, CreatedAt and UpdatedAt.
func (r *Repository) Create(ctx context.Context, sim *models.Simulation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.Create.Begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
		INSERT INTO simulations (user_id, destinataire_id, departure_agency_id, arrival_agency_id,
			total_weight, total_volume, total_price, departure_date, arrival_date,
			simulation_status, envoi_status, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insert,
		sim.UserID, sim.DestinataireID, sim.DepartureAgencyID, sim.ArrivalAgencyID,
		sim.TotalWeight, sim.TotalVolume, sim.TotalPrice, sim.DepartureDate, sim.ArrivalDate,
		sim.SimulationStatus, sim.EnvoiStatus, sim.VerificationToken,
	).Scan(&sim.ID, &sim.CreatedAt, &sim.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository.Create.Insert: %w", err)
	}

	rows := make([][]any, 0, len(sim.Parcels))
	for i, p := range sim.Parcels {
		rows = append(rows, []any{sim.ID, i + 1, p.Height, p.Width, p.Length, p.Weight})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"parcels"},
		[]string{"simulation_id", "position", "height", "width", "length", "weight"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("repository.Create.CopyParcels: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.Create.Commit: %w", err)
	}
	return nil
}

// FindByID loads a simulation with its parcels ordered by position.
func (r *Repository) FindByID(ctx context.Context, simulationID string) (*models.Simulation, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE id = $1`
	var sim models.Simulation
	err := r.db.QueryRow(ctx, query, simulationID).Scan(
		&sim.ID, &sim.UserID, &sim.DestinataireID, &sim.DepartureAgencyID, &sim.ArrivalAgencyID,
		&sim.TotalWeight, &sim.TotalVolume, &sim.TotalPrice, &sim.DepartureDate, &sim.ArrivalDate,
		&sim.SimulationStatus, &sim.EnvoiStatus, &sim.VerificationToken, &sim.CreatedAt, &sim.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT height, width, length, weight
		FROM parcels
		WHERE simulation_id = $1
		ORDER BY position`, simulationID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID.Parcels: %w", err)
	}
	sim.Parcels, err = pgx.CollectRows(rows, pgx.RowToStructByPos[models.Parcel])
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID.CollectParcels: %w", err)
	}
	return &sim, nil
}

// Claim attaches userID to a draft in a single conditional update. Claiming a
// draft already owned by userID succeeds again.
func (r *Repository) Claim(ctx context.Context, simulationID, userID string) error {
	const query = `
		UPDATE simulations
		SET user_id = $2, updated_at = NOW()
		WHERE id = $1
		  AND simulation_status = 'DRAFT'
		  AND (user_id IS NULL OR user_id = $2)`
	cmd, err := r.db.Exec(ctx, query, simulationID, userID)
	if err != nil {
		return fmt.Errorf("repository.Claim: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM simulations WHERE id = $1 AND simulation_status = 'DRAFT')`, simulationID).Scan(&exists); err != nil {
		return fmt.Errorf("repository.Claim.Exists: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrAlreadyClaimed
}

// DeleteDraft removes a draft; parcels go with it through ON DELETE CASCADE.
func (r *Repository) DeleteDraft(ctx context.Context, simulationID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM simulations WHERE id = $1 AND simulation_status = 'DRAFT'`, simulationID)
	if err != nil {
		return fmt.Errorf("repository.DeleteDraft: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Confirm flips a draft to CONFIRMED and creates its envoi, returning the envoi id.
func (r *Repository) Confirm(ctx context.Context, simulationID, userID string, destinataireID *string) (string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("repository.Confirm.Begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
		UPDATE simulations
		SET simulation_status = 'CONFIRMED',
		    user_id = $2,
		    destinataire_id = COALESCE($3, destinataire_id),
		    updated_at = NOW()
		WHERE id = $1
		  AND simulation_status = 'DRAFT'
		  AND (user_id IS NULL OR user_id = $2)`
	cmd, err := tx.Exec(ctx, update, simulationID, userID, destinataireID)
	if err != nil {
		return "", fmt.Errorf("repository.Confirm.Update: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return "", models.ErrSimulationNotDraft
	}

	var envoiID string
	err = tx.QueryRow(ctx, `
		INSERT INTO envois (simulation_id, user_id, destinataire_id)
		SELECT id, user_id, destinataire_id FROM simulations WHERE id = $1
		RETURNING id`, simulationID).Scan(&envoiID)
	if err != nil {
		return "", fmt.Errorf("repository.Confirm.InsertEnvoi: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("repository.Confirm.Commit: %w", err)
	}
	return envoiID, nil
}
