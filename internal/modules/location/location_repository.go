package location

import (
	"context"
	"errors"
	"fmt"

	"colisapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the read model behind the cascading dropdowns
// plus the admin writes on agencies.
type RepositoryInterface interface {
	ListCountriesWithAgencies(ctx context.Context) ([]models.Option, error)
	ListCitiesWithAgencies(ctx context.Context, countryID string) ([]models.Option, error)
	ListAgenciesByCity(ctx context.Context, cityID string) ([]models.Option, error)
	ListRouteArrivals(ctx context.Context, departureCountryID string) ([]string, error)
	FindAgency(ctx context.Context, agencyID string) (*models.Agency, error)
	CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error)
	DeleteAgency(ctx context.Context, agencyID string) error
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new location repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// ListCountriesWithAgencies returns countries owning at least one agency.
func (r *Repository) ListCountriesWithAgencies(ctx context.Context) ([]models.Option, error) {
	const query = `
		SELECT DISTINCT co.id, co.name
		FROM countries co
		JOIN cities ci ON ci.country_id = co.id
		JOIN agencies a ON a.city_id = ci.id
		ORDER BY co.name`
	opts, err := r.queryOptions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCountriesWithAgencies: %w", err)
	}
	return opts, nil
}

// ListCitiesWithAgencies returns the cities of countryID that have at least one agency.
func (r *Repository) ListCitiesWithAgencies(ctx context.Context, countryID string) ([]models.Option, error) {
	const query = `
		SELECT DISTINCT ci.id, ci.name
		FROM cities ci
		JOIN agencies a ON a.city_id = ci.id
		WHERE ci.country_id = $1
		ORDER BY ci.name`
	opts, err := r.queryOptions(ctx, query, countryID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCitiesWithAgencies: %w", err)
	}
	return opts, nil
}

func (r *Repository) ListAgenciesByCity(ctx context.Context, cityID string) ([]models.Option, error) {
	const query = `
		SELECT id, name
		FROM agencies
		WHERE city_id = $1
		ORDER BY name`
	opts, err := r.queryOptions(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAgenciesByCity: %w", err)
	}
	return opts, nil
}

// ListRouteArrivals returns the arrival country ids configured for departureCountryID.
func (r *Repository) ListRouteArrivals(ctx context.Context, departureCountryID string) ([]string, error) {
	const query = `SELECT arrival_country_id FROM routes WHERE departure_country_id = $1`
	rows, err := r.db.Query(ctx, query, departureCountryID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListRouteArrivals.Query: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repository.ListRouteArrivals.Collect: %w", err)
	}
	return ids, nil
}

func (r *Repository) FindAgency(ctx context.Context, agencyID string) (*models.Agency, error) {
	const query = `
		SELECT a.id, a.name, a.address, a.city_id, ci.country_id, a.created_at
		FROM agencies a
		JOIN cities ci ON ci.id = a.city_id
		WHERE a.id = $1`
	var a models.Agency
	err := r.db.QueryRow(ctx, query, agencyID).Scan(&a.ID, &a.Name, &a.Address, &a.CityID, &a.CountryID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindAgency: %w", err)
	}
	return &a, nil
}

func (r *Repository) CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error) {
	const query = `
		INSERT INTO agencies (name, address, city_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, address, city_id,
		          (SELECT country_id FROM cities WHERE id = $3), created_at`
	var a models.Agency
	err := r.db.QueryRow(ctx, query, req.Name, req.Address, req.CityID).
		Scan(&a.ID, &a.Name, &a.Address, &a.CityID, &a.CountryID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateAgency: %w", err)
	}
	return &a, nil
}

func (r *Repository) DeleteAgency(ctx context.Context, agencyID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM agencies WHERE id = $1`, agencyID)
	if err != nil {
		return fmt.Errorf("repository.DeleteAgency: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) queryOptions(ctx context.Context, query string, args ...any) ([]models.Option, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Option, error) {
		var o models.Option
		err := row.Scan(&o.ID, &o.Name)
		return o, err
	})
}
