package location

import (
	"context"
	"fmt"

	"colisapp/internal/models"
)

// RouteFilter decides which destination countries are reachable from a
// departure country. The location service never hardcodes that rule.
type RouteFilter interface {
	Filter(ctx context.Context, departureCountryID string, candidates []models.Option) ([]models.Option, error)
}

// RouteTableFilter keeps the candidates listed in the routes table.
type RouteTableFilter struct {
	repo RepositoryInterface
}

func NewRouteTableFilter(repo RepositoryInterface) *RouteTableFilter {
	return &RouteTableFilter{repo: repo}
}

func (f *RouteTableFilter) Filter(ctx context.Context, departureCountryID string, candidates []models.Option) ([]models.Option, error) {
	arrivals, err := f.repo.ListRouteArrivals(ctx, departureCountryID)
	if err != nil {
		return nil, fmt.Errorf("RouteTableFilter.Filter: %w", err)
	}
	allowed := make(map[string]struct{}, len(arrivals))
	for _, id := range arrivals {
		allowed[id] = struct{}{}
	}
	out := make([]models.Option, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := allowed[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// RouteFilterFunc adapts a plain function.
type RouteFilterFunc func(ctx context.Context, departureCountryID string, candidates []models.Option) ([]models.Option, error)

func (f RouteFilterFunc) Filter(ctx context.Context, departureCountryID string, candidates []models.Option) ([]models.Option, error) {
	return f(ctx, departureCountryID, candidates)
}
