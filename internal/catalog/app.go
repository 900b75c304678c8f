package catalog

import (
	"context"
	"fmt"

	"github.com/fantabuilder/fantasta/internal/models"
)

// CatalogRepository defines what the catalog app layer needs from storage.
type CatalogRepository interface {
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListPlayersByRole(ctx context.Context, role models.Role) ([]models.Player, error)
	CreatePlayersBatch(ctx context.Context, players []models.Player) error
}

// App exposes read-only player lookups. The catalog is reference data;
// nothing in the auction flow ever mutates it.
type App struct {
	repo CatalogRepository
}

func NewApp(repo CatalogRepository) *App {
	return &App{repo: repo}
}

// PlayerByID looks up one player. Unknown IDs yield ErrPlayerNotFound.
func (a *App) PlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := a.repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

// AllPlayers returns the full catalog.
func (a *App) AllPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := a.repo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// PlayersByRole returns all players of one role.
func (a *App) PlayersByRole(ctx context.Context, role models.Role) ([]models.Player, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	players, err := a.repo.ListPlayersByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for role %s: %w", role, err)
	}
	return players, nil
}

// SeedPlayers bulk-loads the player list, upserting on ID. Used by the
// seed tool, not by the auction flow.
func (a *App) SeedPlayers(ctx context.Context, players []models.Player) error {
	for _, p := range players {
		if !p.Role.Valid() {
			return fmt.Errorf("player %d has unknown role %q", p.ID, p.Role)
		}
	}
	if err := a.repo.CreatePlayersBatch(ctx, players); err != nil {
		return fmt.Errorf("failed to seed players: %w", err)
	}
	return nil
}
