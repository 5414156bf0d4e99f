// Package store persists players and the operator singleton.
package store

import (
	"context"
	"errors"

	"lotto/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store defines the persistence interface for the lottery economy.
type Store interface {
	// Player operations
	FindPlayerByName(ctx context.Context, name string) (models.Player, error)
	GetPlayer(ctx context.Context, id int64) (models.Player, error)
	CreatePlayer(ctx context.Context, p models.Player) error
	SavePlayer(ctx context.Context, p models.Player) error
	ListPlayers(ctx context.Context) ([]models.Player, error)

	// Operator operations
	GetOperator(ctx context.Context) (models.Operator, error)
	SaveOperator(ctx context.Context, op models.Operator) error
}
