package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/internal/config"
	"github.com/faena-transit/rosterizer/pkg/store"
)

// AppContext holds the application dependencies shared across all commands.
// Store is nil when the run configuration carries no database URL; commands
// that need persistence must check.
type AppContext struct {
	Cfg    *config.Config
	Store  *store.Store
	Logger *zap.Logger
	Ctx    context.Context
}
