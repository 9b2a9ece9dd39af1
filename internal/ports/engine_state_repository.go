package ports

import (
	"context"

	"academictoken/internal/domain/engine"
)

type EngineStateRepository interface {
	CreateState(ctx context.Context, state engine.State) error
	GetState(ctx context.Context) (engine.State, error)
	SaveState(ctx context.Context, state engine.State) error
}
