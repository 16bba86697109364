package catalog

import (
	"context"

	"github.com/shralptide/tidestations/internal/models"
)

// Source produces raw station tuples from some upstream data set.
type Source interface {
	Fetch(ctx context.Context) ([]models.StationTuple, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]models.StationTuple, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]models.StationTuple, error) {
	return f(ctx)
}
