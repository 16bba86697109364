package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/models"
)

// FileSource reads a JSON array of station tuples from disk, one element at
// a time so large lists are never held twice in memory.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(ctx context.Context) ([]models.StationTuple, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewSourceError("file", fmt.Errorf("opening %s: %w", s.path, err))
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Str("path", s.path).Msg("Error closing station file")
		}
	}()

	tuples, err := DecodeTuples(ctx, f)
	if err != nil {
		return nil, NewSourceError("file", fmt.Errorf("reading %s: %w", s.path, err))
	}
	return tuples, nil
}

// DecodeTuples streams a JSON array of tuples from r, checking ctx between
// elements.
func DecodeTuples(ctx context.Context, r io.Reader) ([]models.StationTuple, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("reading initial token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected a JSON array of stations")
	}

	var tuples []models.StationTuple
	for decoder.More() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var t models.StationTuple
		if err := decoder.Decode(&t); err != nil {
			return nil, fmt.Errorf("decoding station %d: %w", len(tuples), err)
		}
		tuples = append(tuples, t)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("reading closing token: %w", err)
	}
	return tuples, nil
}
