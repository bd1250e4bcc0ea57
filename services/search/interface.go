package search

import (
	"context"

	"foodbot/models"
)

// Searcher finds local businesses for a free-text category and location.
type Searcher interface {
	Search(ctx context.Context, category, location string) ([]models.Business, error)
}
