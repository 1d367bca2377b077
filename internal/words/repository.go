package words

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository defines the lookup used to filter out already-known words.
type Repository interface {
	FilterNew(ctx context.Context, extracted []string) ([]string, error)
}

// DBRepository implements Repository against the vocabulary database.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FilterNew returns the extracted words that are not yet present in the words
// table, compared case-insensitively against queried_word and preserving the
// input order. When the words table does not exist yet, or the lookup fails,
// filtering degrades to returning the input unchanged.
func (r *DBRepository) FilterNew(ctx context.Context, extracted []string) ([]string, error) {
	if len(extracted) == 0 {
		return nil, nil
	}

	var existing []string
	if err := r.db.SelectContext(ctx, &existing, "SELECT DISTINCT queried_word FROM words"); err != nil {
		// A fresh database has no words table. Treat every extracted word as new.
		slog.Default().Warn("Could not check existing words, proceeding without filtering",
			"error", err)
		return extracted, nil
	}

	known := make(map[string]struct{}, len(existing))
	for _, word := range existing {
		known[strings.ToLower(word)] = struct{}{}
	}

	var unseen []string
	for _, word := range extracted {
		if _, ok := known[strings.ToLower(word)]; !ok {
			unseen = append(unseen, word)
		}
	}
	return unseen, nil
}

var _ Repository = (*DBRepository)(nil)
