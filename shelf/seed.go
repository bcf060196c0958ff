package shelf

import (
	"context"
	"fmt"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/logutil"
)

// Seed loads seed into the shelf, it does nothing when the shelf already
// has categories. The returned flag tells if anything was written.
func (s *Shelf) Seed(ctx context.Context, seed catalog.Seed) (bool, error) {
	log := logutil.GetOrDefault(ctx)
	if err := seed.Validate(); err != nil {
		return false, fmt.Errorf("unable to seed shelf, cause %w", err)
	}
	count, err := s.CountCategories(ctx)
	if err != nil {
		return false, err
	} else if count > 0 {
		log.Info().Int64("categories", count).Msg("Shelf already has data, skipping seed")
		return false, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("unable to start seed transaction, cause %w", err)
	}
	defer tx.Rollback()
	now := toUnix(s.now())
	tools := 0
	for _, c := range seed.Categories {
		var id int64
		err := tx.QueryRowContext(ctx, `insert into categories(name, description, slug, slug_hash64, icon_name, color, created_at)
		values (?, ?, ?, ?, ?, ?, ?) returning category_id`,
			c.Name, c.Description, c.Slug, slugHash(c.Slug), c.IconName, c.Color, now).Scan(&id)
		if err != nil {
			return false, fmt.Errorf("unable to seed category %v, cause %w", c.Slug, err)
		}
		for _, st := range c.Tools {
			t := st.NewTool(id)
			_, err := tx.ExecContext(ctx, `insert into tools(name, description, url, icon_name, icon_url, category_id, popular, is_new, created_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.Name, t.Description, t.URL, nullable(t.IconName), nullable(t.IconURL), id, t.Popular, t.IsNew, now)
			if err != nil {
				return false, fmt.Errorf("unable to seed tool %v, cause %w", t.Name, err)
			}
			tools++
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("unable to commit seed, cause %w", err)
	}
	log.Info().Int("categories", len(seed.Categories)).Int("tools", tools).Msg("Shelf seeded")
	return true, nil
}
