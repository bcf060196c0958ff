package shelf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mattn/go-sqlite3"

	"github.com/andrebq/toolshelf/catalog"
)

type (
	rowScanner interface {
		Scan(...interface{}) error
	}
)

var _ catalog.Store = (*Shelf)(nil)

const toolColumns = `t.tool_id, t.name, t.description, t.url, t.icon_name, t.icon_url, t.category_id, t.popular, t.is_new, t.created_at,
	c.category_id, c.name, c.description, c.slug, c.icon_name, c.color, c.created_at`

const toolFrom = ` from tools t inner join categories c on c.category_id = t.category_id `

func slugHash(slug string) int64 {
	return int64(xxhash.Sum64String(slug))
}

func (s *Shelf) CreateCategory(ctx context.Context, n catalog.NewCategory) (catalog.Category, error) {
	c := catalog.Category{
		Name:        n.Name,
		Description: n.Description,
		Slug:        n.Slug,
		IconName:    n.IconName,
		Color:       n.Color,
		CreatedAt:   fromUnix(toUnix(s.now())),
	}
	err := s.db.QueryRowContext(ctx, `insert into categories(name, description, slug, slug_hash64, icon_name, color, created_at)
	values (?, ?, ?, ?, ?, ?, ?) returning category_id`,
		c.Name, c.Description, c.Slug, slugHash(c.Slug), c.IconName, c.Color, toUnix(c.CreatedAt)).Scan(&c.ID)
	if err != nil {
		return catalog.Category{}, fmt.Errorf("unable to create category %v, cause %w", n.Slug, err)
	}
	return c, nil
}

func (s *Shelf) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `select count(*) from categories`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("unable to count categories, cause %w", err)
	}
	return n, nil
}

func (s *Shelf) CategorySummaries(ctx context.Context) ([]catalog.CategorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `select c.category_id, c.name, c.description, c.slug, c.icon_name, c.color, c.created_at,
		(select count(*) from tools t where t.category_id = c.category_id)
	from categories c order by c.name asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list categories, cause %w", err)
	}
	defer rows.Close()
	out := []catalog.CategorySummary{}
	for rows.Next() {
		var cs catalog.CategorySummary
		var created int64
		err = rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Slug, &cs.IconName, &cs.Color, &created, &cs.ToolCount)
		if err != nil {
			return nil, fmt.Errorf("unable to scan category, cause %w", err)
		}
		cs.CreatedAt = fromUnix(created)
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *Shelf) CategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	var c catalog.Category
	var created int64
	err := s.db.QueryRowContext(ctx, `select category_id, name, description, slug, icon_name, color, created_at
	from categories where slug_hash64 = ? and slug = ?`, slugHash(slug), slug).
		Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.IconName, &c.Color, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	} else if err != nil {
		return catalog.Category{}, fmt.Errorf("unable to load category %v, cause %w", slug, err)
	}
	c.CreatedAt = fromUnix(created)
	return c, nil
}

func (s *Shelf) ToolsByCategory(ctx context.Context, categoryID int64) ([]catalog.Tool, error) {
	return s.queryTools(ctx, `where t.category_id = ? order by t.name asc`, categoryID)
}

func (s *Shelf) Tools(ctx context.Context) ([]catalog.Tool, error) {
	return s.queryTools(ctx, `order by t.name asc`)
}

func (s *Shelf) PopularTools(ctx context.Context, limit int) ([]catalog.Tool, error) {
	if limit <= 0 {
		limit = catalog.DefaultPopularLimit
	}
	return s.queryTools(ctx, `where t.popular = 1 order by t.tool_id asc limit ?`, limit)
}

func (s *Shelf) NewTools(ctx context.Context, limit int) ([]catalog.Tool, error) {
	if limit <= 0 {
		limit = catalog.DefaultNewLimit
	}
	return s.queryTools(ctx, `where t.is_new = 1 order by t.tool_id asc limit ?`, limit)
}

// SearchTools matches term against name and description ignoring case.
func (s *Shelf) SearchTools(ctx context.Context, term string) ([]catalog.Tool, error) {
	pattern := "%" + escapeLike(fold(term)) + "%"
	return s.queryTools(ctx, `where fold(t.name) like ? escape '\' or fold(t.description) like ? escape '\'
	order by t.name asc`, pattern, pattern)
}

func (s *Shelf) ToolByID(ctx context.Context, id int64) (catalog.Tool, error) {
	tools, err := s.queryTools(ctx, `where t.tool_id = ?`, id)
	if err != nil {
		return catalog.Tool{}, err
	} else if len(tools) == 0 {
		return catalog.Tool{}, fmt.Errorf("tool %v not found", id)
	}
	return tools[0], nil
}

func (s *Shelf) CreateTool(ctx context.Context, n catalog.NewTool) (catalog.Tool, error) {
	// plain Exec keeps the extended constraint code, returning clauses lose it
	res, err := s.db.ExecContext(ctx, `insert into tools(name, description, url, icon_name, icon_url, category_id, popular, is_new, created_at)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Name, n.Description, n.URL, nullable(n.IconName), nullable(n.IconURL), n.CategoryID, n.Popular, n.IsNew, toUnix(s.now()))
	if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
		return catalog.Tool{}, catalog.UnknownCategory("Invalid tool data")
	} else if err != nil {
		return catalog.Tool{}, fmt.Errorf("unable to create tool %v, cause %w", n.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Tool{}, fmt.Errorf("unable to create tool %v, cause %w", n.Name, err)
	}
	return s.ToolByID(ctx, id)
}

func (s *Shelf) CreateSuggestion(ctx context.Context, n catalog.NewSuggestion) (catalog.Suggestion, error) {
	sg := catalog.Suggestion{
		Name:        n.Name,
		Description: n.Description,
		URL:         n.URL,
		CategoryID:  n.CategoryID,
		Status:      catalog.StatusPending,
		CreatedAt:   fromUnix(toUnix(s.now())),
	}
	if n.SubmitterEmail != "" {
		email := n.SubmitterEmail
		sg.SubmitterEmail = &email
	}
	res, err := s.db.ExecContext(ctx, `insert into tool_suggestions(name, description, url, category_id, submitter_email, status, created_at)
	values (?, ?, ?, ?, ?, ?, ?)`,
		sg.Name, sg.Description, sg.URL, sg.CategoryID, nullable(n.SubmitterEmail), sg.Status, toUnix(sg.CreatedAt))
	if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
		return catalog.Suggestion{}, catalog.UnknownCategory("Invalid tool suggestion data")
	} else if err != nil {
		return catalog.Suggestion{}, fmt.Errorf("unable to store suggestion %v, cause %w", n.Name, err)
	}
	sg.ID, err = res.LastInsertId()
	if err != nil {
		return catalog.Suggestion{}, fmt.Errorf("unable to store suggestion %v, cause %w", n.Name, err)
	}
	return sg, nil
}

func (s *Shelf) queryTools(ctx context.Context, clause string, args ...interface{}) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `select `+toolColumns+toolFrom+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to list tools, cause %w", err)
	}
	defer rows.Close()
	out := []catalog.Tool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTool(row rowScanner) (catalog.Tool, error) {
	var t catalog.Tool
	var c catalog.Category
	var iconName, iconURL sql.NullString
	var toolCreated, catCreated int64
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.URL, &iconName, &iconURL, &t.CategoryID, &t.Popular, &t.IsNew, &toolCreated,
		&c.ID, &c.Name, &c.Description, &c.Slug, &c.IconName, &c.Color, &catCreated)
	if err != nil {
		return catalog.Tool{}, fmt.Errorf("unable to scan tool, cause %w", err)
	}
	if iconName.Valid {
		t.IconName = &iconName.String
	}
	if iconURL.Valid {
		t.IconURL = &iconURL.String
	}
	t.CreatedAt = fromUnix(toolCreated)
	c.CreatedAt = fromUnix(catCreated)
	t.Category = &c
	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
