package shelf_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/testutil"
)

func names(tools []catalog.Tool) []string {
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Name)
	}
	return out
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()

	list, err := s.CategorySummaries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Design", list[0].Name)
	require.Equal(t, int64(2), list[0].ToolCount)
	require.Equal(t, "Development", list[1].Name)
	require.Equal(t, int64(3), list[1].ToolCount)

	c, err := s.CategoryBySlug(ctx, "development")
	require.NoError(t, err)
	require.Equal(t, "code", c.IconName)

	_, err = s.CategoryBySlug(ctx, "cooking")
	require.ErrorIs(t, err, catalog.ErrCategoryNotFound)

	tools, err := s.ToolsByCategory(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Can I Use", "JSON Formatter", "Regex101"}, names(tools))
	require.Equal(t, "development", tools[0].Category.Slug)
}

func TestToolListings(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()

	all, err := s.Tools(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Can I Use", "Coolors", "Figma", "JSON Formatter", "Regex101"}, names(all))

	popular, err := s.PopularTools(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"Figma", "Regex101", "Can I Use"}, names(popular))

	popular, err = s.PopularTools(ctx, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)

	fresh, err := s.NewTools(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"Coolors", "Can I Use"}, names(fresh))

	// tools without an icon get the fallback icon when seeded
	for _, tl := range all {
		if tl.Name == "Can I Use" {
			require.Equal(t, catalog.FallbackIcon, *tl.IconName)
			require.Nil(t, tl.IconURL)
		}
	}
}

func TestSearchTools(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()

	found, err := s.SearchTools(ctx, "REGULAR")
	require.NoError(t, err)
	require.Equal(t, []string{"Regex101"}, names(found))

	found, err = s.SearchTools(ctx, "co")
	require.NoError(t, err)
	require.Equal(t, []string{"Coolors", "Figma"}, names(found))

	found, err = s.SearchTools(ctx, "100%")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestSearchToolsFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()

	design, err := s.CategoryBySlug(ctx, "design")
	require.NoError(t, err)
	_, err = s.CreateTool(ctx, catalog.NewTool{
		Name: "Éditeur Vectoriel", Description: "Dessin ÀLA main", URL: "https://editeur.example",
		IconName: "pen", CategoryID: design.ID,
	})
	require.NoError(t, err)

	for _, term := range []string{"édit", "ÉDIT", "àla"} {
		found, err := s.SearchTools(ctx, term)
		require.NoError(t, err)
		require.Equal(t, []string{"Éditeur Vectoriel"}, names(found), "term %q", term)
	}
}

func TestCreateTool(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()
	design, err := s.CategoryBySlug(ctx, "design")
	require.NoError(t, err)

	tl, err := s.CreateTool(ctx, catalog.NewTool{
		Name: "Excalidraw", Description: "Hand drawn diagrams", URL: "https://excalidraw.com",
		IconURL: "data:image/png;base64,AAAA", CategoryID: design.ID, IsNew: true,
	})
	require.NoError(t, err)
	require.NotZero(t, tl.ID)
	require.Nil(t, tl.IconName)
	require.Equal(t, "data:image/png;base64,AAAA", *tl.IconURL)
	require.Equal(t, "design", tl.Category.Slug)
	require.True(t, tl.IsNew)

	_, err = s.CreateTool(ctx, catalog.NewTool{Name: "Ghost", Description: "Points nowhere", URL: "https://ghost.example", IconName: "x", CategoryID: 999})
	var verr catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "categoryId", verr.Fields[0].Field)
}

func TestCreateSuggestion(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()

	sg, err := s.CreateSuggestion(ctx, catalog.NewSuggestion{Name: "Squoosh", Description: "Image compression", URL: "https://squoosh.app", CategoryID: 1, SubmitterEmail: "ana@example.com"})
	require.NoError(t, err)
	require.NotZero(t, sg.ID)
	require.Equal(t, catalog.StatusPending, sg.Status)
	require.Equal(t, "ana@example.com", *sg.SubmitterEmail)

	sg, err = s.CreateSuggestion(ctx, catalog.NewSuggestion{Name: "Squoosh", Description: "Image compression", URL: "https://squoosh.app", CategoryID: 1})
	require.NoError(t, err)
	require.Nil(t, sg.SubmitterEmail)

	_, err = s.CreateSuggestion(ctx, catalog.NewSuggestion{Name: "Squoosh", Description: "Image compression", URL: "https://squoosh.app", CategoryID: 42})
	var verr catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Invalid tool suggestion data", verr.Message)
	require.Equal(t, "categoryId", verr.Fields[0].Field)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := testutil.AcquireSeededShelf(ctx, t)
	defer cleanup()
	done, err := s.Seed(ctx, testutil.SmallCatalog())
	require.NoError(t, err)
	require.False(t, done)
	n, err := s.CountCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}
