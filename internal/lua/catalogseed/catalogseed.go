// Package catalogseed reads catalog files written in Lua.
//
// A catalog file is a Lua chunk returning a table with a list of
// categories, each one carrying its tools:
//
//	return {
//		categories = {
//			{ name = "Design", slug = "design", description = "...", icon_name = "brush", color = "primary",
//			  tools = { { name = "Figma", url = "https://figma.com", description = "...", popular = true } } },
//		},
//	}
package catalogseed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/lua/luadefaults"
)

type (
	file struct {
		Categories []category
	}

	category struct {
		Name        string
		Description string
		Slug        string
		IconName    string
		Color       string
		Tools       []tool
	}

	tool struct {
		Name        string
		Description string
		URL         string
		IconName    string
		IconURL     string
		Popular     bool
		IsNew       bool
	}
)

//go:embed default.lua
var defaultCatalog string

var (
	errNotATable = errors.New("catalog file must return a table")
	nonSlugRE    = regexp.MustCompile(`[^a-z0-9]+`)
)

const loadTimeout = 10 * time.Second

// Default returns the catalog bundled with the binary.
func Default(ctx context.Context) (catalog.Seed, error) {
	return Load(ctx, "default.lua", defaultCatalog)
}

func LoadFile(ctx context.Context, path string) (catalog.Seed, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return catalog.Seed{}, fmt.Errorf("unable to read catalog file %v, cause %w", path, err)
	}
	return Load(ctx, path, string(code))
}

// Load runs code and converts the table it returns into a catalog.Seed.
func Load(ctx context.Context, name, code string) (catalog.Seed, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := luadefaults.InjectCatalogLibs(L); err != nil {
		return catalog.Seed{}, fmt.Errorf("unable to prepare lua state, cause %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	L.SetContext(ctx)

	fn, err := L.LoadString(code)
	if err != nil {
		return catalog.Seed{}, fmt.Errorf("unable to parse catalog %v, cause %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return catalog.Seed{}, fmt.Errorf("unable to run catalog %v, cause %w", name, err)
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return catalog.Seed{}, fmt.Errorf("unable to load catalog %v, cause %w", name, errNotATable)
	}
	var f file
	if err := gluamapper.Map(tbl, &f); err != nil {
		return catalog.Seed{}, fmt.Errorf("unable to decode catalog %v, cause %w", name, err)
	}
	seed := f.seed()
	if err := seed.Validate(); err != nil {
		return catalog.Seed{}, fmt.Errorf("invalid catalog %v, cause %w", name, err)
	}
	return seed, nil
}

func (f file) seed() catalog.Seed {
	var s catalog.Seed
	for _, c := range f.Categories {
		slug := c.Slug
		if slug == "" {
			slug = slugify(c.Name)
		}
		sc := catalog.SeedCategory{
			NewCategory: catalog.NewCategory{
				Name:        c.Name,
				Description: c.Description,
				Slug:        slug,
				IconName:    c.IconName,
				Color:       c.Color,
			},
		}
		for _, t := range c.Tools {
			sc.Tools = append(sc.Tools, catalog.SeedTool(t))
		}
		s.Categories = append(s.Categories, sc)
	}
	return s
}

func slugify(name string) string {
	return strings.Trim(nonSlugRE.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
