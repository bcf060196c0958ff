package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/shelf"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireShelf opens an empty shelf on a temporary directory, the returned
// func closes it and removes the directory.
func AcquireShelf(ctx context.Context, t TestLog) (*shelf.Shelf, func()) {
	dir, err := os.MkdirTemp("", "toolshelf-tests")
	if err != nil {
		t.Fatal(err)
	}
	s, err := shelf.Open(ctx, filepath.Join(dir, "shelf.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return s, func() {
		err := s.Close()
		if err != nil {
			t.Log("unable to close shelf", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireSeededShelf is like AcquireShelf but loads SmallCatalog first.
func AcquireSeededShelf(ctx context.Context, t TestLog) (*shelf.Shelf, func()) {
	s, cleanup := AcquireShelf(ctx, t)
	if _, err := s.Seed(ctx, SmallCatalog()); err != nil {
		cleanup()
		t.Fatal(err)
	}
	return s, cleanup
}

// SmallCatalog has two categories: "design" (ids start at 1) with two
// tools and "development" with three.
func SmallCatalog() catalog.Seed {
	return catalog.Seed{
		Categories: []catalog.SeedCategory{
			{
				NewCategory: catalog.NewCategory{Name: "Design", Description: "Tools for visual work", Slug: "design", IconName: "brush", Color: "primary"},
				Tools: []catalog.SeedTool{
					{Name: "Figma", Description: "Collaborative interface design", URL: "https://figma.com", IconName: "layout", Popular: true},
					{Name: "Coolors", Description: "Color palette generator", URL: "https://coolors.co", IconName: "droplet", IsNew: true},
				},
			},
			{
				NewCategory: catalog.NewCategory{Name: "Development", Description: "Tools for writing software", Slug: "development", IconName: "code", Color: "green"},
				Tools: []catalog.SeedTool{
					{Name: "Regex101", Description: "Build and test regular expressions", URL: "https://regex101.com", IconName: "code", Popular: true},
					{Name: "JSON Formatter", Description: "Format and validate JSON documents", URL: "https://jsonformatter.org", IconName: "braces"},
					{Name: "Can I Use", Description: "Browser support tables for web features", URL: "https://caniuse.com", Popular: true, IsNew: true},
				},
			},
		},
	}
}
