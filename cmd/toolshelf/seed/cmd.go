package seed

import (
	"github.com/urfave/cli/v2"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/config"
	"github.com/andrebq/toolshelf/internal/logutil"
	"github.com/andrebq/toolshelf/internal/lua/catalogseed"
	"github.com/andrebq/toolshelf/shelf"
)

func Cmd(cfg *config.Config) *cli.Command {
	var catalogFile string
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a catalog of categories and tools into an empty shelf",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "catalog",
				Usage:       "Lua file that returns the catalog, the built-in catalog is used when empty",
				Destination: &catalogFile,
			},
		},
		Action: func(ctx *cli.Context) error {
			log := logutil.GetOrDefault(ctx.Context)
			var seed catalog.Seed
			var err error
			if catalogFile == "" {
				seed, err = catalogseed.Default(ctx.Context)
			} else {
				seed, err = catalogseed.LoadFile(ctx.Context, catalogFile)
			}
			if err != nil {
				return err
			}
			store, err := shelf.Open(ctx.Context, cfg.DB.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			loaded, err := store.Seed(ctx.Context, seed)
			if err != nil {
				return err
			}
			if !loaded {
				log.Info().Str("db", cfg.DB.Path).Msg("Shelf already has categories, nothing to seed")
				return nil
			}
			log.Info().Str("db", cfg.DB.Path).Int("categories", len(seed.Categories)).Msg("Catalog loaded")
			return nil
		},
	}
}
