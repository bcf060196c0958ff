package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func ConfigFile(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to a yaml file with the server settings",
		EnvVars:     []string{"TOOLSHELF_CONFIG"},
		Destination: out,
		Value:       *out,
	}
}

func DBPath(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"database"},
		Usage:       "Path to the sqlite database, created when missing (overrides db.path)",
		Destination: out,
		Value:       *out,
	}
}

func Username(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "username",
		Aliases:     []string{"u", "user"},
		Usage:       "Name of the account",
		Destination: out,
		Required:    true,
	}
}

// Override copies value into dst when the flag name was given in the
// command line, otherwise dst keeps what the config layers decided.
func Override[T any](ctx *cli.Context, name string, dst *T, value T) {
	if ctx.IsSet(name) {
		*dst = value
	}
}
