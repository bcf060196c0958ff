package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/andrebq/toolshelf/auth"
	"github.com/andrebq/toolshelf/internal/cmdflags"
	"github.com/andrebq/toolshelf/internal/config"
	"github.com/andrebq/toolshelf/internal/logutil"
	"github.com/andrebq/toolshelf/shelf"
)

func Cmd(cfg *config.Config) *cli.Command {
	var store *shelf.Shelf
	return &cli.Command{
		Name:  "users",
		Usage: "Manage accounts directly on the database",
		Before: func(ctx *cli.Context) error {
			var err error
			store, err = shelf.Open(ctx.Context, cfg.DB.Path)
			return err
		},
		After: func(ctx *cli.Context) error {
			if store == nil {
				return nil
			}
			return store.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(&store, cfg),
			adminCmd(&store),
		},
	}
}

func registerCmd(store **shelf.Shelf, cfg *config.Config) *cli.Command {
	var username string
	var admin bool
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new account (password is prompted, or read from stdin when it is not a terminal)",
		Flags: []cli.Flag{
			cmdflags.Username(&username),
			&cli.BoolFlag{
				Name:        "admin",
				Usage:       "Grant admin privileges to the new account",
				Destination: &admin,
			},
		},
		Action: func(ctx *cli.Context) error {
			passwd, err := readPassword(os.Stdin, ctx.App.ErrWriter)
			if err != nil {
				return err
			}
			defer passwd.Zero()
			_, err = register(ctx.Context, *store, cfg.Auth.Workers, username, passwd, admin)
			return err
		},
	}
}

// register creates the account through the Authenticator, so the same
// validation rules of the website apply here.
func register(ctx context.Context, store *shelf.Shelf, workers int, username string, passwd auth.PlainText, admin bool) (auth.Account, error) {
	sessions, err := auth.NewMemSessions(auth.DefaultSessionTTL, 0)
	if err != nil {
		return auth.Account{}, err
	}
	defer sessions.Close()
	authn := auth.NewAuthenticator(store, sessions, auth.NewHasher(workers))
	acc, sid, err := authn.Register(ctx, username, passwd)
	if err != nil {
		return auth.Account{}, err
	}
	if err := authn.Logout(ctx, sid); err != nil {
		return auth.Account{}, err
	}
	if admin {
		if err := store.SetAdmin(ctx, acc.Username, true); err != nil {
			return auth.Account{}, err
		}
		acc.IsAdmin = true
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("username", acc.Username).Int64("id", acc.ID).Bool("admin", admin).Msg("Account registered")
	return acc, nil
}

func adminCmd(store **shelf.Shelf) *cli.Command {
	var username string
	var revoke bool
	return &cli.Command{
		Name:  "admin",
		Usage: "Grant (or with --revoke, remove) admin privileges of an account",
		Flags: []cli.Flag{
			cmdflags.Username(&username),
			&cli.BoolFlag{
				Name:        "revoke",
				Usage:       "Remove the privileges instead of granting them",
				Destination: &revoke,
			},
		},
		Action: func(ctx *cli.Context) error {
			return setAdmin(ctx.Context, *store, username, !revoke)
		},
	}
}

func setAdmin(ctx context.Context, store *shelf.Shelf, username string, admin bool) error {
	if err := store.SetAdmin(ctx, username, admin); err != nil {
		return err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("username", username).Bool("admin", admin).Msg("Account updated")
	return nil
}

func readPassword(in *os.File, prompt io.Writer) (auth.PlainText, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		passwd, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, fmt.Errorf("unable to read password, cause %w", err)
		}
		return auth.PlainText(passwd), nil
	}
	return readPasswordLine(in)
}

func readPasswordLine(in io.Reader) (auth.PlainText, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("missing password from stdin")
	}
	passwd := strings.TrimSpace(sc.Text())
	if len(passwd) == 0 {
		return nil, errors.New("missing password from stdin")
	}
	return auth.PlainText(passwd), nil
}
