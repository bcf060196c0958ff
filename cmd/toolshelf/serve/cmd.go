package serve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/andrebq/toolshelf/auth"
	authapi "github.com/andrebq/toolshelf/auth/api"
	"github.com/andrebq/toolshelf/internal/cmdflags"
	"github.com/andrebq/toolshelf/internal/config"
	"github.com/andrebq/toolshelf/internal/favicon"
	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/logutil"
	"github.com/andrebq/toolshelf/shelf"
	"github.com/andrebq/toolshelf/site"
)

func Cmd(cfg *config.Config) *cli.Command {
	var bind, backend, upstream string
	var insecureCookie bool
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the toolshelf website and API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind for incoming requests (overrides http.bind)",
				Destination: &bind,
			},
			&cli.StringFlag{
				Name:        "session-backend",
				Usage:       "Where sessions are kept, memory or redis (overrides session.backend)",
				Destination: &backend,
			},
			&cli.StringFlag{
				Name:        "ui-upstream",
				Usage:       "Server that renders pages for every non API route (overrides ui.upstream)",
				Destination: &upstream,
			},
			&cli.BoolFlag{
				Name:        "insecure-cookie",
				Usage:       "Send the session cookie without the Secure flag, only for local development",
				Destination: &insecureCookie,
			},
		},
		Action: func(ctx *cli.Context) error {
			cmdflags.Override(ctx, "bind", &cfg.HTTP.Bind, bind)
			cmdflags.Override(ctx, "session-backend", &cfg.Session.Backend, backend)
			cmdflags.Override(ctx, "ui-upstream", &cfg.UI.Upstream, upstream)
			cmdflags.Override(ctx, "insecure-cookie", &cfg.Session.InsecureCookie, insecureCookie)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(ctx.Context, *cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := logutil.GetOrDefault(ctx)
	var ui *url.URL
	if cfg.UI.Upstream != "" {
		var err error
		ui, err = url.Parse(cfg.UI.Upstream)
		if err != nil {
			return fmt.Errorf("unable to parse ui upstream %v, cause %w", cfg.UI.Upstream, err)
		}
	}

	store, err := shelf.Open(ctx, cfg.DB.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	if cfg.Session.InsecureCookie {
		log.Warn().Msg("Session cookies will be sent over plain HTTP")
	}
	realm := authapi.NewRealm(auth.NewAuthenticator(store, sessions, auth.NewHasher(cfg.Auth.Workers)),
		cfg.Session.TTL, cfg.Session.InsecureCookie)
	icons := &favicon.Fetcher{
		Client:       http.DefaultClient,
		ServiceBase:  cfg.Favicon.Google,
		Timeout:      cfg.Favicon.Timeout,
		ProbeTimeout: cfg.Favicon.Probe,
	}
	handler := site.Handler(site.Options{
		Realm:   realm,
		Catalog: store,
		Icons:   icons,
		Health:  store,
		UI:      ui,
	})
	log.Info().Str("db", cfg.DB.Path).Str("sessions", cfg.Session.Backend).Msg("Toolshelf ready")
	return httpserver.Serve(ctx, cfg.HTTP.Bind, handler)
}

func openSessions(ctx context.Context, cfg config.Config) (auth.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("unable to reach redis at %v, cause %w", cfg.Redis.Addr, err)
		}
		return auth.NewRedisSessions(client, cfg.Redis.Prefix, cfg.Session.TTL), func() { client.Close() }, nil
	default:
		sessions, err := auth.NewMemSessions(cfg.Session.TTL, 0)
		if err != nil {
			return nil, nil, err
		}
		sweepCtx, stop := context.WithCancel(ctx)
		if cfg.Session.Sweep > 0 {
			go sweep(sweepCtx, sessions, cfg.Session.Sweep)
		}
		return sessions, func() {
			stop()
			sessions.Close()
		}, nil
	}
}

func sweep(ctx context.Context, sessions *auth.MemSessions, every time.Duration) {
	log := logutil.GetOrDefault(ctx)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			removed, err := sessions.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Unable to sweep expired sessions")
				continue
			}
			log.Debug().Int("removed", removed).Int("active", sessions.Len()).Msg("Expired sessions swept")
		}
	}
}
