// Package config loads the settings of the toolshelf server.
//
// Values come from the defaults, then an optional yaml file, then
// TOOLSHELF_ prefixed environment variables (TOOLSHELF_HTTP_BIND sets
// http.bind). Command line flags are applied by the caller on top.
package config

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type (
	Config struct {
		HTTP struct {
			Bind string `koanf:"bind"`
		} `koanf:"http"`

		DB struct {
			Path string `koanf:"path"`
		} `koanf:"db"`

		Session struct {
			Backend        string        `koanf:"backend"`
			TTL            time.Duration `koanf:"ttl"`
			Sweep          time.Duration `koanf:"sweep"`
			InsecureCookie bool          `koanf:"insecureCookie"`
		} `koanf:"session"`

		Redis struct {
			Addr     string `koanf:"addr"`
			Password string `koanf:"password"`
			DB       int    `koanf:"db"`
			Prefix   string `koanf:"prefix"`
		} `koanf:"redis"`

		Auth struct {
			Workers int `koanf:"workers"`
		} `koanf:"auth"`

		Favicon struct {
			Timeout time.Duration `koanf:"timeout"`
			Probe   time.Duration `koanf:"probe"`
			Google  string        `koanf:"google"`
		} `koanf:"favicon"`

		UI struct {
			Upstream string `koanf:"upstream"`
		} `koanf:"ui"`

		Log struct {
			Level  string `koanf:"level"`
			Pretty bool   `koanf:"pretty"`
		} `koanf:"log"`
	}

	InvalidValue struct {
		Key    string
		Reason string
	}
)

const (
	EnvPrefix = "TOOLSHELF_"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func (i InvalidValue) Error() string {
	return "config: " + i.Key + " " + i.Reason
}

func Default() Config {
	var c Config
	c.HTTP.Bind = "127.0.0.1:8080"
	c.DB.Path = "toolshelf.db"
	c.Session.Backend = BackendMemory
	c.Session.TTL = 7 * 24 * time.Hour
	c.Session.Sweep = 24 * time.Hour
	c.Redis.Addr = "127.0.0.1:6379"
	c.Redis.Prefix = "toolshelf:session"
	c.Favicon.Timeout = 5 * time.Second
	c.Favicon.Probe = 3 * time.Second
	c.Favicon.Google = "https://www.google.com"
	c.Log.Level = "info"
	return c
}

// Load reads the configuration, configFile may be empty.
func Load(configFile string) (Config, error) {
	k := koanf.New(".")
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %v", configFile)
		}
	}
	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.TrimPrefix(k, EnvPrefix)
			if key == "" {
				return "", nil
			}
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), v
		},
	}), nil)
	if err != nil {
		return Config{}, errors.Wrap(err, "load env variables")
	}

	cfg := Default()
	err = k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		return InvalidValue{Key: "session.backend", Reason: "must be memory or redis"}
	}
	for key, d := range map[string]time.Duration{
		"session.ttl":     c.Session.TTL,
		"favicon.timeout": c.Favicon.Timeout,
		"favicon.probe":   c.Favicon.Probe,
	} {
		if d <= 0 {
			return InvalidValue{Key: key, Reason: "must be positive"}
		}
	}
	if c.Session.Sweep < 0 {
		return InvalidValue{Key: "session.sweep", Reason: "must not be negative"}
	}
	if c.DB.Path == "" {
		return InvalidValue{Key: "db.path", Reason: "is required"}
	}
	if c.Session.Backend == BackendRedis && c.Redis.Addr == "" {
		return InvalidValue{Key: "redis.addr", Reason: "is required by the redis session backend"}
	}
	return nil
}
