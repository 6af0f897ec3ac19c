package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-training/quaderno-connect/pkg/quaderno"
	"github.com/go-training/quaderno-connect/pkg/store"

	"github.com/caarlos0/env/v11"
)

// config is loaded from QUADERNO_* environment variables. Command-line flags
// registered on the root command override these values.
type config struct {
	BaseURI      string `env:"QUADERNO_BASE_URI" envDefault:"https://quadernoapp.com"`
	ClientID     string `env:"QUADERNO_CLIENT_ID"`
	ClientSecret string `env:"QUADERNO_CLIENT_SECRET"`
	RedirectURI  string `env:"QUADERNO_REDIRECT_URI" envDefault:"http://localhost:8095/callback"`

	Addr          string        `env:"QUADERNO_ADDR" envDefault:":8095"`
	LoginStateTTL time.Duration `env:"QUADERNO_LOGIN_STATE_TTL" envDefault:"10m"`

	Store         string `env:"QUADERNO_STORE" envDefault:"memory"`
	RedisAddr     string `env:"QUADERNO_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"QUADERNO_REDIS_PASSWORD"`
	RedisDB       int    `env:"QUADERNO_REDIS_DB" envDefault:"0"`

	LogLevel string `env:"QUADERNO_LOG_LEVEL"`
}

func loadConfig() (*config, error) {
	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// validateClient reports missing client credentials.
func (c *config) validateClient() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("client ID and client secret must be provided")
	}
	return nil
}

func (c *config) provider(httpClient *http.Client) *quaderno.Provider {
	return quaderno.New(quaderno.Options{
		BaseURI:      c.BaseURI,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		HTTPClient:   httpClient,
	})
}

func (c *config) storeConfig() (store.Config, error) {
	storeType, err := store.ParseStoreType(c.Store)
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Type: storeType,
		Redis: store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}, nil
}
