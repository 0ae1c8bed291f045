package main

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config comes from LIBRARY_* environment variables, with an optional
// .env file loaded first.
type Config struct {
	DataFile        string `envconfig:"DATA_FILE" default:"library.json"`
	DefaultTermDays int    `envconfig:"TERM_DAYS" default:"14"`
	Debug           bool   `envconfig:"DEBUG" default:"false"`
}

func NewConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("library", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return cfg, nil
}
