package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server  Server  `yaml:"server"`
	DocType DocType `yaml:"doctype"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// DocType configures the filename classification collaborator.
type DocType struct {
	CacheTTLSeconds int           `yaml:"cacheTTLSeconds"`
	Rules           []DocTypeRule `yaml:"rules"`
}

// DocTypeRule maps a filename pattern to a document type name. Rules
// from config are appended after the ones loaded from the rule table.
type DocTypeRule struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	return config, nil
}
