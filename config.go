package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port    string `yaml:"port"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Ledger struct {
		Database             string `yaml:"database"`
		PurgeIntervalMinutes int    `yaml:"purge_interval_minutes"`
	} `yaml:"ledger"`
	Tokens struct {
		MaxTTLMinutes int `yaml:"max_ttl_minutes"`
	} `yaml:"tokens"`
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		S3      struct {
			Endpoint  string `yaml:"endpoint"`
			Region    string `yaml:"region"`
			Bucket    string `yaml:"bucket"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"s3"`
	} `yaml:"storage"`
}

func LoadConfig() *Config {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	config := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Failed to read config file, using defaults: %v", err)
	} else if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse config file, using defaults: %v", err)
		config = defaultConfig()
	}

	// S3 credentials may come from the environment instead of the file
	if key := os.Getenv("UPLINK_S3_ACCESS_KEY"); key != "" {
		config.Storage.S3.AccessKey = key
	}
	if key := os.Getenv("UPLINK_S3_SECRET_KEY"); key != "" {
		config.Storage.S3.SecretKey = key
	}
	if url := os.Getenv("UPLINK_BASE_URL"); url != "" {
		config.Server.BaseURL = url
	}

	return config
}

func defaultConfig() *Config {
	config := &Config{}
	config.Server.Port = "8080"
	config.Server.BaseURL = "http://localhost:8080"
	config.Ledger.Database = "./uplink.db"
	config.Ledger.PurgeIntervalMinutes = 5
	config.Tokens.MaxTTLMinutes = 24 * 60
	config.Storage.Backend = "local"
	config.Storage.Path = "./uploads"
	return config
}
