package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	MQTTBrokerURL  string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:   os.Getenv("APP_ENV"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SecretKey:     os.Getenv("JWT_SECRET"),
		ServerAddress: os.Getenv("SERVER_ADDRESS"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		// optional; instances fall back to plain polling without it
		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
	}

	if env.ServerAddress == "" {
		env.ServerAddress = ":8080"
	}
	if env.MigrationsPath == "" {
		env.MigrationsPath = "./migrations"
	}

	if env.DatabaseURL == "" || env.SecretKey == "" || env.RedisAddress == "" {
		log.Fatal().Msg("DATABASE_URL, JWT_SECRET and REDIS_ADDRESS are required")
	}

	return env
}
