package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/middleware"
	"github.com/kubagp1/school-clock/internal/redis"
)

func main() {
	// .env is a development convenience; production sets real env vars
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	env := LoadEnvironment()
	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	if env.MQTTBrokerURL != "" {
		if err := middleware.InitMQTT(env.MQTTBrokerURL); err != nil {
			log.Error().Err(err).Msg("mqtt unavailable, displays will rely on polling")
		}
	}

	store := db.NewStore(nil)

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, env, store)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
