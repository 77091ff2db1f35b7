package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	JWT      JWT
	Storage  Storage
	Log      Log
	Seed     Seed
}

type Server struct {
	Port               string
	GinMode            string
	CORSAllowOrigins   []string
	LoginRatePerMinute int
}

type Database struct {
	Driver   string // postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file, ":memory:" allowed
}

type JWT struct {
	Secret    string
	ExpiresIn time.Duration
}

type Storage struct {
	Driver    string // fs | minio
	UploadDir string
	Minio     Minio
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type Log struct {
	Level  string
	Format string // console | json
	File   string
}

// Seed holds the staff accounts created by the seed-staff command.
type Seed struct {
	AdminEmail           string
	AdminUsername        string
	AdminPassword        string
	PsychologistEmail    string
	PsychologistUsername string
	PsychologistPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_NAME", "psytest")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_PATH", "psytest.db")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRES_IN", "24h")

	v.SetDefault("STORAGE_DRIVER", "fs")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MINIO_BUCKET", "psytest")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_REGION", "us-east-1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SEED_ADMIN_EMAIL", "admin@psytest.local")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_PSYCHOLOGIST_EMAIL", "psychologist@psytest.local")
	v.SetDefault("SEED_PSYCHOLOGIST_USERNAME", "psychologist")
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	cfg := fromViper(v)
	log.Info().Interface("config", cfg.Redacted()).Msg("Config loaded")
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.GinMode = v.GetString("GIN_MODE")
	config.Server.CORSAllowOrigins = splitList(v.GetString("CORS_ALLOW_ORIGINS"))
	config.Server.LoginRatePerMinute = v.GetInt("LOGIN_RATE_PER_MINUTE")

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	config.Database.Path = v.GetString("DATABASE_PATH")

	config.JWT.Secret = v.GetString("JWT_SECRET")
	config.JWT.ExpiresIn = v.GetDuration("JWT_EXPIRES_IN")

	config.Storage.Driver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	config.Storage.UploadDir = v.GetString("UPLOAD_DIR")
	config.Storage.Minio.Endpoint = v.GetString("MINIO_ENDPOINT")
	config.Storage.Minio.AccessKey = v.GetString("MINIO_ACCESS_KEY")
	config.Storage.Minio.SecretKey = v.GetString("MINIO_SECRET_KEY")
	config.Storage.Minio.Bucket = v.GetString("MINIO_BUCKET")
	config.Storage.Minio.UseSSL = v.GetBool("MINIO_USE_SSL")
	config.Storage.Minio.Region = v.GetString("MINIO_REGION")

	config.Log.Level = v.GetString("LOG_LEVEL")
	config.Log.Format = v.GetString("LOG_FORMAT")
	config.Log.File = v.GetString("LOG_FILE")

	config.Seed.AdminEmail = v.GetString("SEED_ADMIN_EMAIL")
	config.Seed.AdminUsername = v.GetString("SEED_ADMIN_USERNAME")
	config.Seed.AdminPassword = v.GetString("SEED_ADMIN_PASSWORD")
	config.Seed.PsychologistEmail = v.GetString("SEED_PSYCHOLOGIST_EMAIL")
	config.Seed.PsychologistUsername = v.GetString("SEED_PSYCHOLOGIST_USERNAME")
	config.Seed.PsychologistPassword = v.GetString("SEED_PSYCHOLOGIST_PASSWORD")

	return &config
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Database.Password = mask(c.Database.Password)
	c.JWT.Secret = mask(c.JWT.Secret)
	c.Storage.Minio.SecretKey = mask(c.Storage.Minio.SecretKey)
	c.Seed.AdminPassword = mask(c.Seed.AdminPassword)
	c.Seed.PsychologistPassword = mask(c.Seed.PsychologistPassword)
	return c
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
