package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env                  string        `yaml:"env" env:"ENV" env-default:"local"`
	Secret               string        `yaml:"secret" env:"SECRET_KEY" env-default:"top-secret!"`
	AccessTokenTTL       time.Duration `yaml:"access_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL      time.Duration `yaml:"refresh_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	ResetTokenTTL        time.Duration `yaml:"reset_ttl" env:"RESET_TOKEN_TTL" env-default:"15m"`
	RefreshTokenInCookie bool          `yaml:"refresh_token_in_cookie" env:"REFRESH_TOKEN_IN_COOKIE" env-default:"true"`
	RefreshTokenInBody   bool          `yaml:"refresh_token_in_body" env:"REFRESH_TOKEN_IN_BODY" env-default:"false"`
	UseCORS              bool          `yaml:"use_cors" env:"USE_CORS" env-default:"true"`
	PasswordResetURL     string        `yaml:"password_reset_url" env:"PASSWORD_RESET_URL" env-default:"http://localhost:3000/reset"`
	HTTP                 HTTPConfig    `yaml:"http"`
	DB                   DBConfig      `yaml:"postgres"`
	SMTP                 SMTPConfig    `yaml:"smtp"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
}

type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Dbname   string `yaml:"dbname" env:"DB_NAME" env-default:"formaplus"`
	Sslmode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"MAIL_SERVER" env-default:"localhost"`
	Port     int    `yaml:"port" env:"MAIL_PORT" env-default:"25"`
	User     string `yaml:"user" env:"MAIL_USERNAME"`
	Password string `yaml:"password" env:"MAIL_PASSWORD"`
	From     string `yaml:"from" env:"MAIL_DEFAULT_SENDER" env-default:"no-reply@formaplus.com.br"`
}

func Load(path string) *Config {
	var config Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &config)
	} else {
		err = cleanenv.ReadEnv(&config)
	}
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &config
}

// Debug reports whether the service runs in a local environment. Cookie
// security attributes are relaxed in debug.
func (c *Config) Debug() bool {
	return c.Env == "local"
}
