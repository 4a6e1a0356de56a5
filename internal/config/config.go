package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"shift-tracker/internal/schedule"
)

const defaultPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"memory"`
	DB         DB     `yaml:"db"`
	Redis      Redis  `yaml:"redis"`
	Auth       Auth   `yaml:"auth"`
	Board      Board  `yaml:"board"`

	// Roster replaces the built-in team layout when it lists any team.
	Roster schedule.Roster `yaml:"roster"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigins []string      `yaml:"cors_origins" env-default:"http://localhost:5173"`
	// FrontendDir holds the built board client; empty serves the API only.
	FrontendDir string        `yaml:"frontend_dir" env:"FRONTEND_DIR"`
}

type DB struct {
	User      string `yaml:"user" env:"DB_USER" env-default:"tracker"`
	Password  string `yaml:"password" env:"DB_PASSWORD"`
	Host      string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name      string `yaml:"name" env:"DB_NAME" env-default:"shift_tracker"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

type Redis struct {
	// Addr left empty keeps the change feed in-process.
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
	Channel  string `yaml:"channel" env-default:"shift-tracker:tickets"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"12h"`
}

type Board struct {
	LedgerExpiry    time.Duration `yaml:"ledger_expiry" env-default:"1s"`
	LedgerSweep     string        `yaml:"ledger_sweep" env-default:"@every 30s"`
	RetryAttempts   int           `yaml:"retry_attempts" env-default:"3"`
	RetryBackoff    time.Duration `yaml:"retry_backoff" env-default:"200ms"`
	ConsolidateCron string        `yaml:"consolidate_cron" env-default:"@every 5m"`
	OffDayMaxAge    time.Duration `yaml:"off_day_max_age" env-default:"5s"`
}

// RosterOrDefault is the configured roster, or the built-in one.
func (c *Config) RosterOrDefault() schedule.Roster {
	if c.Roster.Empty() {
		return schedule.DefaultRoster()
	}
	return c.Roster
}

// Load reads path. An empty path falls back to $CONFIG_PATH, then to
// config/local.yaml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultPath
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
