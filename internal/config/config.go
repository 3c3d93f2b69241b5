package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Tournament TournamentConfig `yaml:"tournament"`
	Teams      TeamsConfig      `yaml:"teams"`
	Auction    AuctionConfig    `yaml:"auction"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Admin      AdminConfig      `yaml:"admin"`
}

// TournamentConfig holds presentation-level tournament settings.
type TournamentConfig struct {
	Name string `yaml:"name"`
	Logo string `yaml:"logo"`
}

// TeamsConfig holds the configured roster of teams and their budget rules.
type TeamsConfig struct {
	Names      []string `yaml:"names"`
	Budget     int64    `yaml:"budget"`
	MinPlayers int      `yaml:"min_players"`
	MaxPlayers int      `yaml:"max_players"`
}

// AuctionConfig holds the bidding rules.
type AuctionConfig struct {
	BasePrice  int64   `yaml:"base_price"`
	Currency   string  `yaml:"currency"`
	Increments []int64 `yaml:"increments"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds store settings. Driver selects the repository
// implementation: "csv" keeps the player pool in a local CSV file,
// "postgres" uses a Postgres database.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	CSVPath  string `yaml:"csv_path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// AdminConfig holds admin authentication settings.
type AdminConfig struct {
	Password   string        `yaml:"password"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// Rules is an immutable snapshot of the bidding rules. The engine captures
// one snapshot per lot so a config reload never changes the rules under an
// in-flight auction.
type Rules struct {
	BasePrice    int64
	Increments   [3]int64
	TeamBudget   int64
	TeamNames    []string
	MinSquadSize int
	MaxSquadSize int
	Currency     string
}

// HasTeam reports whether name is one of the configured teams.
func (r Rules) HasTeam(name string) bool {
	for _, t := range r.TeamNames {
		if t == name {
			return true
		}
	}
	return false
}

// Rules returns a snapshot of the current bidding rules.
func (c *Config) Rules() Rules {
	r := Rules{
		BasePrice:    c.Auction.BasePrice,
		TeamBudget:   c.Teams.Budget,
		TeamNames:    append([]string(nil), c.Teams.Names...),
		MinSquadSize: c.Teams.MinPlayers,
		MaxSquadSize: c.Teams.MaxPlayers,
		Currency:     c.Auction.Currency,
	}
	copy(r.Increments[:], c.Auction.Increments)
	return r
}

// Load reads a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Tournament: TournamentConfig{
			Name: "Palace Premier League",
			Logo: "logo.png",
		},
		Teams: TeamsConfig{
			Names:      []string{"Palace Tuskers", "Palace Titans", "Palace Warriors"},
			Budget:     25_000_000,
			MinPlayers: 8,
			MaxPlayers: 9,
		},
		Auction: AuctionConfig{
			BasePrice:  500_000,
			Currency:   "₹",
			Increments: []int64{100_000, 250_000, 500_000},
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:  "csv",
			CSVPath: "players.csv",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "auctiond",
			ServiceVersion: "0.1.0",
		},
		Admin: AdminConfig{
			SessionTTL: 12 * time.Hour,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if len(c.Teams.Names) < 2 {
		return fmt.Errorf("teams.names: at least 2 teams required, got %d", len(c.Teams.Names))
	}
	seen := make(map[string]struct{}, len(c.Teams.Names))
	for _, name := range c.Teams.Names {
		if name == "" {
			return fmt.Errorf("teams.names: empty team name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("teams.names: duplicate team %q", name)
		}
		seen[name] = struct{}{}
	}
	if c.Teams.Budget < 1_000_000 {
		return fmt.Errorf("teams.budget must be at least 1000000, got %d", c.Teams.Budget)
	}
	if c.Teams.MinPlayers < 1 {
		return fmt.Errorf("teams.min_players must be positive, got %d", c.Teams.MinPlayers)
	}
	if c.Teams.MinPlayers > c.Teams.MaxPlayers {
		return fmt.Errorf("teams.min_players (%d) cannot exceed teams.max_players (%d)",
			c.Teams.MinPlayers, c.Teams.MaxPlayers)
	}
	if c.Auction.BasePrice < 100_000 {
		return fmt.Errorf("auction.base_price must be at least 100000, got %d", c.Auction.BasePrice)
	}
	if len(c.Auction.Increments) != 3 {
		return fmt.Errorf("auction.increments must have exactly 3 entries, got %d", len(c.Auction.Increments))
	}
	for i, inc := range c.Auction.Increments {
		if inc <= 0 {
			return fmt.Errorf("auction.increments[%d] must be positive, got %d", i, inc)
		}
	}
	switch c.Database.Driver {
	case "csv", "postgres":
		// valid
	default:
		return fmt.Errorf("unsupported database driver %q: must be \"csv\" or \"postgres\"", c.Database.Driver)
	}
	return nil
}
