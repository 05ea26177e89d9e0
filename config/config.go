package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del pipeline.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Tiers     TiersConfig     `yaml:"tiers"`
	TeamState TeamStateConfig `yaml:"team_state"`
	API       APIConfig       `yaml:"api"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// PipelineConfig controla el comportamiento de los stages.
type PipelineConfig struct {
	Sports         []string `yaml:"sports"`           // sport keys del provider, ej. "basketball_nba"
	Source         string   `yaml:"source"`           // live | backtest
	LeadMinutes    int      `yaml:"lead_minutes"`     // borde exterior de la ventana de lock
	GraceMinutes   int      `yaml:"grace_minutes"`    // borde interior de la ventana de lock
	ScoresDaysFrom int      `yaml:"scores_days_from"` // lookback de scores finales en días
}

// ScoringConfig contiene los umbrales del scorer heurístico.
// Todos son constantes de política explícitas — nunca lookups ambientales
// dentro de las funciones de scoring.
type ScoringConfig struct {
	PickThreshold    int     `yaml:"pick_threshold"`    // score mínimo para emitir pick
	ConfidenceHigh   int     `yaml:"confidence_high"`   // banda high (0-100)
	ConfidenceMedium int     `yaml:"confidence_medium"` // banda medium (0-100)
	MLTightVariance  float64 `yaml:"ml_tight_variance"` // spread de precio (cents) entre casas → bonus
	MLWideVariance   float64 `yaml:"ml_wide_variance"`  // spread de precio (cents) entre casas → penalty
	PtTightVariance  float64 `yaml:"pt_tight_variance"` // spread de puntos entre casas → bonus
	PtWideVariance   float64 `yaml:"pt_wide_variance"`  // spread de puntos entre casas → penalty
	MinPriceEdge     float64 `yaml:"min_price_edge"`    // cents de mejora vs consenso para bonus de line shopping
	MinPointEdge     float64 `yaml:"min_point_edge"`    // puntos de mejora vs consenso para bonus de line shopping
}

// TiersConfig son los cortes de score para cada tier, en orden decreciente.
type TiersConfig struct {
	TopPick    int `yaml:"top_pick"`
	StrongLean int `yaml:"strong_lean"`
	Watchlist  int `yaml:"watchlist"`
}

// TeamStateConfig alimenta el provider estático de señales de disponibilidad.
// Keys son nombres de equipo, values la penalización en puntos de score.
type TeamStateConfig struct {
	Penalties map[string]float64 `yaml:"penalties"`
}

// APIConfig contiene el acceso al provider de odds/scores.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"` // normalmente via env ODDS_API_KEY
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// LeadWindow devuelve el borde exterior de la ventana de lock como Duration.
func (c *Config) LeadWindow() time.Duration {
	return time.Duration(c.Pipeline.LeadMinutes) * time.Minute
}

// GraceWindow devuelve el borde interior de la ventana de lock como Duration.
func (c *Config) GraceWindow() time.Duration {
	return time.Duration(c.Pipeline.GraceMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.API.Key = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if len(cfg.Pipeline.Sports) == 0 {
		cfg.Pipeline.Sports = []string{"basketball_nba"}
	}
	if cfg.Pipeline.Source == "" {
		cfg.Pipeline.Source = "live"
	}
	if cfg.Pipeline.LeadMinutes <= 0 {
		cfg.Pipeline.LeadMinutes = 20
	}
	if cfg.Pipeline.GraceMinutes <= 0 {
		cfg.Pipeline.GraceMinutes = 10
	}
	if cfg.Pipeline.ScoresDaysFrom <= 0 {
		cfg.Pipeline.ScoresDaysFrom = 3
	}
	if cfg.Scoring.PickThreshold <= 0 {
		cfg.Scoring.PickThreshold = 60
	}
	if cfg.Scoring.ConfidenceHigh <= 0 {
		cfg.Scoring.ConfidenceHigh = 75
	}
	if cfg.Scoring.ConfidenceMedium <= 0 {
		cfg.Scoring.ConfidenceMedium = 60
	}
	if cfg.Scoring.MLTightVariance <= 0 {
		cfg.Scoring.MLTightVariance = 25
	}
	if cfg.Scoring.MLWideVariance <= 0 {
		cfg.Scoring.MLWideVariance = 60
	}
	if cfg.Scoring.PtTightVariance <= 0 {
		cfg.Scoring.PtTightVariance = 0.5
	}
	if cfg.Scoring.PtWideVariance <= 0 {
		cfg.Scoring.PtWideVariance = 1.5
	}
	if cfg.Scoring.MinPriceEdge <= 0 {
		cfg.Scoring.MinPriceEdge = 8
	}
	if cfg.Scoring.MinPointEdge <= 0 {
		cfg.Scoring.MinPointEdge = 0.5
	}
	if cfg.Tiers.TopPick <= 0 {
		cfg.Tiers.TopPick = 80
	}
	if cfg.Tiers.StrongLean <= 0 {
		cfg.Tiers.StrongLean = 70
	}
	if cfg.Tiers.Watchlist <= 0 {
		cfg.Tiers.Watchlist = 60
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.the-odds-api.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "picklock.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
