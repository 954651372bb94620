package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	DefaultEvent = "Annual Fest"
	DefaultVenue = "Main Gate"
)

type Config struct {
	HTTPAddr       string `toml:"http_addr"`
	DatabaseURL    string `toml:"database_url"`
	StoreDriver    string `toml:"store_driver"`
	DefaultEvent   string `toml:"default_event"`
	DefaultVenue   string `toml:"default_venue"`
	DefaultLocale  string `toml:"default_locale"`
	MigrateOnStart bool   `toml:"migrate_on_start"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
}

// Load charge la configuration (fichier TOML optionnel puis variables
// d'environnement) et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{MigrateOnStart: true}

	if path := strings.TrimSpace(os.Getenv("QRENTRY_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: lecture de %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: %s invalide: %w", path, err)
	}
	return nil
}

// applyEnv écrase les valeurs du fichier par les variables d'environnement
// définies et non vides (HTTP_ADDR= dans un .env ne doit pas effacer le fichier).
func (c *Config) applyEnv() error {
	for env, dst := range map[string]*string{
		"HTTP_ADDR":                   &c.HTTPAddr,
		"DATABASE_URL":                &c.DatabaseURL,
		"STORE_DRIVER":                &c.StoreDriver,
		"DEFAULT_EVENT":               &c.DefaultEvent,
		"DEFAULT_VENUE":               &c.DefaultVenue,
		"DEFAULT_LOCALE":              &c.DefaultLocale,
		"OTEL_EXPORTER_OTLP_ENDPOINT": &c.OTLPEndpoint,
	} {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("MIGRATE_ON_START"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: MIGRATE_ON_START invalide (%q): %w", v, err)
		}
		c.MigrateOnStart = b
	}
	return nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		c.HTTPAddr = ":3000"
	}
	if strings.TrimSpace(c.DefaultEvent) == "" {
		c.DefaultEvent = DefaultEvent
	}
	if strings.TrimSpace(c.DefaultVenue) == "" {
		c.DefaultVenue = DefaultVenue
	}

	if strings.TrimSpace(c.DefaultLocale) == "" {
		c.DefaultLocale = "en"
	}
	if _, err := language.Parse(c.DefaultLocale); err != nil {
		return fmt.Errorf("config: DEFAULT_LOCALE invalide (%q): %w", c.DefaultLocale, err)
	}

	switch strings.ToLower(strings.TrimSpace(c.StoreDriver)) {
	case "", StoreDriverPostgres:
		c.StoreDriver = StoreDriverPostgres
	case StoreDriverMemory:
		c.StoreDriver = StoreDriverMemory
		return nil
	default:
		return fmt.Errorf("config: STORE_DRIVER doit valoir %q ou %q (reçu %q)", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
		c.DatabaseURL = "postgres://localhost:5432/qrentry?sslmode=disable"
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	return nil
}
