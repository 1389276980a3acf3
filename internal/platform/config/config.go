package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
// Values come from an optional YAML file (CONFIG_FILE); env vars win.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	StoreBackend string   `yaml:"store_backend"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	MySQLDSN     string   `yaml:"mysql_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`

	Escrow EscrowConfig `yaml:"escrow"`
	Outbox OutboxConfig `yaml:"outbox"`

	// Projects seeds the project directory of the memory backend.
	Projects []ProjectSeed `yaml:"projects"`
}

type EscrowConfig struct {
	DefaultCurrency    string        `yaml:"default_currency"`
	MilestoneDueWindow time.Duration `yaml:"milestone_due_window"`
}

type OutboxConfig struct {
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ProjectSeed struct {
	ProjectID      string `yaml:"project_id"`
	ClientID       string `yaml:"client_id"`
	WorkerID       string `yaml:"worker_id"`
	BudgetCurrency string `yaml:"budget_currency"`
}

func Load() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		parsed, err := Parse(data)
		if err != nil {
			return Config{}, err
		}
		cfg = parsed
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse unmarshals YAML bytes without defaults or validation.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	envString(&c.ServiceName, "SERVICE_NAME")
	envString(&c.HTTPPort, "HTTP_PORT")
	envString(&c.StoreBackend, "STORE_BACKEND")
	envString(&c.PostgresDSN, "POSTGRES_DSN")
	envString(&c.MySQLDSN, "MYSQL_DSN")
	envString(&c.Escrow.DefaultCurrency, "ESCROW_DEFAULT_CURRENCY")

	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		c.KafkaBrokers = splitList(raw)
	}
	if err := envDuration(&c.Escrow.MilestoneDueWindow, "ESCROW_MILESTONE_DUE_WINDOW"); err != nil {
		return err
	}
	if err := envDuration(&c.Outbox.PollInterval, "OUTBOX_POLL_INTERVAL"); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("OUTBOX_BATCH_SIZE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: OUTBOX_BATCH_SIZE: %w", err)
		}
		c.Outbox.BatchSize = value
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "covenant"
	}
	if c.HTTPPort == "" {
		c.HTTPPort = "8080"
	}
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	if c.StoreBackend == "" {
		if strings.TrimSpace(c.PostgresDSN) != "" {
			c.StoreBackend = StorePostgres
		} else {
			c.StoreBackend = StoreMemory
		}
	}
	if len(c.KafkaBrokers) == 0 {
		c.KafkaBrokers = []string{"localhost:9092"}
	}
	c.Escrow.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.Escrow.DefaultCurrency))
	if c.Escrow.DefaultCurrency == "" {
		c.Escrow.DefaultCurrency = "INR"
	}
	if c.Escrow.MilestoneDueWindow <= 0 {
		c.Escrow.MilestoneDueWindow = 30 * 24 * time.Hour
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = 100
	}
	if c.Outbox.PollInterval <= 0 {
		c.Outbox.PollInterval = 2 * time.Second
	}
}

func (c *Config) validate() error {
	var errs []string
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, "POSTGRES_DSN is required for the postgres store")
		}
	case StoreMySQL:
		if strings.TrimSpace(c.MySQLDSN) == "" {
			errs = append(errs, "MYSQL_DSN is required for the mysql store")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown store backend %q", c.StoreBackend))
	}
	for i, project := range c.Projects {
		if strings.TrimSpace(project.ProjectID) == "" {
			errs = append(errs, fmt.Sprintf("projects[%d].project_id is required", i))
		}
		if strings.TrimSpace(project.ClientID) == "" || strings.TrimSpace(project.WorkerID) == "" {
			errs = append(errs, fmt.Sprintf("projects[%d] needs client_id and worker_id", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func envString(target *string, name string) {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		*target = value
	}
}

func envDuration(target *time.Duration, name string) error {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*target = value
	return nil
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
