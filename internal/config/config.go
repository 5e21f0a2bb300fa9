package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"meal-order-service/internal/domain"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const envPrefix = "MEALORDER_"

// maxMenuTTL bounds how long a cached menu may hide a sold-out flag.
const maxMenuTTL = 5 * time.Minute

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		Timezone string `koanf:"timezone"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	Database struct {
		Driver          string        `koanf:"driver"`
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	} `koanf:"database"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db"`
		MenuTTL  time.Duration `koanf:"menu_ttl"`
	} `koanf:"redis"`

	Rabbit struct {
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
	} `koanf:"rabbitmq"`

	Catalog struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"catalog"`

	Ordering struct {
		InitialStatus struct {
			Standard string `koanf:"standard"`
			PreOrder string `koanf:"preorder"`
		} `koanf:"initial_status"`
	} `koanf:"ordering"`

	// Defaults seed the settings row on first start. After that the row is
	// the source of truth.
	Defaults struct {
		MealBasePrice       string `koanf:"meal_base_price"`
		BankSubsidyPercent  int    `koanf:"bank_subsidy_percent"`
		StaffSubsidyPercent int    `koanf:"staff_subsidy_percent"`
		OrderCutoffTime     string `koanf:"order_cutoff_time"`
		OrderingOpen        bool   `koanf:"ordering_open"`
	} `koanf:"defaults"`
}

// Load reads <dir>/base.yaml, then the optional <dir>/<envName>.yaml, then
// MEALORDER_ environment variables (nesting separated by "__", e.g.
// MEALORDER_DATABASE__DSN).
func Load(dir, envName string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", dir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}
	if envName != "" {
		err := k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", dir, envName)), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envName, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be mysql, postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn required")
	}
	if c.Redis.Addr != "" && (c.Redis.MenuTTL <= 0 || c.Redis.MenuTTL > maxMenuTTL) {
		return fmt.Errorf("redis.menu_ttl must be positive and at most %s, got %s", maxMenuTTL, c.Redis.MenuTTL)
	}
	if _, err := c.InitialStatuses(); err != nil {
		return err
	}
	if _, err := c.DefaultPolicy(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// InitialStatuses returns the status new orders start in, for standard and
// pre-order submissions.
func (c Config) InitialStatuses() (domain.InitialStatusPolicy, error) {
	p := domain.InitialStatusPolicy{
		Standard: domain.OrderStatus(c.Ordering.InitialStatus.Standard),
		PreOrder: domain.OrderStatus(c.Ordering.InitialStatus.PreOrder),
	}
	if p.Standard == "" {
		p.Standard = domain.StatusPending
	}
	if p.PreOrder == "" {
		p.PreOrder = domain.StatusConfirmed
	}
	if err := p.Validate(); err != nil {
		return domain.InitialStatusPolicy{}, fmt.Errorf("ordering.initial_status: %w", err)
	}
	return p, nil
}

func (c Config) DefaultPolicy() (domain.SubsidyPolicy, error) {
	price, err := decimal.NewFromString(c.Defaults.MealBasePrice)
	if err != nil {
		return domain.SubsidyPolicy{}, fmt.Errorf("meal_base_price: %w", err)
	}
	cutoff, err := domain.ParseClock(c.Defaults.OrderCutoffTime)
	if err != nil {
		return domain.SubsidyPolicy{}, err
	}
	p := domain.SubsidyPolicy{
		MealBasePrice:       price,
		BankSubsidyPercent:  c.Defaults.BankSubsidyPercent,
		StaffSubsidyPercent: c.Defaults.StaffSubsidyPercent,
		OrderCutoffTime:     cutoff,
		IsOrderingOpen:      c.Defaults.OrderingOpen,
	}
	if err := p.Validate(); err != nil {
		return domain.SubsidyPolicy{}, err
	}
	return p, nil
}
