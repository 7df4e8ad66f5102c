package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	// "mysql" or "sqlite3"
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// sqlite3 only: database file path
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Secret   string `yaml:"secret"`
	TokenTTL int    `yaml:"token_ttl_hours"`
}

// LendingConfig carries the lending policy. Zero values are replaced by
// the library's standing policy in Normalize.
type LendingConfig struct {
	LoanPeriodDays int     `yaml:"loan_period_days"`
	FinePerDay     float64 `yaml:"fine_per_day"`
	LimitedQuota   int     `yaml:"limited_quota"`
	StaffQuota     int     `yaml:"staff_quota"`
}

type Config struct {
	Version string         `yaml:"version"`
	Mode    string         `yaml:"mode"`
	Addr    string         `yaml:"addr"`
	DB      DatabaseConfig `yaml:"database"`
	Auth    AuthConfig     `yaml:"auth"`
	Lending LendingConfig  `yaml:"lending"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Lending.Normalize()
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24
	}
	return &cfg, nil
}

// Normalize fills policy defaults: 14-day loans, 5000/day fine,
// quotas of 5 (limited) and 10 (staff).
func (c *LendingConfig) Normalize() {
	if c.LoanPeriodDays <= 0 {
		c.LoanPeriodDays = 14
	}
	if c.FinePerDay <= 0 {
		c.FinePerDay = 5000
	}
	if c.LimitedQuota <= 0 {
		c.LimitedQuota = 5
	}
	if c.StaffQuota <= 0 {
		c.StaffQuota = 10
	}
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	switch c.Driver {
	case "", "mysql":
		return connectMySQL(c)
	case "sqlite3":
		return connectSQLite(c)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", c.Driver)
	}
}

func connectMySQL(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Pool sizing: keep the sum across instances under MySQL max_connections.
	conn.SetMaxOpenConns(80)
	conn.SetMaxIdleConns(20)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return conn, nil
}

func connectSQLite(c DatabaseConfig) (*sql.DB, error) {
	path := c.Path
	if path == "" {
		path = "thuvien.db"
	}
	// _txlock=immediate makes concurrent write transactions serialize at
	// BEGIN instead of failing on a lock upgrade mid-transaction.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return conn, nil
}
