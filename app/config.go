package app

import (
	"crypto/rand"
	"database/sql"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Config is the service configuration. LoadConfig fills it from the
// environment; the CLI may override fields before calling Run.
type Config struct {
	Addr         string
	DBDriver     string
	DBDSN        string
	HistoryLimit int
	DelayMin     time.Duration
	DelayMax     time.Duration
	LogLevel     string
	CORSOrigins  []string
}

// AdminConfig holds the admin API credentials and token signing secret.
type AdminConfig struct {
	Username  string
	Password  string
	JWTSecret []byte
}

const (
	defaultHistoryLimit = 20
	defaultDelayMin     = 500 * time.Millisecond
	defaultDelayMax     = 1500 * time.Millisecond
	defaultCORSOrigins  = "http://localhost:3000,http://localhost:3001"
)

// LoadConfig reads CHATOPS_* environment variables.
func LoadConfig() Config {
	addr, _ := serverAddr()
	driver := getenvTrim("CHATOPS_DB_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := getenvTrim("CHATOPS_DB_DSN")
	if dsn == "" {
		dsn = "./chatops.db"
	}
	origins := getenvTrim("CHATOPS_CORS_ORIGINS")
	if origins == "" {
		origins = defaultCORSOrigins
	}

	cfg := Config{
		Addr:         addr,
		DBDriver:     driver,
		DBDSN:        dsn,
		HistoryLimit: getenvInt("CHATOPS_HISTORY_LIMIT", defaultHistoryLimit),
		DelayMin:     getenvDuration("CHATOPS_RESPONSE_DELAY_MIN", defaultDelayMin),
		DelayMax:     getenvDuration("CHATOPS_RESPONSE_DELAY_MAX", defaultDelayMax),
		LogLevel:     getenvTrim("CHATOPS_LOG_LEVEL"),
		CORSOrigins:  splitList(origins),
	}
	if cfg.DelayMax < cfg.DelayMin {
		log.Warnf("CHATOPS_RESPONSE_DELAY_MAX %s is below the minimum; using %s", cfg.DelayMax, cfg.DelayMin)
		cfg.DelayMax = cfg.DelayMin
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// openDatabase opens the persona store. "postgres" is accepted as an alias
// for the pgx driver.
func openDatabase(driver, dsn string) (*sql.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		dbDriver = "sqlite3"
	case "pgx", "postgres", "postgresql":
		dbDriver = "pgx"
	default:
		return nil, errors.Newf("unsupported database driver %q", driver)
	}
	conn, err := sql.Open(dbDriver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", dbDriver)
	}
	if dbDriver == "sqlite3" {
		// One writer keeps history trimming atomic with respect to inserts.
		conn.SetMaxOpenConns(1)
	}
	return conn, nil
}

func parseTemplates(fs embed.FS) (*template.Template, error) {
	return template.ParseFS(fs, "templates/*.html")
}

// ------------------- Admin Config -------------------

func loadAdminConfig() AdminConfig {
	username := getenvTrim("CHATOPS_ADMIN_USER")
	password := getenvTrim("CHATOPS_ADMIN_PASS")
	jwtSecret := getenvTrim("CHATOPS_JWT_SECRET")

	if username == "" {
		username = "admin"
		log.Warn("CHATOPS_ADMIN_USER not set; defaulting to 'admin'")
	}
	if password == "" {
		password = "admin"
		log.Warn("CHATOPS_ADMIN_PASS not set; defaulting to 'admin'")
	}

	config := AdminConfig{
		Username: username,
		Password: password,
	}
	if jwtSecret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Warn("CHATOPS_JWT_SECRET not set; using a random secret for this process")
		config.JWTSecret = secretBytes
		return config
	}
	config.JWTSecret = []byte(jwtSecret)
	return config
}
