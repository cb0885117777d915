package app

import (
	"context"
	"database/sql"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

var (
	db        *sql.DB
	dbDriver  = "sqlite3"
	templates *template.Template
	log       = logrus.New()
	admin     AdminConfig
	cfg       = Config{HistoryLimit: defaultHistoryLimit}
	assetsFS  fs.FS
	startedAt = time.Now()
)

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// Logger returns the service logger so the CLI can adjust its output.
func Logger() *logrus.Logger {
	return log
}

// Run opens the store, seeds it and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, c Config, templatesFS embed.FS) error {
	cfg = c
	if level := strings.TrimSpace(cfg.LogLevel); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			log.Warnf("Invalid log level %q; keeping %s", level, log.GetLevel())
		} else {
			log.SetLevel(parsed)
		}
	}

	var err error
	db, err = openDatabase(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "connect to database")
	}
	if err := migrate(db); err != nil {
		return err
	}
	if err := seedPersonas(db, seed.personas); err != nil {
		log.Errorf("Failed to seed personas: %v", err)
	}

	assetsFS = templatesFS
	templates, err = parseTemplates(templatesFS)
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}

	admin = loadAdminConfig()
	startedAt = time.Now()

	addr, logURL := normalizeAddr(cfg.Addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           withCORS(buildRouter(), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"driver": dbDriver,
			"url":    logURL,
		}).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
