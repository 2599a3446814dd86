package service

import (
	"fmt"
	"net/http"
	"path/filepath"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/logger"
	"yatube/app/mail"
	"yatube/app/metrics"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/storage"
	"yatube/app/views"
)

// loadConfig reads the configuration named by YATUBE_CONFIG.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		return nil, err
	}
	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
	})
	return cfg, nil
}

// backupDir is where backups of the database at dbPath are written.
func backupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// application is a fully wired Yatube instance.
type application struct {
	repo       *repositories.Repository
	indexCache *cache.PageCache[*services.PostPage]
	services   *services.Services
	handler    http.Handler
}

// openServices opens the database and builds the services on top of it.
// recorder may be nil.
func openServices(cfg *config.Config, recorder services.Recorder) (*application, error) {
	repo, err := repositories.NewRepository(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	indexCache, err := cache.New[*services.PostPage](cfg.IndexTTL())
	if err != nil {
		repo.Close()
		return nil, err
	}
	images, err := storage.NewLocalStorage(cfg.Media.Dir)
	if err != nil {
		indexCache.Close()
		repo.Close()
		return nil, err
	}

	app := &application{repo: repo, indexCache: indexCache}
	app.services = services.New(services.Deps{
		Users:       repo.Users,
		Groups:      repo.Groups,
		Posts:       repo.Posts,
		Comments:    repo.Comments,
		Follows:     repo.Follows,
		ResetTokens: repo.ResetTokens,
		Images:      images,
		IndexCache:  indexCache,
		Mailer: mail.New(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, logger.WithField("component", "mail")),
		Metrics:  recorder,
		ResetTTL: cfg.ResetTTL(),
	})
	return app, nil
}

// newApplication builds the services plus the HTTP handler serving them.
func newApplication(cfg *config.Config) (*application, error) {
	appMetrics := metrics.New()
	app, err := openServices(cfg, appMetrics)
	if err != nil {
		return nil, err
	}
	renderer, err := views.NewTemplateRenderer()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app.handler = routes.SetupRoutes(routes.Deps{
		Services: app.services,
		Renderer: renderer,
		Sessions: auth.NewSessionManager(auth.SessionConfig{
			Secret:     cfg.Auth.Secret,
			TTL:        cfg.SessionTTL(),
			CookieName: cfg.Auth.CookieName,
			Secure:     cfg.Production(),
		}),
		Metrics:  appMetrics,
		MediaDir: cfg.Media.Dir,
		BaseURL:  cfg.Mail.BaseURL,
	})
	return app, nil
}

// Close releases the cache and the database.
func (a *application) Close() error {
	a.indexCache.Close()
	return a.repo.Close()
}
