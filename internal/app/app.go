package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/zakupka-tech/go-backend/internal/cfg"
	v1Http "github.com/zakupka-tech/go-backend/internal/delivery/v1/http"
	"github.com/zakupka-tech/go-backend/internal/infrastructure/recs"
	"github.com/zakupka-tech/go-backend/internal/repository/pgdb"
	"github.com/zakupka-tech/go-backend/internal/repository/redis"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/clients"
	"github.com/zakupka-tech/go-backend/pkg/closer"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/zakupka-tech/go-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

// App — каталожный API-сервер: HTTP-доставка поверх каталожного usecase.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	productRepo := pgdb.NewProductRepo(db.Pool)
	categoryRepo := pgdb.NewCategoryRepo(db.Pool)
	procurementRepo := pgdb.NewProcurementRepo(db.Pool)
	templateRepo := pgdb.NewTemplateRepo(db.Pool)
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, log)
	recsClient := recs.NewRecsClient(cfg.Recs, productRepo, log)

	catalogUC := usecase.NewCatalogUC(
		productRepo,
		categoryRepo,
		procurementRepo,
		templateRepo,
		cacheRepo,
		recsClient,
		cfg.Recs.DefaultLimit,
		log,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(catalogUC)

	return &App{
		cfg:     cfg,
		logger:  log,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		closer:  cl,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения или
// фатальной ошибки сервера. Ресурсы закрываются через closer в порядке LIFO.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
