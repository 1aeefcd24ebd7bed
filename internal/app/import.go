package app

import (
	"context"
	"time"

	config "github.com/zakupka-tech/go-backend/internal/cfg"
	kafkaInfra "github.com/zakupka-tech/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/zakupka-tech/go-backend/internal/infrastructure/minio"
	"github.com/zakupka-tech/go-backend/internal/repository/pgdb"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/clients"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/zakupka-tech/go-backend/pkg/postgres"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImportApp — разовый запуск импорта каталога. В отличие от API-сервера
// процесс завершается сразу после формирования отчёта.
type ImportApp struct {
	db       *postgres.PgDatabase
	producer *kafkaInfra.Producer
	importUC usecase.ImportUC
	logger   logger.Logger
}

func NewImportApp(cfg *config.Config, log logger.Logger) (*ImportApp, error) {
	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// MinIO и Kafka не обязательны для импорта: без них отчёт остаётся
	// на локальном диске, а событие не публикуется.
	minioClient := initMinIO(cfg, log)

	producer, err := kafkaInfra.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Warnf("kafka producer unavailable, import events will not be published: %v", err)
		producer = nil
	} else if err := producer.EnsureTopic(10 * time.Second); err != nil {
		log.Warnf("kafka topic unavailable, import events will not be published: %v", err)
		_ = producer.Close()
		producer = nil
	}

	reportStore := minioInfra.NewReportStore(minioClient, cfg.Minio, cfg.Import.ErrorLogDir, log)

	importUC := usecase.NewImportUC(
		cfg.Import,
		db.Pool,
		pgdb.NewProductRepo(db.Pool),
		pgdb.NewCategoryRepo(db.Pool),
		pgdb.NewProcurementRepo(db.Pool),
		pgdb.NewTemplateRepo(db.Pool),
		pgdb.NewUserRepo(db.Pool),
		pgdb.NewSchemaRepo(db.Pool),
		reportStore,
		toEventProducer(producer),
		log,
	)

	return &ImportApp{
		db:       db,
		producer: producer,
		importUC: importUC,
		logger:   log,
	}, nil
}

// Run выполняет один запуск импорта. Ошибки отдельных записей не считаются
// фатальными: запуск успешен, если конвейер дошёл до отчёта.
func (a *ImportApp) Run(ctx context.Context) error {
	defer a.close()

	report, err := a.importUC.Run(ctx)
	if err != nil {
		a.logger.Errorf(err, "import run failed")
		return err
	}

	a.logger.Infof("import run %s finished in %s with %d record errors",
		report.RunID, report.FinishedAt.Sub(report.StartedAt), report.ErrorCount)
	return nil
}

func (a *ImportApp) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warnf("kafka producer close error: %v", err)
		}
	}
	a.db.Close()
}

func initMinIO(cfg *config.Config, log logger.Logger) *minio.Client {
	client, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Warnf("minio unavailable, error reports will be kept locally: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := clients.EnsureBucket(ctx, client, cfg.Minio.BucketName); err != nil {
		log.Warnf("minio bucket unavailable, error reports will be kept locally: %v", err)
		return nil
	}

	return client
}

// toEventProducer прячет типизированный nil за интерфейсом.
func toEventProducer(producer *kafkaInfra.Producer) usecase.EventProducer {
	if producer == nil {
		return nil
	}
	return producer
}
