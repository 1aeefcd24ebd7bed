package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"

	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
)

type Config struct {
	Http   *HTTPConfig
	Db     *PGDBCfg
	Redis  *RedisCfg
	Kafka  *KafkaCfg
	Minio  *MinIOCfg
	Recs   *RecsCfg
	Import *ImportCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	Endpoint     string // Адрес конечной точки MinIO
	BucketName   string // Бакет для артефактов отчётов импорта
	RootUser     string
	RootPassword string
	UseSSL       bool
}

// RecsCfg — настройки клиента внешнего рекомендательного сервиса.
type RecsCfg struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	DefaultLimit   int
}

// ImportCfg — настройки одного запуска импорта: пути к исходным файлам и размеры батчей.
type ImportCfg struct {
	ProductsCSV     string
	ProcurementsCSV string
	CategoriesJSON  string
	TemplatesJSON   string
	ErrorLogDir     string

	ProductBatchSize     int
	ProcurementBatchSize int
	CategoryBatchSize    int
	MaxSplitDepth        int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imp, err := loadImportCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:   http,
		Db:     db,
		Redis:  redis,
		Kafka:  kafka,
		Minio:  minio,
		Recs:   loadRecsCfg(),
		Import: imp,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("HTTP_IDLE_TIMEOUT", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_IDLE_TIMEOUT")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "catalog.import.events"
		defaultBrokers           = "kafka:9092"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokers := strings.Split(getEnvOrDefault("KAFKA_BROKERS", defaultBrokers), ",")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Brokers:           brokers,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "import-reports"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		Endpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:   getEnvOrDefault("BUCKET_NAME", defaultBucket),
		RootUser:     getEnv("MINIO_ROOT_USER"),
		RootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		UseSSL:       useSSL,
	}, nil
}

func loadRecsCfg() *RecsCfg {
	const (
		defaultHost           = "recommendation-service"
		defaultPort           = "8000"
		defaultRequestTimeout = 3 * time.Second
		defaultMaxRetries     = 2
		defaultLimit          = 10
	)

	host := getEnvOrDefault("RECS_HOST", defaultHost)
	port := getEnvOrDefault("RECS_PORT", defaultPort)

	return &RecsCfg{
		BaseURL:        "http://" + host + ":" + port,
		RequestTimeout: defaultRequestTimeout,
		MaxRetries:     defaultMaxRetries,
		DefaultLimit:   defaultLimit,
	}
}

func loadImportCfg() (*ImportCfg, error) {
	const (
		defaultProductsCSV     = "data/products.csv"
		defaultProcurementsCSV = "data/procurements.csv"
		defaultCategoriesJSON  = "data/categories.json"
		defaultTemplatesJSON   = "data/templates.json"
		defaultErrorLogDir     = "logs"

		defaultProductBatchSize     = 1000
		defaultProcurementBatchSize = 500
		defaultCategoryBatchSize    = 2000
		defaultMaxSplitDepth        = 2
	)

	productBatch, err := parseIntEnv("IMPORT_PRODUCT_BATCH_SIZE", defaultProductBatchSize)
	if err != nil {
		return nil, e.Wrap("IMPORT_PRODUCT_BATCH_SIZE", err)
	}

	procurementBatch, err := parseIntEnv("IMPORT_PROCUREMENT_BATCH_SIZE", defaultProcurementBatchSize)
	if err != nil {
		return nil, e.Wrap("IMPORT_PROCUREMENT_BATCH_SIZE", err)
	}

	categoryBatch, err := parseIntEnv("IMPORT_CATEGORY_BATCH_SIZE", defaultCategoryBatchSize)
	if err != nil {
		return nil, e.Wrap("IMPORT_CATEGORY_BATCH_SIZE", err)
	}

	maxSplitDepth, err := parseIntEnv("IMPORT_MAX_SPLIT_DEPTH", defaultMaxSplitDepth)
	if err != nil {
		return nil, e.Wrap("IMPORT_MAX_SPLIT_DEPTH", err)
	}

	return &ImportCfg{
		ProductsCSV:          getEnvOrDefault("IMPORT_PRODUCTS_CSV", defaultProductsCSV),
		ProcurementsCSV:      getEnvOrDefault("IMPORT_PROCUREMENTS_CSV", defaultProcurementsCSV),
		CategoriesJSON:       getEnvOrDefault("IMPORT_CATEGORIES_JSON", defaultCategoriesJSON),
		TemplatesJSON:        getEnvOrDefault("IMPORT_TEMPLATES_JSON", defaultTemplatesJSON),
		ErrorLogDir:          getEnvOrDefault("IMPORT_ERROR_LOG_DIR", defaultErrorLogDir),
		ProductBatchSize:     productBatch,
		ProcurementBatchSize: procurementBatch,
		CategoryBatchSize:    categoryBatch,
		MaxSplitDepth:        maxSplitDepth,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
