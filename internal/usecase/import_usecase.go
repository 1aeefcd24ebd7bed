package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/importer/batch"
	"github.com/zakupka-tech/go-backend/internal/importer/classify"
	"github.com/zakupka-tech/go-backend/internal/importer/identity"
	"github.com/zakupka-tech/go-backend/internal/importer/normalize"
	"github.com/zakupka-tech/go-backend/internal/importer/source"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Источник данных, проставляемый импортированным товарам.
const sourceSystemCatalogCSV = "catalog_csv"

// expectedTables — таблицы, которые обязаны существовать до начала записи.
var expectedTables = []string{
	"users",
	"categories",
	"products",
	"procurements",
	"procurement_items",
	"procurement_templates",
	"template_products",
}

// ImportUseCase — оркестратор запуска импорта. Конвейер линейный:
// проверка файлов и схемы → отключение ссылочной целостности → категории →
// товары → закупки → шаблоны → включение целостности → контрольные счётчики →
// отчёт. Ошибки отдельных записей и батчей не прерывают запуск; фатальны
// только отсутствующие файлы и проблемы соединения или схемы.
type ImportUseCase struct {
	cfg             *cfg.ImportCfg
	dbPool          transaction.Transactional
	productRepo     ProductRepository
	categoryRepo    CategoryRepository
	procurementRepo ProcurementRepository
	templateRepo    TemplateRepository
	userRepo        UserRepository
	schemaRepo      SchemaRepository
	reportStore     ReportStore
	producer        EventProducer
	logger          logger.Logger
}

func NewImportUC(
	cfg *cfg.ImportCfg,
	dbPool transaction.Transactional,
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	procurementRepo ProcurementRepository,
	templateRepo TemplateRepository,
	userRepo UserRepository,
	schemaRepo SchemaRepository,
	reportStore ReportStore,
	producer EventProducer,
	logger logger.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		cfg:             cfg,
		dbPool:          dbPool,
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		procurementRepo: procurementRepo,
		templateRepo:    templateRepo,
		userRepo:        userRepo,
		schemaRepo:      schemaRepo,
		reportStore:     reportStore,
		producer:        producer,
		logger:          logger,
	}
}

// importRun — состояние одного запуска: реестр занятых id, классификатор,
// журнал ошибок. Передаётся стадиям явно, глобального состояния нет.
type importRun struct {
	resolver        *identity.Resolver
	classifier      *classify.Classifier
	knownCategories map[string]struct{}
	errLog          *batch.ErrorLog
	usersByINN      map[string]string
}

func newImportRun() *importRun {
	return &importRun{
		resolver:        identity.NewResolver(),
		knownCategories: make(map[string]struct{}),
		errLog:          batch.NewErrorLog(),
		usersByINN:      make(map[string]string),
	}
}

// Run выполняет полный цикл импорта и возвращает итоговый отчёт.
func (s *ImportUseCase) Run(ctx context.Context) (*ImportReport, error) {
	const op = "ImportUseCase.Run"

	report := &ImportReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Entities:  make(map[string]batch.Counts),
	}

	if err := source.CheckFiles(
		s.cfg.CategoriesJSON,
		s.cfg.ProductsCSV,
		s.cfg.ProcurementsCSV,
		s.cfg.TemplatesJSON,
	); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := s.schemaRepo.ValidateSchema(ctx, expectedTables); err != nil {
		return nil, e.Wrap(op, err)
	}

	run := newImportRun()

	if err := s.schemaRepo.SetReferentialIntegrity(ctx, false); err != nil {
		return nil, e.Wrap(op, err)
	}
	// Целостность включается обратно всегда, даже если стадия упала.
	defer func() {
		if err := s.schemaRepo.SetReferentialIntegrity(context.WithoutCancel(ctx), true); err != nil {
			s.logger.Errorf(err, "failed to re-enable referential integrity")
		}
	}()

	s.seedTestUser(ctx, run)
	s.importCategories(ctx, run, report)
	s.importProducts(ctx, run, report)
	s.importProcurements(ctx, run, report)
	s.importTemplates(ctx, run, report)

	if counts, err := s.schemaRepo.TableCounts(ctx, expectedTables); err != nil {
		s.logger.Warnf("failed to collect table counts: %v", err)
	} else {
		report.TableCounts = counts
	}

	report.FinishedAt = time.Now().UTC()
	report.ErrorCount = run.errLog.Len()

	s.persistErrorLog(ctx, run, report)
	s.publishReport(ctx, report)
	s.logReport(report)

	return report, nil
}

// inTx выполняет fn в одной транзакции: ошибка fn откатывает весь батч.
func (s *ImportUseCase) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return e.Wrap("ImportUseCase.inTx", err)
	}
	defer func() {
		if tx.IsActive() {
			tx.Rollback(txCtx)
		}
	}()

	txCtx = context.WithValue(txCtx, "tx", tx.Transaction())
	if err := fn(txCtx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// seedTestUser гарантирует наличие тестового пользователя.
// Неуспех не прерывает запуск, а попадает в журнал ошибок.
func (s *ImportUseCase) seedTestUser(ctx context.Context, run *importRun) {
	user := domain.NewUser(
		run.resolver.Resolve("", "user:test"),
		"test@zakupka.local",
		hashPassword("test1234"),
		"0000000000",
		"Тестовая организация",
	)
	user.FullName = "Тестовый пользователь"

	if err := s.userRepo.EnsureTestUser(ctx, user); err != nil {
		run.errLog.Append("seed_test_user", err.Error(), nil)
		s.logger.Warnf("failed to seed test user: %v", err)
		return
	}

	run.usersByINN[user.INN] = user.ID
}

// importCategories строит иерархию категорий, классификатор и записывает категории.
func (s *ImportUseCase) importCategories(ctx context.Context, run *importRun, report *ImportReport) {
	entries, err := source.ReadCategories(s.cfg.CategoriesJSON)
	if err != nil {
		run.errLog.Append("read_categories", err.Error(), nil)
		s.logger.Warnf("categories stage skipped: %v", err)
		return
	}

	hierarchy := classify.BuildHierarchy(entries, run.resolver)
	run.classifier = hierarchy.Classifier
	for _, category := range hierarchy.Categories {
		run.knownCategories[category.ID] = struct{}{}
	}

	writer := batch.NewWriter("categories", s.cfg.CategoryBatchSize, s.cfg.MaxSplitDepth,
		func(ctx context.Context, rows []*domain.Category) error {
			return s.inTx(ctx, func(ctx context.Context) error {
				return s.categoryRepo.UpsertBatch(ctx, rows)
			})
		}, run.errLog, s.logger)

	for _, category := range hierarchy.Categories {
		if err := writer.Add(ctx, category); err != nil {
			run.errLog.Append("import_categories", err.Error(), nil)
			break
		}
	}
	writer.Flush(ctx)

	report.Entities["categories"] = writer.Counts()
	s.logger.Infof("categories imported: %+v (classifier rules: %d)", writer.Counts(), run.classifier.Rules())
}

// importProducts потоково читает каталог, нормализует записи и пишет их батчами.
func (s *ImportUseCase) importProducts(ctx context.Context, run *importRun, report *ImportReport) {
	writer := batch.NewWriter("products", s.cfg.ProductBatchSize, s.cfg.MaxSplitDepth,
		func(ctx context.Context, rows []*domain.Product) error {
			return s.inTx(ctx, func(ctx context.Context) error {
				return s.productRepo.UpsertBatch(ctx, rows)
			})
		}, run.errLog, s.logger)

	skipped := 0
	err := source.EachProduct(s.cfg.ProductsCSV, func(row source.ProductRow) error {
		product, ok := s.buildProduct(run, row)
		if !ok {
			skipped++
			return nil
		}

		return writer.Add(ctx, product)
	})
	if err != nil {
		run.errLog.Append("read_products", err.Error(), nil)
		s.logger.Warnf("products stream interrupted: %v", err)
	}
	writer.Flush(ctx)

	counts := writer.Counts()
	counts.Errors += skipped
	report.Entities["products"] = counts
	s.logger.Infof("products imported: %+v", counts)
}

// buildProduct нормализует сырую строку каталога.
// Запись без названия невосстановима и пропускается.
func (s *ImportUseCase) buildProduct(run *importRun, row source.ProductRow) (*domain.Product, bool) {
	if strings.TrimSpace(row.Name) == "" {
		run.errLog.Append("normalize_product", "product name is empty", map[string]any{"line": row.Line})
		return nil, false
	}

	name := normalize.Truncate(row.Name, normalize.MaxNameLen)
	product := domain.NewProduct(run.resolver.Resolve(row.ProductID, "product:"+name), name)
	product.Description = normalize.Truncate(row.Description, normalize.MaxDescriptionLen)
	product.Manufacturer = normalize.Truncate(row.Manufacturer, normalize.MaxManufacturerLen)
	product.UnitOfMeasure = normalize.Truncate(row.UnitOfMeasure, normalize.MaxUnitLen)
	product.Specifications = normalize.Specifications(row.Specifications)
	product.AveragePrice = normalize.Price(row.AveragePrice)
	product.SourceSystem = sourceSystemCatalogCSV
	product.CategoryID = s.resolveProductCategory(run, row.CategoryID, name)

	return product, true
}

// resolveProductCategory использует категорию из источника, если она известна,
// иначе подбирает её классификатором по названию.
func (s *ImportUseCase) resolveProductCategory(run *importRun, rawCategoryID, name string) *string {
	if id := strings.TrimSpace(rawCategoryID); id != "" {
		if _, ok := run.knownCategories[id]; ok {
			return &id
		}
	}

	if run.classifier == nil {
		return nil
	}

	if id := run.classifier.Classify(name); id != "" {
		return &id
	}

	return nil
}

// procurementAgg накапливает строки одной закупки до записи.
type procurementAgg struct {
	first      source.ProcurementRow
	productIDs []string
}

// importProcurements агрегирует историю закупок, синтезирует пользователей
// по ИНН организаций и записывает закупки с позициями.
func (s *ImportUseCase) importProcurements(ctx context.Context, run *importRun, report *ImportReport) {
	aggregates := make(map[string]*procurementAgg)
	var order []string
	skipped := 0

	err := source.EachProcurementRow(s.cfg.ProcurementsCSV, func(row source.ProcurementRow) error {
		if row.ProcurementID == "" {
			skipped++
			run.errLog.Append("normalize_procurement", "procurement id is empty", map[string]any{"line": row.Line})
			return nil
		}

		agg, ok := aggregates[row.ProcurementID]
		if !ok {
			agg = &procurementAgg{first: row}
			aggregates[row.ProcurementID] = agg
			order = append(order, row.ProcurementID)
		}

		if row.ProductID != "" {
			agg.productIDs = append(agg.productIDs, row.ProductID)
		}

		return nil
	})
	if err != nil {
		run.errLog.Append("read_procurements", err.Error(), nil)
		s.logger.Warnf("procurements stream interrupted: %v", err)
	}

	s.importUsers(ctx, run, report, aggregates, order)

	writer := batch.NewWriter("procurements", s.cfg.ProcurementBatchSize, s.cfg.MaxSplitDepth,
		func(ctx context.Context, rows []*domain.Procurement) error {
			return s.inTx(ctx, func(ctx context.Context) error {
				return s.procurementRepo.UpsertBatch(ctx, rows)
			})
		}, run.errLog, s.logger)

	for _, id := range order {
		procurement := s.buildProcurement(run, id, aggregates[id])
		if err := writer.Add(ctx, procurement); err != nil {
			run.errLog.Append("import_procurements", err.Error(), nil)
			break
		}
	}
	writer.Flush(ctx)

	counts := writer.Counts()
	counts.Errors += skipped
	report.Entities["procurements"] = counts
	s.logger.Infof("procurements imported: %+v", counts)
}

// importUsers создаёт по пользователю на каждый различный ИНН из истории закупок.
func (s *ImportUseCase) importUsers(
	ctx context.Context,
	run *importRun,
	report *ImportReport,
	aggregates map[string]*procurementAgg,
	order []string,
) {
	writer := batch.NewWriter("users", s.cfg.ProcurementBatchSize, s.cfg.MaxSplitDepth,
		func(ctx context.Context, rows []*domain.User) error {
			return s.inTx(ctx, func(ctx context.Context) error {
				return s.userRepo.UpsertBatch(ctx, rows)
			})
		}, run.errLog, s.logger)

	for _, id := range order {
		row := aggregates[id].first
		if row.INN == "" {
			continue
		}
		if _, ok := run.usersByINN[row.INN]; ok {
			continue
		}

		user := domain.NewUser(
			run.resolver.Resolve("", "user:"+row.INN),
			row.INN+"@import.zakupka.local",
			hashPassword(uuid.NewString()),
			row.INN,
			normalize.Truncate(row.Organization, normalize.MaxOrganizationLen),
		)
		run.usersByINN[row.INN] = user.ID

		if err := writer.Add(ctx, user); err != nil {
			run.errLog.Append("import_users", err.Error(), nil)
			break
		}
	}
	writer.Flush(ctx)

	report.Entities["users"] = writer.Counts()
	s.logger.Infof("users imported: %+v", writer.Counts())
}

// buildProcurement собирает закупку из агрегированных строк. Цена позиции —
// оценочная стоимость закупки, поделенная поровну между позициями.
func (s *ImportUseCase) buildProcurement(run *importRun, rawID string, agg *procurementAgg) *domain.Procurement {
	row := agg.first
	id := run.resolver.Resolve(rawID, "")

	// Пустой ИНН оставляет закупку без владельца: в user_id уходит NULL,
	// а не пустая строка, которая повисла бы битой ссылкой при выключенных триггерах.
	var userID *string
	if owner, ok := run.usersByINN[row.INN]; ok && owner != "" {
		userID = &owner
	}

	procurement := &domain.Procurement{
		ID:               id,
		UserID:           userID,
		Name:             normalize.Truncate(row.ProcurementName, normalize.MaxNameLen),
		EstimatedPrice:   normalize.Price(row.EstimatedPrice),
		Status:           domain.ProcurementStatusCompleted,
		ProcurementDate:  normalize.Date(row.Date),
		PublicationDate:  normalize.Date(row.Year),
		OrganizationName: normalize.Truncate(row.Organization, normalize.MaxOrganizationLen),
		OrganizationINN:  row.INN,
	}

	unitPrice := splitPrice(procurement.EstimatedPrice, len(agg.productIDs))
	for i, productID := range agg.productIDs {
		procurement.Items = append(procurement.Items, domain.ProcurementItem{
			ID:            run.resolver.Resolve("", fmt.Sprintf("procurement_item:%s:%s:%d", id, productID, i)),
			ProcurementID: id,
			ProductID:     productID,
			Quantity:      1,
			UnitPrice:     unitPrice,
		})
	}

	return procurement
}

// importTemplates записывает шаблоны типовых закупок.
// Ключи обходятся в отсортированном порядке для воспроизводимости запуска.
func (s *ImportUseCase) importTemplates(ctx context.Context, run *importRun, report *ImportReport) {
	entries, err := source.ReadTemplates(s.cfg.TemplatesJSON)
	if err != nil {
		run.errLog.Append("read_templates", err.Error(), nil)
		s.logger.Warnf("templates stage skipped: %v", err)
		return
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	writer := batch.NewWriter("templates", s.cfg.CategoryBatchSize, s.cfg.MaxSplitDepth,
		func(ctx context.Context, rows []*domain.Template) error {
			return s.inTx(ctx, func(ctx context.Context) error {
				return s.templateRepo.UpsertBatch(ctx, rows)
			})
		}, run.errLog, s.logger)

	for _, key := range keys {
		if err := writer.Add(ctx, s.buildTemplate(run, key, entries[key])); err != nil {
			run.errLog.Append("import_templates", err.Error(), nil)
			break
		}
	}
	writer.Flush(ctx)

	report.Entities["templates"] = writer.Counts()
	s.logger.Infof("templates imported: %+v", writer.Counts())
}

func (s *ImportUseCase) buildTemplate(run *importRun, key string, entry source.TemplateEntry) *domain.Template {
	template := &domain.Template{
		ID:               run.resolver.Resolve("", "template:"+key),
		Name:             normalize.Truncate(entry.Name, normalize.MaxNameLen),
		Keywords:         entry.Keywords,
		SampleSize:       entry.SampleSize,
		AvgProductsCount: entry.AvgProductsPerProc,
		AvgPrice:         normalize.Price(entry.AvgPrice),
	}

	for i, productID := range entry.TypicalProducts {
		template.Products = append(template.Products, domain.TemplateProduct{
			TemplateID: template.ID,
			ProductID:  productID,
			Frequency:  entry.ProductFrequencies[productID],
			Position:   i,
		})
	}

	return template
}

// persistErrorLog сохраняет журнал ошибок как артефакт с меткой времени.
func (s *ImportUseCase) persistErrorLog(ctx context.Context, run *importRun, report *ImportReport) {
	if run.errLog.Len() == 0 {
		return
	}

	data, err := json.MarshalIndent(map[string]any{
		"run_id": report.RunID,
		"errors": run.errLog.Records(),
	}, "", "  ")
	if err != nil {
		s.logger.Warnf("failed to marshal error log: %v", err)
		return
	}

	name := fmt.Sprintf("import-errors-%s.json", report.StartedAt.Format("20060102-150405"))
	location, err := s.reportStore.SaveErrorReport(ctx, name, data)
	if err != nil {
		s.logger.Warnf("failed to persist error log: %v", err)
		return
	}

	report.ErrorLogObject = location
}

// publishReport отправляет событие о завершённом запуске. Неуспех не фатален.
func (s *ImportUseCase) publishReport(ctx context.Context, report *ImportReport) {
	if s.producer == nil {
		return
	}

	if err := s.producer.PublishImportReport(ctx, report); err != nil {
		s.logger.Warnf("failed to publish import report: %v", err)
	}
}

func (s *ImportUseCase) logReport(report *ImportReport) {
	for entity, counts := range report.Entities {
		s.logger.Infof("import summary: %s success=%d errors=%d", entity, counts.Success, counts.Errors)
	}
	for table, count := range report.TableCounts {
		s.logger.Infof("table %s: %d rows", table, count)
	}
	if report.ErrorCount > 0 {
		s.logger.Warnf("import finished with %d errors, log: %s", report.ErrorCount, report.ErrorLogObject)
	}
}

// splitPrice делит оценочную стоимость закупки поровну между позициями.
func splitPrice(total *decimal.Decimal, items int) *decimal.Decimal {
	if total == nil || items <= 0 {
		return nil
	}

	price := total.DivRound(decimal.NewFromInt(int64(items)), 2)
	return &price
}

func hashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}

	return string(hash)
}
