package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/importer/batch"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx — заглушка pgx.Tx: фиксация и откат всегда успешны,
// сами запросы в тестах оркестратора не выполняются.
type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) { return nil, nil }
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row        { return nil }
func (fakeTx) Conn() *pgx.Conn                                                      { return nil }

type fakePool struct{}

func (fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	return fakeTx{}, nil
}

func (fakePool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return fakeTx{}, nil
}

type fakeSchemaRepo struct {
	validateErr    error
	validated      bool
	integrityCalls []bool
	counts         map[string]int64
}

func (f *fakeSchemaRepo) ValidateSchema(ctx context.Context, tables []string) error {
	f.validated = true
	return f.validateErr
}

func (f *fakeSchemaRepo) SetReferentialIntegrity(ctx context.Context, enabled bool) error {
	f.integrityCalls = append(f.integrityCalls, enabled)
	return nil
}

func (f *fakeSchemaRepo) TableCounts(ctx context.Context, tables []string) (map[string]int64, error) {
	return f.counts, nil
}

type fakeUserRepo struct {
	upserted []*domain.User
	seeded   *domain.User
}

func (f *fakeUserRepo) UpsertBatch(ctx context.Context, users []*domain.User) error {
	f.upserted = append(f.upserted, users...)
	return nil
}

func (f *fakeUserRepo) EnsureTestUser(ctx context.Context, user *domain.User) error {
	f.seeded = user
	return nil
}

type fakeReportStore struct {
	name string
	data []byte
}

func (f *fakeReportStore) SaveErrorReport(ctx context.Context, name string, data []byte) (string, error) {
	f.name = name
	f.data = data
	return "reports/" + name, nil
}

type fakeProducer struct {
	published *ImportReport
}

func (f *fakeProducer) PublishImportReport(ctx context.Context, report *ImportReport) error {
	f.published = report
	return nil
}

// writeImportFixtures раскладывает минимальный согласованный набор входных
// файлов: две категории, два валидных товара и один без названия, две закупки
// (одна без ИНН организации), один шаблон.
func writeImportFixtures(t *testing.T) *cfg.ImportCfg {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	products := write("products.csv",
		"product_id;name;description;category_id;manufacturer;unit_of_measure;specifications;average_price\n"+
			"P-1;Бумага писчая А4;Плотность 80;;СветоКопи;пачка;;349,90\n"+
			";Авторучка шариковая;;;;шт;;25\n"+
			";;;;;;;\n")

	procurements := write("procurements.csv",
		"procurement_id,date,organization,procurement_name,product_id,estimated_price,inn,year\n"+
			"PROC-1,2023-05-10,Школа №7,Закупка канцелярии,P-1,1000,7701234567,2023\n"+
			"PROC-1,2023-05-10,Школа №7,Закупка канцелярии,P-2,1000,7701234567,2023\n"+
			"PROC-2,2023-06-01,Гимназия №1,Закупка бумаги,P-1,500,,2023\n")

	categories := write("categories.json", `[
		{"category_path": "Офис", "level": 1, "keywords": ["офис"]},
		{"category_path": "Офис -> Бумага", "level": 2, "keywords": ["бумага"]}
	]`)

	templates := write("templates.json", `{
		"office": {
			"name": "Канцелярия",
			"keywords": ["офис"],
			"sample_size": 10,
			"avg_products_per_procurement": 2.5,
			"avg_price": "1500",
			"typical_products": ["P-1"],
			"product_frequencies": {"P-1": 0.9}
		}
	}`)

	return &cfg.ImportCfg{
		ProductsCSV:          products,
		ProcurementsCSV:      procurements,
		CategoriesJSON:       categories,
		TemplatesJSON:        templates,
		ErrorLogDir:          dir,
		ProductBatchSize:     2,
		ProcurementBatchSize: 10,
		CategoryBatchSize:    10,
		MaxSplitDepth:        2,
	}
}

type importEnv struct {
	uc           *ImportUseCase
	products     *fakeProductRepo
	categories   *fakeCategoryRepo
	procurements *fakeProcurementRepo
	templates    *fakeTemplateRepo
	users        *fakeUserRepo
	schema       *fakeSchemaRepo
	store        *fakeReportStore
	producer     *fakeProducer
}

func newImportEnv(importCfg *cfg.ImportCfg) *importEnv {
	env := &importEnv{
		products:     &fakeProductRepo{},
		categories:   &fakeCategoryRepo{},
		procurements: &fakeProcurementRepo{},
		templates:    &fakeTemplateRepo{},
		users:        &fakeUserRepo{},
		schema:       &fakeSchemaRepo{counts: map[string]int64{"products": 2}},
		store:        &fakeReportStore{},
		producer:     &fakeProducer{},
	}

	env.uc = NewImportUC(
		importCfg,
		fakePool{},
		env.products,
		env.categories,
		env.procurements,
		env.templates,
		env.users,
		env.schema,
		env.store,
		env.producer,
		logger.NewSlogLogger(),
	)

	return env
}

func TestImportUC_Run_FullPipeline(t *testing.T) {
	env := newImportEnv(writeImportFixtures(t))

	report, err := env.uc.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, env.categories.upserted, 2)
	assert.Len(t, env.procurements.upserted, 2)
	assert.Len(t, env.templates.upserted, 1)
	require.NotNil(t, env.users.seeded)
	require.Len(t, env.users.upserted, 1)
	assert.Equal(t, "7701234567", env.users.upserted[0].INN)

	// Из трёх строк каталога одна без названия: она попадает в ошибки.
	require.Len(t, env.products.upserted, 2)
	assert.Equal(t, batch.Counts{Success: 2, Errors: 1}, report.Entities["products"])
	assert.Equal(t, batch.Counts{Success: 2}, report.Entities["categories"])
	assert.Equal(t, batch.Counts{Success: 2}, report.Entities["procurements"])
	assert.Equal(t, batch.Counts{Success: 1}, report.Entities["templates"])

	// Классификатор построен из иерархии: бумага находит категорию, ручка нет.
	assert.NotNil(t, env.products.upserted[0].CategoryID)
	assert.Nil(t, env.products.upserted[1].CategoryID)

	byID := make(map[string]*domain.Procurement, len(env.procurements.upserted))
	for _, procurement := range env.procurements.upserted {
		byID[procurement.ID] = procurement
	}

	withOwner := byID["PROC-1"]
	require.NotNil(t, withOwner)
	require.NotNil(t, withOwner.UserID)
	assert.Equal(t, env.users.upserted[0].ID, *withOwner.UserID)
	require.Len(t, withOwner.Items, 2)
	assert.Equal(t, "500.00", withOwner.Items[0].UnitPrice.StringFixed(2))

	// Пустой ИНН оставляет закупку без владельца, а не с пустой строкой.
	orphan := byID["PROC-2"]
	require.NotNil(t, orphan)
	assert.Nil(t, orphan.UserID)

	// Триггеры целостности выключаются и включаются ровно по одному разу.
	assert.Equal(t, []bool{false, true}, env.schema.integrityCalls)

	// Журнал ошибок уходит артефактом, отчёт публикуется событием.
	assert.Equal(t, 1, report.ErrorCount)
	assert.Regexp(t, `^import-errors-\d{8}-\d{6}\.json$`, env.store.name)
	assert.Equal(t, "reports/"+env.store.name, report.ErrorLogObject)
	assert.Contains(t, string(env.store.data), "normalize_product")
	require.NotNil(t, env.producer.published)
	assert.Equal(t, report.RunID, env.producer.published.RunID)
	assert.Equal(t, map[string]int64{"products": 2}, report.TableCounts)
}

func TestImportUC_Run_IntegrityRestoredWhenStageFails(t *testing.T) {
	env := newImportEnv(writeImportFixtures(t))
	env.products.upsertErr = errors.New("insert failed")

	report, err := env.uc.Run(context.Background())
	require.NoError(t, err, "ошибки батчей не фатальны для запуска")

	// Включение целостности гарантировано и не дублируется.
	assert.Equal(t, []bool{false, true}, env.schema.integrityCalls)

	// Оба валидных товара исчерпали попытки, строка без названия пропущена.
	assert.Equal(t, batch.Counts{Success: 0, Errors: 3}, report.Entities["products"])

	// Последующие стадии выполняются несмотря на провал товаров.
	assert.Len(t, env.procurements.upserted, 2)
	assert.Len(t, env.templates.upserted, 1)
}

func TestImportUC_Run_CategoriesFailureKeepsPipeline(t *testing.T) {
	importCfg := writeImportFixtures(t)
	require.NoError(t, os.WriteFile(importCfg.CategoriesJSON, []byte("{"), 0o644))
	env := newImportEnv(importCfg)

	report, err := env.uc.Run(context.Background())
	require.NoError(t, err)

	// Стадия категорий пропущена, но товары импортированы без категорий.
	assert.NotContains(t, report.Entities, "categories")
	require.Len(t, env.products.upserted, 2)
	for _, product := range env.products.upserted {
		assert.Nil(t, product.CategoryID)
	}
	assert.Positive(t, report.ErrorCount)
	assert.Equal(t, []bool{false, true}, env.schema.integrityCalls)
}

func TestImportUC_Run_MissingFilesFatal(t *testing.T) {
	importCfg := writeImportFixtures(t)
	importCfg.ProductsCSV = filepath.Join(importCfg.ErrorLogDir, "absent.csv")
	env := newImportEnv(importCfg)

	_, err := env.uc.Run(context.Background())
	require.ErrorIs(t, err, e.ErrMissingInputFiles)

	// До записи дело не дошло: схема не проверялась, триггеры не трогались.
	assert.False(t, env.schema.validated)
	assert.Empty(t, env.schema.integrityCalls)
}

func TestImportUC_Run_SchemaMismatchFatal(t *testing.T) {
	env := newImportEnv(writeImportFixtures(t))
	env.schema.validateErr = e.ErrTableNotFound

	_, err := env.uc.Run(context.Background())
	require.ErrorIs(t, err, e.ErrTableNotFound)
	assert.Empty(t, env.schema.integrityCalls)
}

func TestImportUC_Run_RepeatRunResolvesSameIDs(t *testing.T) {
	importCfg := writeImportFixtures(t)

	first := newImportEnv(importCfg)
	_, err := first.uc.Run(context.Background())
	require.NoError(t, err)

	second := newImportEnv(importCfg)
	_, err = second.uc.Run(context.Background())
	require.NoError(t, err)

	// Повторный запуск по тем же входным данным даёт те же идентификаторы:
	// записи обновятся upsert-ом, а не продублируются.
	assert.Equal(t, collectImportedIDs(first), collectImportedIDs(second))
}

func collectImportedIDs(env *importEnv) []string {
	var ids []string
	for _, category := range env.categories.upserted {
		ids = append(ids, category.ID)
	}
	for _, product := range env.products.upserted {
		ids = append(ids, product.ID)
	}
	for _, procurement := range env.procurements.upserted {
		ids = append(ids, procurement.ID)
		for _, item := range procurement.Items {
			ids = append(ids, item.ID)
		}
	}
	for _, template := range env.templates.upserted {
		ids = append(ids, template.ID)
	}
	for _, user := range env.users.upserted {
		ids = append(ids, user.ID)
	}

	return ids
}
