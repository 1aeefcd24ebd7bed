package usecase

import "context"

// RecsInfra — клиент внешнего рекомендательного сервиса.
type RecsInfra interface {
	Recommend(ctx context.Context, req *RecommendReq) ([]ProductInfo, error)
}

// EventProducer публикует событие о завершённом запуске импорта.
type EventProducer interface {
	PublishImportReport(ctx context.Context, report *ImportReport) error
}

// ReportStore сохраняет артефакт журнала ошибок импорта.
type ReportStore interface {
	SaveErrorReport(ctx context.Context, name string, data []byte) (string, error)
}
