package compensation

import (
	"csv-drop/internal/core/port"
	"log/slog"
)

type compensationService struct {
	storage port.ObjectStorage
	uow     port.UnitOfWork
	metrics port.Metrics
	logger  *slog.Logger
}

// NewCompensationService creates a handler for queued cleanup steps
func NewCompensationService(storage port.ObjectStorage, uow port.UnitOfWork, metrics port.Metrics, logger *slog.Logger) port.MessageService {
	return &compensationService{
		storage: storage,
		uow:     uow,
		metrics: metrics,
		logger:  logger,
	}
}
