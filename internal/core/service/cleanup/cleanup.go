package cleanup

import (
	"csv-drop/internal/core/port"
	"log/slog"
)

type cleanupService struct {
	uow     port.UnitOfWork
	uploads port.UploadSession
	logger  *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(uow port.UnitOfWork, uploads port.UploadSession, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		uow:     uow,
		uploads: uploads,
		logger:  logger,
	}
}
