package handlers

import (
	"net/http"

	"github.com/upb/llm-model-access/services"
	"github.com/upb/llm-model-access/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch {
	case services.IsUnavailableError(err):
		// The cause stays in the logs; callers only ever see the fixed message.
		logger.Error("service unavailable", zap.Error(err))
		if err := utils.WriteServerError(w, services.ModelsUnavailableMessage); err != nil {
			logger.Error("failed to write unavailable response", zap.Error(err))
		}

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}
