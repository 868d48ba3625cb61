package handlers

import (
	"net/http"

	"github.com/upb/llm-model-access/app"
	"github.com/upb/llm-model-access/middleware"
	"github.com/upb/llm-model-access/services/listing"
	"github.com/upb/llm-model-access/utils"
	"go.uber.org/zap"
)

// ModelsResponse is the body of a successful model listing
type ModelsResponse struct {
	Models []listing.AnnotatedModel `json:"models"`
}

// ListModelsHandler handles GET /api/models.
// The session comes from the session middleware; its absence means a guest.
func ListModelsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := middleware.GetSessionFromContext(ctx)

		models, err := deps.Listing.List(ctx, session)
		if err != nil {
			deps.Logger.Error("failed to list models",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if models == nil {
			models = []listing.AnnotatedModel{}
		}

		if err := utils.WriteOK(w, ModelsResponse{Models: models}); err != nil {
			deps.Logger.Error("failed to write models response", zap.Error(err))
		}
	}
}
