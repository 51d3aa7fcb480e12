package handlers

import (
	"context"
	"net/http"

	"github.com/nikhilbhutani/mediainsight/internal/llm"
)

type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ModelsHandler reports the transcription engine's models and the text
// providers the gateway can route to.
type ModelsHandler struct {
	engine  ModelLister
	gateway llm.Gateway
}

func NewModelsHandler(engine ModelLister, gw llm.Gateway) *ModelsHandler {
	return &ModelsHandler{engine: engine, gateway: gw}
}

func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	engineModels, err := h.engine.ListModels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var text []llm.ModelInfo
	if h.gateway != nil {
		text = h.gateway.ListModels()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine": engineModels,
		"text":   text,
	})
}
