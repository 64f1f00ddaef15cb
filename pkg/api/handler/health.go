package handler

import (
	"net/http"

	"github.com/medscribe/medscribe/pkg/api/response"
)

type health struct {
	sttModel string
	writer   response.JSONResponseWriter
}

func NewHealth(sttModel string) *health {
	return &health{sttModel: sttModel}
}

func (h *health) Check(w http.ResponseWriter, r *http.Request) {
	h.writer.WriteSuccessResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.sttModel,
	})
}
