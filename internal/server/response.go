package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/store"
	"github.com/abhisek/mathdaily/internal/tutor"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: msg})
}

// fail maps err onto a status and a message the client can show.
func (s *Server) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	resp := ErrorResponse{Detail: msg}
	if kind := llm.ErrorKind(err); kind != "other" {
		resp.Kind = kind
	}
	c.AbortWithStatusJSON(status, resp)
}

func statusFor(err error) (int, string) {
	var (
		quota *llm.ErrQuotaExceeded
		auth  *llm.ErrAuth
		rl    *llm.ErrRateLimit
	)
	switch {
	case errors.As(err, &quota):
		return http.StatusTooManyRequests, "AI 사용 한도를 초과했습니다."
	case errors.As(err, &rl):
		return http.StatusTooManyRequests, "AI 요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."
	case errors.As(err, &auth):
		return http.StatusUnauthorized, "AI API 키가 올바르지 않습니다."
	case errors.Is(err, worksheet.ErrUnitNotFound):
		return http.StatusNotFound, "Unit not found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, worksheet.ErrInvalidRequest),
		errors.Is(err, worksheet.ErrInvalidAccuracy),
		errors.Is(err, tutor.ErrInvalidConversation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, worksheet.ErrGenerationFailed):
		return http.StatusInternalServerError, "문제 생성에 실패했습니다."
	case errors.Is(err, diagnosis.ErrAnalysisFailed):
		return http.StatusBadGateway, "오답 분석에 실패했습니다."
	}
	return http.StatusInternalServerError, "Internal server error"
}
