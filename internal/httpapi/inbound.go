package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/receptionist"
	"ai-receptionist/internal/telephony"
	"ai-receptionist/pkg/logger"
)

// CallProcessor is satisfied by *receptionist.Service.
type CallProcessor interface {
	Process(ctx context.Context, ev calls.CallEvent) (receptionist.Result, error)
}

// InboundHandler is the telephony provider's call webhook.
type InboundHandler struct {
	Service CallProcessor
	// Verifier checks provider signatures. Nil disables verification.
	Verifier *telephony.SignatureVerifier
}

type inboundResponse struct {
	Success   bool                   `json:"success"`
	JobID     string                 `json:"jobId"`
	SMSStatus receptionist.SMSStatus `json:"smsStatus"`
}

// Handle must be mounted for every method; only POST is processed.
func (h InboundHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		abort(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
		return
	}
	log := logger.FromGin(c)

	body, err := telephony.ReadWebhookBody(c.Request)
	if err != nil {
		abort(c, http.StatusBadRequest, CodeInvalidPayload, "unreadable body")
		return
	}
	hook, err := telephony.ParseInboundCall(c.GetHeader("Content-Type"), body)
	if err != nil {
		log.Info("rejected webhook payload", "error", err)
		abort(c, http.StatusBadRequest, CodeInvalidPayload, "malformed payload")
		return
	}

	if h.Verifier != nil {
		if err := h.Verifier.Verify(c.Request, hook); err != nil {
			log.Warn("webhook signature rejected", "error", err)
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid signature")
			return
		}
	}

	ev := hook.Event
	if err := ev.Validate(); err != nil {
		abort(c, http.StatusBadRequest, CodeInvalidPayload, err.Error())
		return
	}

	ctx := logger.With(c.Request.Context(), log.With("call_sid", ev.CallSid))
	res, err := h.Service.Process(ctx, ev)
	if err != nil {
		status, code := classify(err)
		if status >= 500 {
			log.Error("call processing failed", "error", err)
		}
		abort(c, status, code, err.Error())
		return
	}

	c.JSON(http.StatusOK, inboundResponse{Success: true, JobID: res.JobID, SMSStatus: res.SMSStatus})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, receptionist.ErrInvalidEvent):
		return http.StatusBadRequest, CodeInvalidPayload
	case errors.Is(err, receptionist.ErrContractorNotFound):
		return http.StatusNotFound, CodeContractorNotFound
	case errors.Is(err, receptionist.ErrDirectoryUnavailable):
		return http.StatusInternalServerError, CodeDirectoryUnavailable
	case errors.Is(err, receptionist.ErrStoreUnavailable):
		return http.StatusInternalServerError, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
