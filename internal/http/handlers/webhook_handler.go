package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadpilot/go-leadgen-backend/internal/http/middleware"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
	"github.com/leadpilot/go-leadgen-backend/internal/webhook"
)

// maxWebhookBody caps the webhook payload size we are willing to buffer.
const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandler receives Facebook webhook traffic: the one-time GET
// subscription handshake and the POST deliveries carrying leadgen events.
type WebhookHandler struct {
	Pipeline    *services.LeadPipeline
	VerifyToken string
	AppSecret   string
}

// NewWebhookHandler wires the handler to the lead pipeline and the
// credentials used to authenticate Facebook's requests.
func NewWebhookHandler(p *services.LeadPipeline, verifyToken, appSecret string) *WebhookHandler {
	return &WebhookHandler{Pipeline: p, VerifyToken: verifyToken, AppSecret: appSecret}
}

// Verify handles the GET subscription handshake. Facebook sends
// hub.mode=subscribe with hub.verify_token and expects the raw
// hub.challenge echoed back on success.
//
// @Summary      Webhook verification handshake
// @Tags         webhook
// @Produce      plain
// @Param        hub.mode          query string true "must be 'subscribe'"
// @Param        hub.verify_token  query string true "configured verify token"
// @Param        hub.challenge     query string true "opaque challenge to echo"
// @Success      200 {string} string "challenge"
// @Failure      403 {object} ErrorResponse
// @Router       /webhook [get]
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.VerifyToken {
		middleware.LoggerFrom(c).Info().Msg("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	fail(c, http.StatusForbidden, ErrCodeForbidden, "verification failed")
}

// Receive handles POST webhook deliveries. The raw body is authenticated
// against X-Hub-Signature-256 before parsing; a bad signature is rejected
// with 403 and never processed. Accepted payloads always get 200 so
// Facebook does not retry events whose processing failed downstream —
// failures are recorded per lead instead.
//
// @Summary      Receive leadgen webhook events
// @Tags         webhook
// @Accept       json
// @Produce      plain
// @Success      200 {string} string "OK"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil || len(body) > maxWebhookBody {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}

	sig := c.GetHeader("X-Hub-Signature-256")
	if !webhook.VerifySignature(body, sig, h.AppSecret) {
		lg.Warn().Msg("webhook signature verification failed")
		fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid signature")
		return
	}

	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON payload")
		return
	}

	ctx := c.Request.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			ev := services.LeadgenEvent{
				LeadgenID: change.Value.LeadgenID,
				AdID:      change.Value.AdID,
				FormID:    change.Value.FormID,
				PageID:    change.Value.PageID,
			}
			if _, err := h.Pipeline.Process(ctx, ev); err != nil {
				// Processing errors are terminal per lead; never bounce the
				// delivery, or Facebook would redeliver the whole batch.
				lg.Error().Err(err).
					Str("leadgen_id", ev.LeadgenID).
					Str("ad_id", ev.AdID).
					Msg("leadgen event processing failed")
			}
		}
	}

	c.String(http.StatusOK, "OK")
}
