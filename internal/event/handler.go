package event

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/notifications/pkg/middleware"
	"github.com/fkhayef/notifications/pkg/response"
)

// maxEventBytes caps the size of an ingested event body
const maxEventBytes = 64 << 10

// Handler accepts notification events over HTTP, for producers that do not
// publish to Redis.
type Handler struct {
	sender Sender
	secret string
}

// NewHandler creates a new event handler. When secret is non-empty callers
// must present a service token signed with it.
func NewHandler(sender Sender, secret string) *Handler {
	return &Handler{sender: sender, secret: secret}
}

// Routes returns the router for event endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ServiceAuth(h.secret))

	r.Post("/", h.Ingest)

	return r
}

// Ingest handles POST /internal/events
// @Summary      Ingest a notification event
// @Description  Create a notification from a domain event published by another subsystem
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body NotificationEvent true "Notification event"
// @Success      202 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /internal/events [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	evt, err := Decode(payload)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.sender.SendNotification(r.Context(), evt); err != nil {
		log.Printf("Failed to ingest event for user %d: %v", evt.UserID, err)
		response.InternalError(w, "Failed to process event")
		return
	}

	response.Message(w, http.StatusAccepted, "Event accepted")
}
