package notification

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/fkhayef/notifications/pkg/response"
)

// notFoundMessage is the fixed error text for unknown notification IDs
const notFoundMessage = "Notification not found"

// Handler handles HTTP requests for notification operations
type Handler struct {
	service  *Service
	decoder  *schema.Decoder
	validate *validator.Validate
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		service:  service,
		decoder:  decoder,
		validate: validator.New(),
	}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/user/{userId}", h.ListByUser)
	r.Get("/user/{userId}/unread", h.ListUnread)
	r.Get("/user/{userId}/unread/count", h.GetUnreadCount)
	r.Patch("/{id}/read", h.MarkAsRead)
	r.Patch("/user/{userId}/read-all", h.MarkAllAsRead)
	r.Delete("/{id}", h.Delete)
	r.Delete("/user/{userId}", h.DeleteAllForUser)

	return r
}

// Create handles POST /notifications
// @Summary      Create a notification
// @Description  Create an unread notification for a user
// @Tags         notifications
// @Produce      json
// @Param        userId query int true "User ID"
// @Param        message query string true "Message"
// @Param        type query string true "Notification type"
// @Success      200 {object} response.APIResponse{data=NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid request parameters")
		return
	}

	var req CreateNotificationRequest
	if err := h.decoder.Decode(&req, r.Form); err != nil {
		response.BadRequest(w, "Invalid request parameters")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, "userId is required")
		return
	}

	n, err := h.service.CreateNotification(r.Context(), *req.UserID, req.Message, req.Type)
	if err != nil {
		log.Printf("Failed to create notification: %v", err)
		response.InternalError(w, "Failed to create notification")
		return
	}

	response.JSON(w, http.StatusOK, n.ToResponse())
}

// ListByUser handles GET /notifications/user/{userId}
// @Summary      List a user's notifications
// @Description  Get every notification for a user, newest first
// @Tags         notifications
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/user/{userId} [get]
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	notifications, err := h.service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list notifications: %v", err)
		response.InternalError(w, "Failed to list notifications")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(notifications))
}

// ListUnread handles GET /notifications/user/{userId}/unread
// @Summary      List a user's unread notifications
// @Description  Get the unread notifications for a user, newest first
// @Tags         notifications
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/user/{userId}/unread [get]
func (h *Handler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	notifications, err := h.service.GetUnreadNotifications(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list unread notifications: %v", err)
		response.InternalError(w, "Failed to list unread notifications")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(notifications))
}

// GetUnreadCount handles GET /notifications/user/{userId}/unread/count
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse{data=int}
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/user/{userId}/unread/count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	count, err := h.service.GetUnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to count unread notifications: %v", err)
		response.InternalError(w, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, count)
}

// MarkAsRead handles PATCH /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.APIResponse{data=NotificationResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, notFoundMessage)
			return
		}
		log.Printf("Failed to mark notification as read: %v", err)
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, n.ToResponse(), "Notification marked as read")
}

// MarkAllAsRead handles PATCH /notifications/user/{userId}/read-all
// @Summary      Mark all of a user's notifications as read
// @Tags         notifications
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/user/{userId}/read-all [patch]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		log.Printf("Failed to mark all notifications as read: %v", err)
		response.InternalError(w, "Failed to mark all notifications as read")
		return
	}

	response.Message(w, http.StatusOK, "All notifications marked as read")
}

// Delete handles DELETE /notifications/{id}
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNotification(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, notFoundMessage)
			return
		}
		log.Printf("Failed to delete notification: %v", err)
		response.InternalError(w, "Failed to delete notification")
		return
	}

	response.Message(w, http.StatusOK, "Notification deleted successfully")
}

// DeleteAllForUser handles DELETE /notifications/user/{userId}
// @Summary      Delete all of a user's notifications
// @Tags         notifications
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /notifications/user/{userId} [delete]
func (h *Handler) DeleteAllForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAllUserNotifications(r.Context(), userID); err != nil {
		log.Printf("Failed to delete user notifications: %v", err)
		response.InternalError(w, "Failed to delete notifications")
		return
	}

	response.Message(w, http.StatusOK, "All notifications deleted successfully")
}

// userIDParam parses the {userId} path segment, writing a 400 on failure
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return 0, false
	}
	return userID, true
}
