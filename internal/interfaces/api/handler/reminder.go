package handler

import (
	"errors"
	"net/http"

	"memento/internal/application/dto"
	"memento/internal/application/service"
	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body returned for failed API requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReminderHandler serves the JSON reminder API.
type ReminderHandler struct {
	userService     service.UserService
	reminderService service.ReminderService
	log             logger.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(userService service.UserService, reminderService service.ReminderService, log logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		userService:     userService,
		reminderService: reminderService,
		log:             log.WithField("handler", "api"),
	}
}

// SetTimezone handles PUT /users/:user_id/timezone.
func (h *ReminderHandler) SetTimezone(c echo.Context) error {
	var req dto.TimezoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	userID := c.Param("user_id")
	tz, err := h.userService.SetTimezone(c.Request().Context(), userID, req.Timezone)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.TimezoneResponse{UserID: userID, Timezone: tz})
}

// GetTimezone handles GET /users/:user_id/timezone.
func (h *ReminderHandler) GetTimezone(c echo.Context) error {
	userID := c.Param("user_id")
	tz, err := h.userService.GetTimezone(c.Request().Context(), userID)
	if errors.Is(err, appErrors.ErrTimezoneNotSet) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.TimezoneResponse{UserID: userID, Timezone: tz})
}

// CreateUserReminder handles POST /users/:user_id/reminders.
func (h *ReminderHandler) CreateUserReminder(c echo.Context) error {
	var req dto.CreateUserReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	req.UserID = c.Param("user_id")
	resp, err := h.reminderService.CreateUserReminder(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListUserReminders handles GET /users/:user_id/reminders.
func (h *ReminderHandler) ListUserReminders(c echo.Context) error {
	list, err := h.reminderService.ListUserReminders(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// DeleteUserReminder handles DELETE /users/:user_id/reminders/:ref.
func (h *ReminderHandler) DeleteUserReminder(c echo.Context) error {
	owner := entity.UserOwner(c.Param("user_id"))
	if _, err := h.reminderService.DeleteReminder(c.Request().Context(), owner, c.Param("ref")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearUserReminders handles DELETE /users/:user_id/reminders.
func (h *ReminderHandler) ClearUserReminders(c echo.Context) error {
	if _, err := h.reminderService.ClearUserReminders(c.Request().Context(), c.Param("user_id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRoleReminder handles POST /roles/:role_id/channels/:channel_id/reminders.
func (h *ReminderHandler) CreateRoleReminder(c echo.Context) error {
	var req dto.CreateRoleReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	req.RoleID = c.Param("role_id")
	req.ChannelID = c.Param("channel_id")
	resp, err := h.reminderService.CreateRoleReminder(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListRoleReminders handles GET /roles/:role_id/reminders.
func (h *ReminderHandler) ListRoleReminders(c echo.Context) error {
	list, err := h.reminderService.ListRoleReminders(c.Request().Context(), c.Param("role_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListChannelReminders handles GET /channels/:channel_id/reminders.
func (h *ReminderHandler) ListChannelReminders(c echo.Context) error {
	list, err := h.reminderService.ListChannelReminders(c.Request().Context(), c.Param("channel_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// DeleteRoleReminder handles DELETE /roles/:role_id/channels/:channel_id/reminders/:ref.
func (h *ReminderHandler) DeleteRoleReminder(c echo.Context) error {
	owner := entity.RoleOwner(c.Param("role_id"), c.Param("channel_id"))
	if _, err := h.reminderService.DeleteReminder(c.Request().Context(), owner, c.Param("ref")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReminderHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, appErrors.ErrReminderNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: appErrors.UserMessage(err)})
	case appErrors.IsUserError(err):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErrors.UserMessage(err)})
	}
	h.log.Error("Request failed", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: appErrors.ErrInternalServer.Error()})
}
