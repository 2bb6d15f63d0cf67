package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formacode/course-service/internal/auth"
	"github.com/formacode/course-service/internal/services"
)

type GameHandler struct {
	BaseHandler
	playService services.PlayService
}

func NewGameHandler(playService services.PlayService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		BaseHandler: NewBaseHandler(logger),
		playService: playService,
	}
}

// CreateItemSession opens a session for a game item.
func (h *GameHandler) CreateItemSession(c *gin.Context) {
	itemID := h.parseIDParam(c, "id")
	if itemID == 0 {
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	view, err := h.playService.CreateSessionForItem(c.Request.Context(), itemID, principal.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// CreateChapterSession opens a session for a game chapter.
func (h *GameHandler) CreateChapterSession(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	view, err := h.playService.CreateSessionForChapter(c.Request.Context(), chapterID, principal.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// StartSession starts or restarts a session's clock.
func (h *GameHandler) StartSession(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)

	view, err := h.playService.StartSession(c.Request.Context(), c.Param("session_id"), principal.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ApplyAction applies one game input to a session.
func (h *GameHandler) ApplyAction(c *gin.Context) {
	var action services.PlayAction
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	view, err := h.playService.ApplyAction(c.Request.Context(), c.Param("session_id"), principal.ID, action)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSession returns the current session snapshot.
func (h *GameHandler) GetSession(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)

	view, err := h.playService.GetSession(c.Request.Context(), c.Param("session_id"), principal.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
