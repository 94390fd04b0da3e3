package chathandler

import (
	"net/http"

	"chatrelay/internal/services/chat"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc chat.IChatService
}

func New(svc chat.IChatService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/chat/:roomID", h.history)
	r.GET("/healthz", h.healthz)
}

// @Summary		Get room history
// @Description	Returns all non-expired messages of a room, ascending by timestamp.
// @Tags			Chat
// @Param			roomID	path		string	true	"Room ID"	default(R1)
// @Success		200		{array}		chat.Message
// @Failure		500		{object}	ErrorResponse
// @Router			/chat/{roomID} [get]
func (h *Handler) history(c *gin.Context) {
	msgs, err := h.svc.History(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// @Summary		Liveness probe
// @Tags			Ops
// @Success		200	{object}	HealthResponse
// @Router			/healthz [get]
func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
