package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
)

type DashboardHandler struct {
	Pages  *application.PageModel
	Window time.Duration
	Logger *logrus.Logger
}

func NewDashboardHandler(pages *application.PageModel, window time.Duration, logger *logrus.Logger) *DashboardHandler {
	if window <= 0 {
		window = time.Minute
	}
	return &DashboardHandler{Pages: pages, Window: window, Logger: logger}
}

// ViewingVisitors reports how many distinct visitors hit a page within the
// window. The body keeps the shape dashboard widgets poll for.
func (h *DashboardHandler) ViewingVisitors(c *gin.Context) {
	n, err := h.Pages.CountViewingVisitors(c.Request.Context(), h.Window)
	if err != nil {
		h.Logger.WithError(err).Error("count viewing visitors failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": 1, "viewingVisitors": n})
}
