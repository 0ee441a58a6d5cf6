package api

import (
	"net/http"

	"trailer-rental/internal/handler/httperr"
	"trailer-rental/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// JobsHandler exposes the scheduled sweeps to an external scheduler.
type JobsHandler struct {
	cmds commands.SweepCommands
}

func NewJobsHandler(cmds commands.SweepCommands) *JobsHandler {
	return &JobsHandler{cmds: cmds}
}

// @Summary Run auto-extension
// @Tags jobs
// @Produce json
// @Param X-Jobs-Token header string true "Jobs token"
// @Success 200 {object} commands.AutoExtendReport
// @Failure 401 {object} httperr.Response
// @Router /internal/jobs/auto-extend [post]
func (h *JobsHandler) AutoExtend(c *gin.Context) {
	report, err := h.cmds.AutoExtend(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	if report.Failures == nil {
		report.Failures = []commands.ItemFailure{}
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Run PIN expiry
// @Tags jobs
// @Produce json
// @Param X-Jobs-Token header string true "Jobs token"
// @Success 200 {object} commands.ExpiryReport
// @Failure 401 {object} httperr.Response
// @Router /internal/jobs/expire-pins [post]
func (h *JobsHandler) ExpirePins(c *gin.Context) {
	report, err := h.cmds.ExpirePins(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
