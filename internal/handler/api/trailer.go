package api

import (
	"net/http"

	reqdto "trailer-rental/internal/handler/dto/request"
	resdto "trailer-rental/internal/handler/dto/response"
	"trailer-rental/internal/handler/httperr"
	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type TrailerHandler struct {
	cmds commands.TrailerCommands
	q    queries.TrailerQueries
}

func NewTrailerHandler(cmds commands.TrailerCommands, q queries.TrailerQueries) *TrailerHandler {
	return &TrailerHandler{cmds: cmds, q: q}
}

// @Summary List trailers
// @Tags trailers
// @Produce json
// @Param status query string false "Status filter"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.TrailerListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/trailers [get]
func (h *TrailerHandler) List(c *gin.Context) {
	var req reqdto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", reqdto.FieldErrors(err))
		return
	}
	items, next, err := h.q.List(c.Request.Context(), queries.TrailerListFilter{Status: req.Status}, req.CursorOrNil(), req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromTrailerList(items, next)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Get trailer
// @Tags trailers
// @Produce json
// @Param id path string true "Trailer ID"
// @Success 200 {object} resdto.TrailerResponse
// @Failure 404 {object} httperr.Response
// @Router /api/trailers/{id} [get]
func (h *TrailerHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromTrailerView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Check availability
// @Description Confirmed and active reservations block a period, including ones that only touch its edges. Pending reservations never block.
// @Tags trailers
// @Produce json
// @Param id path string true "Trailer ID"
// @Param start query string true "Start (RFC 3339)"
// @Param end query string true "End (RFC 3339)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/trailers/{id}/availability [get]
func (h *TrailerHandler) Availability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "start and end must be RFC 3339 times with start before end", reqdto.FieldErrors(err))
		return
	}
	view, err := h.q.Availability(c.Request.Context(), id, req.Start.UTC(), req.End.UTC())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromAvailabilityView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Create trailer
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateTrailerRequest true "Trailer"
// @Success 201 {object} resdto.CreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/admin/trailers [post]
func (h *TrailerHandler) Create(c *gin.Context) {
	var req reqdto.CreateTrailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", reqdto.FieldErrors(err))
		return
	}
	id, err := h.cmds.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/trailers/"+id.String())
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

// @Summary Set trailer status
// @Description Operator override. Only available and maintenance can be set by hand.
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Trailer ID"
// @Param request body reqdto.SetTrailerStatusRequest true "Status"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/admin/trailers/{id}/status [put]
func (h *TrailerHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.SetTrailerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", reqdto.FieldErrors(err))
		return
	}
	if err := h.cmds.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
