package api

import (
	"net/http"

	reqdto "trailer-rental/internal/handler/dto/request"
	resdto "trailer-rental/internal/handler/dto/response"
	"trailer-rental/internal/handler/httperr"
	"trailer-rental/internal/handler/middleware"
	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	cmds commands.ProfileCommands
	q    queries.ProfileQueries
}

func NewProfileHandler(cmds commands.ProfileCommands, q queries.ProfileQueries) *ProfileHandler {
	return &ProfileHandler{cmds: cmds, q: q}
}

// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ProfileResponse
// @Failure 404 {object} httperr.Response
// @Router /api/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	view, err := h.q.GetProfile(c.Request.Context(), userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromProfileView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Update own profile
// @Description Stores the renter profile and registers the renter with the payment processor on first save.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpsertProfileRequest true "Profile"
// @Success 200 {object} resdto.ProfileResponse
// @Failure 400 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", reqdto.FieldErrors(err))
		return
	}
	if err := h.cmds.Upsert(c.Request.Context(), userID, req.ToInput()); err != nil {
		httperr.Abort(c, err)
		return
	}
	h.Me(c)
}
