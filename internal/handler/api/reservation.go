package api

import (
	"context"
	"mime/multipart"
	"net/http"

	reqdto "trailer-rental/internal/handler/dto/request"
	resdto "trailer-rental/internal/handler/dto/response"
	"trailer-rental/internal/handler/httperr"
	"trailer-rental/internal/handler/middleware"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	maxPhotoSize         = 10 << 20
	maxPhotosPerRequest  = 10
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary Create reservation
// @Description Books a trailer and places the card hold. Replays with the same Idempotency-Key return the original reservation.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key (UUID)"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.CreateReservationResponse
// @Success 200 {object} resdto.CreateReservationResponse "Replayed request"
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	key, err := uuid.Parse(c.GetHeader(idempotencyKeyHeader))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Idempotency-Key header must be a UUID", nil)
		return
	}
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", reqdto.FieldErrors(err))
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), userID, key, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.Header("Location", "/api/reservations/"+result.ReservationID.String())
	c.JSON(status, resdto.FromCreateReservationResult(result))
}

// @Summary Get reservation
// @Description Returns a reservation to its owner or an admin. The PIN is only shown to the owner.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromReservationView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary List own reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", reqdto.FieldErrors(err))
		return
	}
	items, next, err := h.q.ListByUser(c.Request.Context(), userID,
		queries.ReservationListFilter{Status: req.Status}, req.CursorOrNil(), req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromReservationList(items, next)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Cancel reservation
// @Description Cancels a pending or confirmed reservation and releases the card hold.
// @Tags reservations
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cmds.Cancel)
}

// @Summary Check in
// @Description Starts the rental. Allowed from the start time until the end time plus the grace period.
// @Tags reservations
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.cmds.CheckIn)
}

// @Summary Check out
// @Description Ends the rental, stores the return photos, captures up to the held amount, and invoices the rest.
// @Tags reservations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param photos formData file false "Return photos"
// @Success 200 {object} resdto.CheckOutResponse
// @Failure 402 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["photos"]
	}
	photos, closeAll, err := openPhotos(files)
	defer closeAll()
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	result, err := h.cmds.CheckOut(c.Request.Context(), userID, id, photos)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromCheckOutResult(result)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Upload return photo
// @Tags reservations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param photo formData file true "Photo"
// @Success 201 {object} resdto.ReturnPhotoResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/reservations/{id}/photos [post]
func (h *ReservationHandler) AddReturnPhoto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "photo file is required", nil)
		return
	}
	photos, closeAll, err := openPhotos([]*multipart.FileHeader{file})
	defer closeAll()
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	key, err := h.cmds.AddReturnPhoto(c.Request.Context(), userID, id, photos[0])
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.ReturnPhotoResponse{Key: key})
}

// @Summary Cancel reservation as operator
// @Description Cancels any pending, confirmed, or active reservation and releases its hold.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/admin/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelByOperator(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.cmds.CancelByOperator(c.Request.Context(), id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) transition(c *gin.Context, fn func(ctx context.Context, userID, reservationID uuid.UUID) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	if err := fn(c.Request.Context(), userID, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

var errInvalidPhoto = errs.Mark(errs.New("photos must be JPEG, PNG, or WebP images up to 10 MB"), errs.ErrValidation)

// openPhotos opens the uploaded files. The returned closer is always safe to
// call.
func openPhotos(files []*multipart.FileHeader) ([]commands.ReturnPhoto, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if len(files) > maxPhotosPerRequest {
		return nil, closeAll, errs.Mark(errs.Newf("at most %d photos per request", maxPhotosPerRequest), errs.ErrValidation)
	}

	photos := make([]commands.ReturnPhoto, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !allowedPhotoTypes[contentType] || fh.Size <= 0 || fh.Size > maxPhotoSize {
			return nil, closeAll, errInvalidPhoto
		}
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, errs.Mark(errs.Wrap(err, "open uploaded photo"), errs.ErrValidation)
		}
		opened = append(opened, f)
		photos = append(photos, commands.ReturnPhoto{ContentType: contentType, Size: fh.Size, Body: f})
	}
	return photos, closeAll, nil
}
