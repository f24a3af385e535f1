package record

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/handler"
	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/service/record"
)

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/records")
	{
		records.POST("", h.UploadRecord)
		records.GET("/:id", h.GetRecord)
	}

	r.GET("/patients/:id/records", h.PatientRecords)
}

func (h *Handler) UploadRecord(c *gin.Context) {
	var req model.UploadRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patientID, _ := uuid.Parse(req.PatientID)
	uploadedBy, _ := uuid.Parse(req.UploadedBy)

	rec, err := h.service.UploadRecord(
		c.Request.Context(),
		patientID, uploadedBy,
		model.RecordType(req.Type),
		req.Title, req.Description,
		req.FileData, req.FileName, req.FileType,
	)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

// GetRecord returns a record when the viewer is authorized to see it.
// An unauthorized viewer gets a 403, not an error payload with detail;
// denial is a normal outcome here.
func (h *Handler) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record ID"))
		return
	}
	viewerID, err := uuid.Parse(c.Query("viewer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid viewer_id"))
		return
	}

	rec, err := h.service.RecordByID(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	ok, err := h.service.CanView(c.Request.Context(), viewerID, rec)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("viewer has no consent for this record"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

// PatientRecords lists a patient's records filtered down to what the
// viewer may see.
func (h *Handler) PatientRecords(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	viewerID, err := uuid.Parse(c.Query("viewer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid viewer_id"))
		return
	}

	records, err := h.service.PatientRecords(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	visible := []*model.MedicalRecord{}
	for _, rec := range records {
		ok, err := h.service.CanView(c.Request.Context(), viewerID, rec)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if ok {
			visible = append(visible, rec)
		}
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(visible))
}
