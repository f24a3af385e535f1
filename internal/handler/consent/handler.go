package consent

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/handler"
	"github.com/medchain/medchain-api/internal/middleware"
	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/service/consent"
	"github.com/medchain/medchain-api/pkg/auth"
)

type Handler struct {
	service   *consent.Service
	adminOnly gin.HandlerFunc
}

func NewHandler(service *consent.Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{
		service:   service,
		adminOnly: adminOnly,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consents := r.Group("/consents")
	{
		consents.POST("", h.GrantConsent)
		consents.POST("/:id/revoke", h.RevokeConsent)
		consents.GET("/check", h.CheckConsent)
	}

	r.GET("/patients/:id/consents", h.PatientConsents)
	r.GET("/grantees/:id/consents", h.GranteeConsents)

	emergency := r.Group("/emergency-requests")
	{
		emergency.POST("", h.RequestEmergencyAccess)
		emergency.GET("/pending", h.adminOnly, h.PendingRequests)
		emergency.POST("/:id/approve", h.adminOnly, h.ApproveRequest)
		emergency.POST("/:id/reject", h.adminOnly, h.RejectRequest)
	}
}

func (h *Handler) GrantConsent(c *gin.Context) {
	var req model.GrantConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patientID, _ := uuid.Parse(req.PatientID)
	granteeID, _ := uuid.Parse(req.GranteeID)
	scope := make([]model.RecordType, len(req.Scope))
	for i, s := range req.Scope {
		scope[i] = model.RecordType(s)
	}

	token, err := h.service.GrantConsent(
		c.Request.Context(),
		patientID, granteeID,
		req.GranteeName, model.Role(req.GranteeRole),
		scope, req.ExpiryDays,
	)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(token))
}

type revokeRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
}

func (h *Handler) RevokeConsent(c *gin.Context) {
	consentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consent ID"))
		return
	}

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	patientID, _ := uuid.Parse(req.PatientID)

	if err := h.service.RevokeConsent(c.Request.Context(), consentID, patientID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) CheckConsent(c *gin.Context) {
	patientID, err := uuid.Parse(c.Query("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
		return
	}
	granteeID, err := uuid.Parse(c.Query("grantee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid grantee_id"))
		return
	}

	recordType := model.RecordType(c.Query("record_type"))
	if recordType != "" && !recordType.Valid() {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record_type"))
		return
	}

	ok, err := h.service.HasConsent(c.Request.Context(), patientID, granteeID, recordType)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"has_consent": ok}))
}

func (h *Handler) PatientConsents(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	consents, err := h.service.PatientConsents(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(consents))
}

func (h *Handler) GranteeConsents(c *gin.Context) {
	granteeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid grantee ID"))
		return
	}

	consents, err := h.service.GranteeConsents(c.Request.Context(), granteeID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(consents))
}

func (h *Handler) RequestEmergencyAccess(c *gin.Context) {
	var req model.EmergencyAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctorID, _ := uuid.Parse(req.DoctorID)
	patientID, _ := uuid.Parse(req.PatientID)

	request, err := h.service.RequestEmergencyAccess(
		c.Request.Context(),
		doctorID, req.DoctorName,
		patientID, req.PatientName,
		req.Reason,
	)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(request))
}

func (h *Handler) PendingRequests(c *gin.Context) {
	requests, err := h.service.PendingEmergencyRequests(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func (h *Handler) ApproveRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request ID"))
		return
	}

	token, err := h.service.ApproveEmergencyAccess(c.Request.Context(), requestID, adminClaims(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(token))
}

func (h *Handler) RejectRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request ID"))
		return
	}

	if err := h.service.RejectEmergencyAccess(c.Request.Context(), requestID, adminClaims(c)); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// adminClaims returns the reviewing admin's id from the validated
// session token.
func adminClaims(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(middleware.ContextClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims.UserID
		}
	}
	return uuid.Nil
}
