package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// InstitutionHandler handles bank and payment provider requests
type InstitutionHandler struct {
	institutionService services.InstitutionServicer
	auditService       services.AuditServicer
}

// NewInstitutionHandler creates a new InstitutionHandler
func NewInstitutionHandler(institutionService services.InstitutionServicer, auditService services.AuditServicer) *InstitutionHandler {
	return &InstitutionHandler{institutionService: institutionService, auditService: auditService}
}

// CreateInstitutionRequest represents the request payload for creating an institution
type CreateInstitutionRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	LogoURL string `json:"logo_url" binding:"omitempty,url,max=500"`
}

// CreateInstitution handles the creation of an institution
// @Summary     Create an institution
// @Tags        institutions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInstitutionRequest true "Institution details"
// @Success     201 {object} models.Institution "Institution created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutions [post]
func (h *InstitutionHandler) CreateInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	institution, err := h.institutionService.CreateInstitution(userID, req.Name, req.LogoURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INSTITUTION", "institution", institution.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"institution": institution})
}

// GetUserInstitutions lists the user's institutions
// @Summary     Get institutions
// @Tags        institutions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Institution "Institutions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutions [get]
func (h *InstitutionHandler) GetUserInstitutions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	institutions, err := h.institutionService.GetUserInstitutions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"institutions": institutions})
}

// DeleteInstitution deletes an institution no income or expense references
// @Summary     Delete institution
// @Tags        institutions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Institution ID"
// @Success     200 {object} MessageResponse "Institution deleted"
// @Failure     400 {object} ErrorResponse "Invalid institution ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Institution not found"
// @Failure     409 {object} ErrorResponse "Institution in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutions/{id} [delete]
func (h *InstitutionHandler) DeleteInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	institutionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.institutionService.DeleteInstitution(userID, institutionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INSTITUTION", "institution", institutionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Institution deleted successfully"})
}
