package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// ExpenseTypeHandler handles expense type requests
type ExpenseTypeHandler struct {
	expenseTypeService services.ExpenseTypeServicer
	auditService       services.AuditServicer
}

// NewExpenseTypeHandler creates a new ExpenseTypeHandler
func NewExpenseTypeHandler(expenseTypeService services.ExpenseTypeServicer, auditService services.AuditServicer) *ExpenseTypeHandler {
	return &ExpenseTypeHandler{expenseTypeService: expenseTypeService, auditService: auditService}
}

// CreateExpenseTypeRequest represents the request payload for creating an expense type
type CreateExpenseTypeRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	CategoryID *string `json:"category_id" binding:"omitempty,uuid"`
}

// UpdateExpenseTypeRequest represents the request payload for updating an
// expense type. Omit category_id to keep the category, send "" to clear it.
type UpdateExpenseTypeRequest struct {
	Name       string  `json:"name" binding:"omitempty,min=1,max=100"`
	CategoryID *string `json:"category_id" binding:"omitempty,uuid|len=0"`
}

// CreateExpenseType handles the creation of an expense type
// @Summary     Create an expense type
// @Description Create an expense type, optionally filed under an expense category
// @Tags        expense-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseTypeRequest true "Expense type details"
// @Success     201 {object} models.ExpenseType "Expense type created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expense-types [post]
func (h *ExpenseTypeHandler) CreateExpenseType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expenseType, err := h.expenseTypeService.CreateExpenseType(userID, req.Name, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE_TYPE", "expense_type", expenseType.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "category_id": req.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"expense_type": expenseType})
}

// GetUserExpenseTypes lists the user's expense types
// @Summary     Get expense types
// @Tags        expense-types
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.ExpenseType "Expense types"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expense-types [get]
func (h *ExpenseTypeHandler) GetUserExpenseTypes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseTypes, err := h.expenseTypeService.GetUserExpenseTypes(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense_types": expenseTypes})
}

// GetExpenseType returns one expense type
// @Summary     Get expense type by ID
// @Tags        expense-types
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense type ID"
// @Success     200 {object} models.ExpenseType "Expense type"
// @Failure     400 {object} ErrorResponse "Invalid expense type ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense type not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expense-types/{id} [get]
func (h *ExpenseTypeHandler) GetExpenseType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseType, err := h.expenseTypeService.GetExpenseTypeByID(userID, expenseTypeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense_type": expenseType})
}

// UpdateExpenseType renames an expense type or moves it to another category
// @Summary     Update expense type
// @Tags        expense-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Expense type ID"
// @Param       request body UpdateExpenseTypeRequest true "Updated fields"
// @Success     200 {object} models.ExpenseType "Updated expense type"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense type or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expense-types/{id} [put]
func (h *ExpenseTypeHandler) UpdateExpenseType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expenseType, err := h.expenseTypeService.UpdateExpenseType(userID, expenseTypeID, req.Name, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE_TYPE", "expense_type", expenseTypeID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "category_id": req.CategoryID})

	c.JSON(http.StatusOK, gin.H{"expense_type": expenseType})
}

// DeleteExpenseType deletes an expense type no expense uses
// @Summary     Delete expense type
// @Tags        expense-types
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense type ID"
// @Success     200 {object} MessageResponse "Expense type deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense type ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense type not found"
// @Failure     409 {object} ErrorResponse "Expense type in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expense-types/{id} [delete]
func (h *ExpenseTypeHandler) DeleteExpenseType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseTypeService.DeleteExpenseType(userID, expenseTypeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE_TYPE", "expense_type", expenseTypeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense type deleted successfully"})
}
