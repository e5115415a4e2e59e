package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest represents the payload for creating or replacing an expense.
// A paid expense without payment_date is paid today.
type ExpenseRequest struct {
	Description   string          `json:"description" binding:"required,min=1,max=255"`
	PaymentType   string          `json:"payment_type" binding:"max=50"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" binding:"gte=0"`
	ExpenseDate   string          `json:"expense_date" binding:"required,datetime=2006-01-02"`
	PaymentDate   string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	IsPaid        bool            `json:"is_paid"`
	ExpenseTypeID *string         `json:"expense_type_id" binding:"omitempty,uuid|len=0"`
	InstitutionID *string         `json:"institution_id" binding:"omitempty,uuid|len=0"`
}

func (r ExpenseRequest) toInput() (services.ExpenseInput, error) {
	date, err := time.Parse(dateLayout, r.ExpenseDate)
	if err != nil {
		return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid expense_date, expected YYYY-MM-DD")
	}
	in := services.ExpenseInput{
		Description:   r.Description,
		PaymentType:   r.PaymentType,
		Amount:        r.Amount,
		ExpenseDate:   date,
		IsPaid:        r.IsPaid,
		ExpenseTypeID: r.ExpenseTypeID,
		InstitutionID: r.InstitutionID,
	}
	if r.PaymentDate != "" {
		paid, err := time.Parse(dateLayout, r.PaymentDate)
		if err != nil {
			return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid payment_date, expected YYYY-MM-DD")
		}
		in.PaymentDate = &paid
	}
	return in, nil
}

// PayExpenseRequest is the optional body of the pay endpoint
type PayExpenseRequest struct {
	PaymentDate string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
}

// ExpenseListQuery holds the optional expense list filters
type ExpenseListQuery struct {
	IsPaid        *bool  `form:"is_paid"`
	ExpenseTypeID string `form:"expense_type_id" binding:"omitempty,uuid"`
	CategoryID    string `form:"category_id" binding:"omitempty,uuid"`
}

// CreateExpense handles the creation of a new expense
// @Summary     Create an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense type or institution not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "expense_date": req.ExpenseDate})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles listing expenses
// @Summary     Get expenses
// @Description Get a paginated list of expenses, newest first. category_id matches through the expense type.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       is_paid         query bool   false "Filter by paid status"
// @Param       expense_type_id query string false "Filter by expense type"
// @Param       category_id     query string false "Filter by expense category"
// @Param       from            query string false "Start date (YYYY-MM-DD)"
// @Param       to              query string false "End date (YYYY-MM-DD)"
// @Param       page            query int    false "Page number (default 1)"
// @Param       page_size       query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var query ExpenseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ExpenseFilter{IsPaid: query.IsPaid}
	if query.ExpenseTypeID != "" {
		filter.ExpenseTypeID = &query.ExpenseTypeID
	}
	if query.CategoryID != "" {
		filter.CategoryID = &query.CategoryID
	}
	if filter.FromDate, err = optionalDate(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = optionalDate(c, "to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetUserExpenses(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns one expense
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense replaces an expense's fields
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "expense_date": req.ExpenseDate, "is_paid": req.IsPaid})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// PayExpense marks an expense as paid
// @Summary     Mark expense paid
// @Description Marks the expense paid on payment_date, or today when the body is empty
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true  "Expense ID"
// @Param       request body PayExpenseRequest false "Payment date"
// @Success     200 {object} models.Expense "Paid expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/pay [post]
func (h *ExpenseHandler) PayExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayExpenseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	var paymentDate *time.Time
	if req.PaymentDate != "" {
		d, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid payment_date, expected YYYY-MM-DD"))
			return
		}
		paymentDate = &d
	}

	expense, err := h.expenseService.MarkPaid(userID, expenseID, paymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_EXPENSE", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"payment_date": req.PaymentDate})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense deletes an expense
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
