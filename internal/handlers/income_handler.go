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

// IncomeHandler handles income-related requests
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, auditService: auditService}
}

// IncomeRequest represents the payload for creating or replacing an income
type IncomeRequest struct {
	Description   string          `json:"description" binding:"required,min=1,max=255"`
	PaymentType   string          `json:"payment_type" binding:"max=50"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" binding:"gte=0"`
	IncomeDate    string          `json:"income_date" binding:"required,datetime=2006-01-02"`
	IsFixed       bool            `json:"is_fixed"`
	IsReceived    bool            `json:"is_received"`
	CategoryID    *string         `json:"category_id" binding:"omitempty,uuid|len=0"`
	InstitutionID *string         `json:"institution_id" binding:"omitempty,uuid|len=0"`
}

func (r IncomeRequest) toInput() (services.IncomeInput, error) {
	date, err := time.Parse(dateLayout, r.IncomeDate)
	if err != nil {
		return services.IncomeInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid income_date, expected YYYY-MM-DD")
	}
	return services.IncomeInput{
		Description:   r.Description,
		PaymentType:   r.PaymentType,
		Amount:        r.Amount,
		IncomeDate:    date,
		IsFixed:       r.IsFixed,
		IsReceived:    r.IsReceived,
		CategoryID:    r.CategoryID,
		InstitutionID: r.InstitutionID,
	}, nil
}

// IncomeListQuery holds the optional income list filters
type IncomeListQuery struct {
	Status        string `form:"status" binding:"omitempty,income_status"`
	CategoryID    string `form:"category_id" binding:"omitempty,uuid"`
	InstitutionID string `form:"institution_id" binding:"omitempty,uuid"`
	IsFixed       *bool  `form:"is_fixed"`
}

// CreateIncome handles the creation of a new income
// @Summary     Create an income
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IncomeRequest true "Income details"
// @Success     201 {object} models.Income "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or institution not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.CreateIncome(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "income", income.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "income_date": req.IncomeDate})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetIncomes handles listing incomes
// @Summary     Get incomes
// @Description Get a paginated list of incomes, newest first
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       status         query string false "all, received or pending"
// @Param       category_id    query string false "Filter by income category"
// @Param       institution_id query string false "Filter by institution"
// @Param       is_fixed       query bool   false "Filter by fixed incomes"
// @Param       from           query string false "Start date (YYYY-MM-DD)"
// @Param       to             query string false "End date (YYYY-MM-DD)"
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Income] "Paginated incomes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
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
	var query IncomeListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.IncomeFilter{Status: query.Status, IsFixed: query.IsFixed}
	if query.CategoryID != "" {
		filter.CategoryID = &query.CategoryID
	}
	if query.InstitutionID != "" {
		filter.InstitutionID = &query.InstitutionID
	}
	if filter.FromDate, err = optionalDate(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = optionalDate(c, "to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.incomeService.GetUserIncomes(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIncomeSummary totals the user's incomes over an optional date range
// @Summary     Income summary
// @Description Total, received and pending income between two dates
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} services.IncomeSummary "Income summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes/summary [get]
func (h *IncomeHandler) GetIncomeSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := optionalDate(c, "from")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := optionalDate(c, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.incomeService.GetSummary(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetIncome returns one income
// @Summary     Get income by ID
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} models.Income "Income"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes/{id} [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.GetIncomeByID(userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// UpdateIncome replaces an income's fields
// @Summary     Update income
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Income ID"
// @Param       request body IncomeRequest true "Income details"
// @Success     200 {object} models.Income "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes/{id} [put]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.UpdateIncome(userID, incomeID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME", "income", incomeID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "income_date": req.IncomeDate, "is_received": req.IsReceived})

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// ReceiveIncome marks a pending income as received
// @Summary     Mark income received
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} models.Income "Received income"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes/{id}/receive [post]
func (h *IncomeHandler) ReceiveIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.MarkReceived(userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECEIVE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// DeleteIncome deletes an income and unlinks it from budgets
// @Summary     Delete income
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} MessageResponse "Income deleted"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /incomes/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Income deleted successfully"})
}
