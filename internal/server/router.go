// Package server assembles the HTTP router from services and middleware.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/config"
	_ "fintrack/internal/docs" // swagger docs
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Users         services.UserServicer
	Categories    services.CategoryServicer
	ExpenseTypes  services.ExpenseTypeServicer
	Institutions  services.InstitutionServicer
	Incomes       services.IncomeServicer
	Expenses      services.ExpenseServicer
	Budgets       services.BudgetServicer
	Dashboard     services.DashboardServicer
	Notifications services.NotificationServicer
	Audit         services.AuditServicer
}

// NewServices builds the gorm-backed services on db.
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	format := services.Formatter{Currency: cfg.Currency, Locale: cfg.Locale}
	notifications := services.NewNotificationService(db, format)
	budgets := services.NewBudgetService(db)

	return &Services{
		Users:         services.NewUserService(db),
		Categories:    services.NewCategoryService(db),
		ExpenseTypes:  services.NewExpenseTypeService(db),
		Institutions:  services.NewInstitutionService(db),
		Incomes:       services.NewIncomeService(db, notifications, format),
		Expenses:      services.NewExpenseService(db),
		Budgets:       budgets,
		Dashboard:     services.NewDashboardService(db, budgets),
		Notifications: notifications,
		Audit:         services.NewAuditService(db),
	}
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTExpirationDur, cfg.RefreshTokenDur)
	loginLimiter := middleware.NewLoginRateLimiter(cfg.LoginRatePerMinute)

	authHandler := handlers.NewAuthHandler(svc.Users, tokens, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	expenseTypeHandler := handlers.NewExpenseTypeHandler(svc.ExpenseTypes, svc.Audit)
	institutionHandler := handlers.NewInstitutionHandler(svc.Institutions, svc.Audit)
	incomeHandler := handlers.NewIncomeHandler(svc.Incomes, svc.Audit)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, svc.Audit)
	pipelineHandler := handlers.NewPipelineHandler(svc.Notifications)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Scheduler-triggered routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/notifications/scan", pipelineHandler.ScanNotifications)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.PUT("/profile/password", authHandler.ChangePassword)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenseTypes := protected.Group("/expense-types")
	expenseTypes.POST("", expenseTypeHandler.CreateExpenseType)
	expenseTypes.GET("", expenseTypeHandler.GetUserExpenseTypes)
	expenseTypes.GET("/:id", expenseTypeHandler.GetExpenseType)
	expenseTypes.PUT("/:id", expenseTypeHandler.UpdateExpenseType)
	expenseTypes.DELETE("/:id", expenseTypeHandler.DeleteExpenseType)

	institutions := protected.Group("/institutions")
	institutions.POST("", institutionHandler.CreateInstitution)
	institutions.GET("", institutionHandler.GetUserInstitutions)
	institutions.DELETE("/:id", institutionHandler.DeleteInstitution)

	incomes := protected.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetIncomes)
	incomes.GET("/summary", incomeHandler.GetIncomeSummary)
	incomes.GET("/:id", incomeHandler.GetIncome)
	incomes.PUT("/:id", incomeHandler.UpdateIncome)
	incomes.POST("/:id/receive", incomeHandler.ReceiveIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.POST("/:id/pay", expenseHandler.PayExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/evaluation", budgetHandler.GetBudgetEvaluation)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	protected.GET("/dashboard", dashboardHandler.GetSummary)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.GET("/settings", notificationHandler.GetSettings)
	notifications.PUT("/settings", notificationHandler.UpdateSettings)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
