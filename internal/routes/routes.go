package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/cleaning-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/payments"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/middleware"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/booking"
	ucInvoice "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/validators"
)

// Deps are the process singletons the router needs.
type Deps struct {
	DB         *gorm.DB
	Issuer     *auth.Issuer
	Audit      *audit.Dispatcher
	Dashboard  *dashboard.Service
	Storage    storage.Store
	Payments   payments.Gateway
	CheckEmail validators.EmailChecker
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	db := d.DB

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	invoiceRepo := infraRepo.NewInvoiceGormRepository(db)

	// ======================================================
	// USE CASES
	// ======================================================
	bookingUC := handlers.BookingUseCases{
		Create:       ucBooking.NewCreateBooking(bookingRepo, d.Audit),
		Confirm:      ucBooking.NewConfirmBooking(bookingRepo, d.Audit),
		Cancel:       ucBooking.NewCancelBooking(bookingRepo, d.Audit),
		Complete:     ucBooking.NewCompleteBooking(bookingRepo, d.Audit),
		Reschedule:   ucBooking.NewRescheduleBooking(bookingRepo, d.Audit),
		Assign:       ucBooking.NewAssignBooking(bookingRepo, d.Audit),
		Availability: ucBooking.NewGetAvailability(bookingRepo),
		Quote:        ucBooking.NewGetQuote(bookingRepo),
		List:         ucBooking.NewListBookings(bookingRepo),
	}

	query := ucInvoice.NewQueryInvoices(invoiceRepo)
	invoiceUC := handlers.InvoiceUseCases{
		Generate: ucInvoice.NewGenerateInvoice(invoiceRepo, d.Audit),
		Status:   ucInvoice.NewUpdateInvoiceStatus(invoiceRepo, d.Audit),
		Query:    query,
		Checkout: ucInvoice.NewCheckout(invoiceRepo, d.Payments),
		Confirm:  ucInvoice.NewConfirmPayment(invoiceRepo, d.Payments, d.Audit),
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, d.Issuer, d.Audit, d.CheckEmail)
	meHandler := handlers.NewMeHandler(db)
	companyHandler := handlers.NewCompanyHandler(db, d.Audit)
	serviceHandler := handlers.NewServiceHandler(db, d.Audit)
	clientHandler := handlers.NewClientHandler(db, d.Audit, d.Dashboard)
	employeeHandler := handlers.NewEmployeeHandler(db, d.Storage, bookingUC.List, d.Audit, d.Dashboard)
	teamHandler := handlers.NewTeamHandler(db, d.Audit)
	bookingHandler := handlers.NewBookingHandler(bookingUC, d.Dashboard)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceUC, d.Dashboard)
	marketingHandler := handlers.NewMarketingHandler(db, d.Audit, d.Dashboard)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	portalAuthHandler := handlers.NewPortalAuthHandler(db, d.Issuer, d.CheckEmail)
	portalHandler := handlers.NewPortalHandler(db, bookingUC, invoiceUC, d.Dashboard)
	publicHandler := handlers.NewPublicHandler(db, bookingUC.Availability, bookingUC.Quote)

	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public/:slug")
		{
			publicAPI.GET("", publicHandler.GetCompany)
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/availability", publicHandler.Availability)
			publicAPI.POST("/quote", publicHandler.Quote)
		}

		api.POST("/payments/webhook", invoiceHandler.PaymentWebhook)

		// ------------------------------
		// STAFF AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)

		// ------------------------------
		// STAFF API
		// ------------------------------
		staff := api.Group("/")
		staff.Use(middleware.StaffAuth(d.Issuer))
		{
			staff.GET("/me", meHandler.GetMe)
			staff.GET("/dashboard", dashboardHandler.Staff)

			admin := middleware.RequireRole(models.RoleOwner, models.RoleAdmin)

			staff.GET("/company", companyHandler.Get)
			staff.PATCH("/company", admin, companyHandler.Update)
			staff.GET("/company/hours", companyHandler.GetHours)
			staff.PUT("/company/hours", admin, companyHandler.ReplaceHours)
			staff.GET("/company/areas", companyHandler.ListAreas)
			staff.PUT("/company/areas", admin, companyHandler.ReplaceAreas)

			staff.GET("/services", serviceHandler.List)
			staff.POST("/services", admin, serviceHandler.Create)
			staff.PATCH("/services/:id", admin, serviceHandler.Update)

			clients := staff.Group("/clients")
			{
				clients.GET("", clientHandler.List)
				clients.POST("", clientHandler.Create)
				clients.GET("/:id", clientHandler.Get)
				clients.PATCH("/:id", clientHandler.Update)
				clients.PATCH("/:id/toggle-active", clientHandler.ToggleActive)
				clients.GET("/:id/messages", clientHandler.Messages)
				clients.POST("/:id/messages", clientHandler.Reply)
			}

			employees := staff.Group("/employees")
			{
				employees.GET("", employeeHandler.List)
				employees.POST("", admin, employeeHandler.Create)
				employees.GET("/:id", employeeHandler.Get)
				employees.PATCH("/:id", admin, employeeHandler.Update)
				employees.PATCH("/:id/status", admin, employeeHandler.ChangeStatus)
				employees.POST("/:id/photo", employeeHandler.UploadPhoto)

				employees.GET("/:id/documents", employeeHandler.ListDocuments)
				employees.POST("/:id/documents", employeeHandler.AddDocument)
				employees.PATCH("/:id/documents/:docID", employeeHandler.UpdateDocumentStatus)
				employees.DELETE("/:id/documents/:docID", employeeHandler.DeleteDocument)

				employees.GET("/:id/training", employeeHandler.ListTraining)
				employees.POST("/:id/training", employeeHandler.AddTraining)
				employees.PATCH("/:id/training/:recordID", employeeHandler.UpdateTraining)
				employees.DELETE("/:id/training/:recordID", employeeHandler.DeleteTraining)
				employees.POST("/:id/training/:recordID/certificate", employeeHandler.UploadCertificate)

				employees.GET("/:id/time-entries", employeeHandler.ListTimeEntries)
				employees.POST("/:id/time-entries", employeeHandler.AddTimeEntry)
				employees.PATCH("/:id/time-entries/:entryID", employeeHandler.UpdateTimeEntry)
				employees.PATCH("/:id/time-entries/:entryID/status", admin, employeeHandler.SetTimeEntryStatus)
				employees.DELETE("/:id/time-entries/:entryID", employeeHandler.DeleteTimeEntry)

				employees.GET("/:id/payroll", admin, employeeHandler.Payroll)
				employees.GET("/:id/schedule", employeeHandler.Schedule)
			}

			teams := staff.Group("/teams")
			{
				teams.GET("", teamHandler.List)
				teams.POST("", teamHandler.Create)
				teams.GET("/:id", teamHandler.Get)
				teams.PATCH("/:id", teamHandler.Update)
				teams.DELETE("/:id", teamHandler.Delete)
				teams.POST("/:id/members", teamHandler.AddMember)
				teams.DELETE("/:id/members/:employeeID", teamHandler.RemoveMember)
			}

			bookings := staff.Group("/bookings")
			{
				bookings.GET("", bookingHandler.List)
				bookings.POST("", bookingHandler.Create)
				bookings.GET("/upcoming", bookingHandler.Upcoming)
				bookings.GET("/availability", bookingHandler.Availability)
				bookings.POST("/quote", bookingHandler.Quote)
				bookings.GET("/:id", bookingHandler.Get)
				bookings.PATCH("/:id/confirm", bookingHandler.Confirm)
				bookings.PATCH("/:id/cancel", bookingHandler.Cancel)
				bookings.PATCH("/:id/complete", bookingHandler.Complete)
				bookings.PATCH("/:id/reschedule", bookingHandler.Reschedule)
				bookings.PATCH("/:id/assign", bookingHandler.Assign)
			}

			invoices := staff.Group("/invoices")
			{
				invoices.GET("", invoiceHandler.List)
				invoices.POST("", invoiceHandler.Generate)
				invoices.GET("/:id", invoiceHandler.Get)
				invoices.PATCH("/:id/status", invoiceHandler.UpdateStatus)
				invoices.PATCH("/:id/paid", invoiceHandler.MarkPaid)
			}

			marketing := staff.Group("/marketing")
			{
				marketing.GET("/campaigns", marketingHandler.ListCampaigns)
				marketing.POST("/campaigns", marketingHandler.CreateCampaign)
				marketing.PATCH("/campaigns/:id/schedule", marketingHandler.ScheduleCampaign)
				marketing.GET("/promotions", marketingHandler.ListPromotions)
				marketing.POST("/promotions", marketingHandler.CreatePromotion)
				marketing.GET("/reviews", marketingHandler.ListReviews)
				marketing.PATCH("/reviews/:id/publish", marketingHandler.PublishReview)
			}

			staff.GET("/audit-logs", admin, auditLogsHandler.List)
		}

		// ------------------------------
		// CLIENT PORTAL
		// ------------------------------
		portal := api.Group("/portal")
		{
			portal.POST("/auth/signup", portalAuthHandler.Signup)
			portal.POST("/auth/login", portalAuthHandler.Login)
			portal.POST("/auth/refresh", portalAuthHandler.Refresh)
			portal.POST("/auth/logout", portalAuthHandler.Logout)

			client := portal.Group("/")
			client.Use(middleware.PortalAuth(d.Issuer))
			{
				client.GET("/me", portalAuthHandler.Me)
				client.PATCH("/me", portalAuthHandler.UpdateProfile)
				client.POST("/me/password", portalAuthHandler.ChangePassword)

				client.GET("/dashboard", dashboardHandler.Portal)

				client.GET("/services", portalHandler.Services)
				client.POST("/quote", portalHandler.Quote)
				client.GET("/availability", portalHandler.Availability)

				client.GET("/bookings", portalHandler.ListBookings)
				client.POST("/bookings", portalHandler.CreateBooking)
				client.GET("/bookings/upcoming", portalHandler.Upcoming)
				client.GET("/bookings/:id", portalHandler.GetBooking)
				client.PATCH("/bookings/:id/cancel", portalHandler.CancelBooking)
				client.PATCH("/bookings/:id/reschedule", portalHandler.RescheduleBooking)
				client.GET("/history", portalHandler.History)

				client.GET("/reviews", portalHandler.ListReviews)
				client.POST("/reviews", portalHandler.CreateReview)

				client.GET("/invoices", portalHandler.ListInvoices)
				client.GET("/invoices/recent", portalHandler.RecentInvoices)
				client.GET("/invoices/:id", portalHandler.GetInvoice)
				client.POST("/invoices/:id/checkout", portalHandler.Checkout)

				client.GET("/messages", portalHandler.Messages)
				client.POST("/messages", portalHandler.SendMessage)
				client.PATCH("/messages/:id/read", portalHandler.MarkMessageRead)

				client.GET("/notifications", portalHandler.Notifications)
				client.PATCH("/notifications/read-all", portalHandler.MarkAllNotificationsRead)
				client.PATCH("/notifications/:id/read", portalHandler.MarkNotificationRead)
			}
		}
	}
}
