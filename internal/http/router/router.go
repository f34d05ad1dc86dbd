package router

import (
	"github.com/gin-gonic/gin"

	"github.com/gigmarket/backend/internal/config"
	"github.com/gigmarket/backend/internal/http/handlers"
	"github.com/gigmarket/backend/internal/http/middleware"
	"github.com/gigmarket/backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Project     *handlers.ProjectHandler
	Proposal    *handlers.ProposalHandler
	Assignment  *handlers.AssignmentHandler
	Payment     *handlers.PaymentHandler
	Payout      *handlers.PayoutHandler
	Review      *handlers.ReviewHandler
	Task        *handlers.TaskHandler
	Health      *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/auth/me", h.Auth.Me)

		protected.POST("/projects", h.Project.Create)
		protected.GET("/projects", h.Project.ListOpen)
		protected.GET("/projects/mine", h.Project.ListMine)
		protected.GET("/projects/:id", h.Project.Get)
		protected.PUT("/projects/:id", h.Project.Update)
		protected.DELETE("/projects/:id", h.Project.Delete)
		protected.POST("/projects/:id/publish", h.Project.Publish)
		protected.POST("/projects/:id/complete", h.Project.Complete)
		protected.POST("/projects/:id/cancel", h.Project.Cancel)
		protected.POST("/projects/:id/close", h.Project.Close)
		protected.GET("/projects/:id/proposals", h.Proposal.ListForProject)
		protected.GET("/projects/:id/assignment", h.Assignment.GetByProject)

		protected.POST("/proposals", h.Proposal.Submit)
		protected.POST("/proposals/invite", h.Proposal.Invite)
		protected.GET("/proposals/mine", h.Proposal.ListMine)
		protected.GET("/proposals/:id", h.Proposal.Get)
		protected.PUT("/proposals/:id", h.Proposal.Update)
		protected.POST("/proposals/:id/accept", h.Proposal.Accept)
		protected.POST("/proposals/:id/reject", h.Proposal.Reject)
		protected.POST("/proposals/:id/withdraw", h.Proposal.Withdraw)

		protected.POST("/assignments", h.Assignment.Create)
		protected.GET("/assignments/mine", h.Assignment.ListMine)
		protected.GET("/assignments/:id", h.Assignment.Get)
		protected.PATCH("/assignments/:id/dates", h.Assignment.UpdateDates)
		protected.POST("/assignments/:id/complete", h.Assignment.Complete)
		protected.POST("/assignments/:id/cancel", h.Assignment.Cancel)
		protected.GET("/assignments/:id/payments", h.Payment.ListByAssignment)
		protected.GET("/assignments/:id/reviews", h.Review.ListForAssignment)
		protected.POST("/assignments/:id/tasks", h.Task.Create)
		protected.GET("/assignments/:id/tasks", h.Task.List)

		protected.POST("/payments", h.Payment.Create)
		protected.GET("/payments/mine", h.Payment.ListMine)
		protected.GET("/payments/:id", h.Payment.Get)

		protected.POST("/payouts", h.Payout.Create)
		protected.GET("/payouts/balance", h.Payout.Balance)
		protected.GET("/payouts/mine", h.Payout.ListMine)
		protected.GET("/payouts/:id", h.Payout.Get)

		protected.POST("/reviews", h.Review.Create)
		protected.GET("/reviews/:id", h.Review.Get)
		protected.GET("/users/:id/reviews", h.Review.ListAboutUser)

		protected.GET("/tasks/:id", h.Task.Get)
		protected.PATCH("/tasks/:id/status", h.Task.UpdateStatus)
	}

	return r
}
