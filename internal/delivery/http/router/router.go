// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"trackivity/internal/delivery/http/middleware"
	"trackivity/internal/delivery/http/router/handler"
	"trackivity/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	QRHandler         *handler.QRHandler
	CheckpointHandler *handler.CheckpointHandler
	ActivityHandler   *handler.ActivityHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	qrHandler         *handler.QRHandler
	checkpointHandler *handler.CheckpointHandler
	activityHandler   *handler.ActivityHandler
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		qrHandler:         params.QRHandler,
		checkpointHandler: params.CheckpointHandler,
		activityHandler:   params.ActivityHandler,
		authMiddleware:    params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Scan credential routes for the signed-in student
	qrGroup := e.Group("/qr")
	qrGroup.Use(r.authMiddleware.Authenticate)
	{
		qrGroup.POST("/generate", r.qrHandler.Generate)
		qrGroup.GET("/image", r.qrHandler.Image)
	}

	// Activity routes; reads are open to any signed-in user
	activityGroup := e.Group("/activities")
	activityGroup.Use(r.authMiddleware.Authenticate)
	{
		activityGroup.GET("", r.activityHandler.List)
		activityGroup.GET("/me", r.activityHandler.MyParticipations)
		activityGroup.GET("/:id", r.activityHandler.Get)
		activityGroup.POST("/:id/join", r.activityHandler.Join)
	}

	// Management and scanning require an admin role
	adminOnly := r.authMiddleware.RequireAdmin(entity.AdminLevelRegular)
	{
		activityGroup.POST("", r.activityHandler.Create, adminOnly)
		activityGroup.PATCH("/:id", r.activityHandler.Update, adminOnly)
		activityGroup.PATCH("/:id/status", r.activityHandler.ChangeStatus, adminOnly)
		activityGroup.POST("/:id/checkin", r.checkpointHandler.CheckIn, adminOnly)
		activityGroup.POST("/:id/checkout", r.checkpointHandler.CheckOut, adminOnly)
	}
}
