package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"link-pago.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	linkHandler     *handlers.PaymentLinkHandler
	checkoutHandler *handlers.CheckoutHandler
	authMiddleware  gin.HandlerFunc
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/google", d.authHandler.GoogleLogin)
			auth.GET("/google/callback", d.authHandler.GoogleCallback)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Link management (protected)
		links := v1.Group("/links")
		links.Use(d.authMiddleware)
		{
			links.POST("", d.linkHandler.CreateLink)
			links.GET("", d.linkHandler.ListLinks)
			links.GET("/:id", d.linkHandler.GetLink)
			links.PATCH("/:id", d.linkHandler.UpdateLink)
			links.DELETE("/:id", d.linkHandler.CancelLink)
		}
	}

	// Payer-facing pages (public). The static /pay/return route takes
	// precedence over the :slug param, so "return" is never read as a slug.
	r.GET("/pay/return", d.checkoutHandler.Return)
	r.POST("/pay/return", d.checkoutHandler.Return)
	r.GET("/pay/:slug", d.checkoutHandler.Start)
	r.POST("/pay/:slug/init", d.checkoutHandler.Init)
}
