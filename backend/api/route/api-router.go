package route

import (
	"insightlink/backend/api/handler"
	"insightlink/backend/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetApiRouter(route *gin.Engine) {
	apiRouter := route.Group("/api")
	apiRouter.Use(middleware.GlobalAPIRateLimit())
	{
		// Public routes (no authentication required)
		apiRouter.GET("/status", handler.GetStatus)
		apiRouter.GET("/plans", handler.GetPlans)

		// Public link viewing. POST carries the password so it never lands
		// in access logs; GET covers passwordless links.
		apiRouter.GET("/view/:slug", middleware.CriticalRateLimit(), handler.ViewLink)
		apiRouter.POST("/view/:slug", middleware.CriticalRateLimit(), handler.ViewLink)

		// Authentication routes
		authRoutes := apiRouter.Group("/auth")
		{
			authRoutes.POST("/register", middleware.CriticalRateLimit(), handler.Register)
			authRoutes.POST("/login", middleware.CriticalRateLimit(), handler.Login)
			authRoutes.POST("/refresh", middleware.CriticalRateLimit(), handler.RefreshToken)
			authRoutes.POST("/logout", middleware.CriticalRateLimit(), handler.Logout)
		}

		// User routes
		userRoute := apiRouter.Group("/user")
		{
			// Browsers ride the login session here; API clients keep using
			// the bearer token.
			selfRoute := userRoute.Group("/")
			selfRoute.Use(middleware.UserAuth())
			{
				selfRoute.GET("/self", handler.GetSelf)
				selfRoute.PUT("/self", handler.UpdateSelf)
				selfRoute.GET("/payments", handler.GetMyPayments)
				selfRoute.GET("/stats", handler.GetMyStats)
			}

			adminRoute := userRoute.Group("/")
			adminRoute.Use(middleware.AdminAuth())
			{
				adminRoute.GET("/", handler.GetAllUsers)
				adminRoute.GET("/search", handler.SearchUsers)
				adminRoute.GET("/:id", handler.GetUser)
				adminRoute.POST("/", handler.CreateUser)
				adminRoute.POST("/manage", handler.ManageUser)
				adminRoute.DELETE("/:id", handler.DeleteUser)
			}
		}

		// Card key redemption and administration
		cardRoute := apiRouter.Group("/card")
		{
			cardRoute.POST("/redeem", middleware.CriticalRateLimit(), middleware.JWTAuth(), handler.RedeemCard)

			adminCardRoute := cardRoute.Group("/")
			adminCardRoute.Use(middleware.AdminAuth())
			{
				adminCardRoute.POST("/", handler.GenerateCardKeys)
				adminCardRoute.GET("/", handler.GetCardKeys)
				adminCardRoute.DELETE("/:id", handler.DeleteCardKey)
			}
		}

		// File routes
		fileRoute := apiRouter.Group("/file")
		fileRoute.Use(middleware.JWTAuth())
		{
			fileRoute.POST("/", handler.CreateFile)
			fileRoute.GET("/", handler.GetMyFiles)
			fileRoute.PUT("/:id", handler.ReplaceFile)
			fileRoute.DELETE("/:id", handler.DeleteFile)
			fileRoute.GET("/:id/links", handler.GetFileLinks)

			adminFileRoute := fileRoute.Group("/")
			adminFileRoute.Use(middleware.AdminAuth())
			{
				adminFileRoute.GET("/all", handler.GetAllFiles)
				adminFileRoute.POST("/:id/ban", handler.BanFile)
				adminFileRoute.GET("/:id/preview", handler.AdminPreviewFile)
			}
		}

		// Link routes
		linkRoute := apiRouter.Group("/link")
		linkRoute.Use(middleware.JWTAuth())
		{
			linkRoute.POST("/", handler.CreateLink)
			linkRoute.GET("/", handler.GetMyLinks)
			linkRoute.PUT("/:id", handler.UpdateLink)
			linkRoute.DELETE("/:id", handler.DeleteLink)
			linkRoute.GET("/:id/visits", handler.GetLinkVisits)
			linkRoute.GET("/:id/stats", handler.GetLinkStats)

			adminLinkRoute := linkRoute.Group("/")
			adminLinkRoute.Use(middleware.AdminAuth())
			{
				adminLinkRoute.GET("/all", handler.GetAllLinks)
				adminLinkRoute.POST("/:id/ban", handler.BanLink)
			}
		}

		// Option routes (Root admin only)
		optionRoute := apiRouter.Group("/option")
		optionRoute.Use(middleware.RootAuth())
		{
			optionRoute.GET("/", handler.GetOptions)
			optionRoute.PUT("/", handler.UpdateOption)
		}

		// Audit log (admin only)
		auditRoute := apiRouter.Group("/audit")
		auditRoute.Use(middleware.AdminAuth())
		{
			auditRoute.GET("/", handler.GetAuditLogs)
		}
	}
}
