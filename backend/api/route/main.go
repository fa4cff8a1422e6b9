package route

import (
	"insightlink/backend/api/middleware"
	"insightlink/backend/common"

	"github.com/gin-gonic/gin"
)

func SetRouter(route *gin.Engine) {
	if *common.EnableGzip {
		route.Use(middleware.GzipDecodeMiddleware())
		route.Use(middleware.GzipEncodeMiddleware())
	}
	SetApiRouter(route)
}
