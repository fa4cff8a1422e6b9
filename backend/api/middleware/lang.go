package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// LangMiddleware stashes the request language for error translation.
func LangMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = "en"
		} else {
			lang = strings.Split(lang, ",")[0]
		}
		c.Set("lang", lang)
		c.Next()
	}
}
