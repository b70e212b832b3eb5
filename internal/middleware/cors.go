package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// GoogleIdentityOrigin is where the Google sign-in widget posts from
const GoogleIdentityOrigin = "https://accounts.google.com"

// CORS allows the Google Identity Services origin plus any extra origins
func CORS(extraOrigins ...string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     append([]string{GoogleIdentityOrigin}, extraOrigins...),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
