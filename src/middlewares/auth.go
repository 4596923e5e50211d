package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lacegiovanni17/event-ticket-BE/src/lib"
	"github.com/lacegiovanni17/event-ticket-BE/src/utils"
)

func bearerToken(ctx *gin.Context) string {
	header := ctx.Request.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware accepts a signed token that is still the active session of
// its user and exposes the user as "id" and "email" on the context.
func AuthMiddleware(ctx *gin.Context) {
	reqToken := bearerToken(ctx)
	if reqToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}
	claims, err := utils.ParseJWT(reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	active, err := lib.TokenIsActive(ctx, lib.GetRedisClient(), claims.Subject, reqToken)
	if err != nil {
		log.Printf("[redis] Error checking session: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if !active {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session has ended"})
		return
	}
	ctx.Set("id", claims.Subject)
	ctx.Set("email", claims.Email)
}
