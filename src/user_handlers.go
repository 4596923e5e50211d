package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lacegiovanni17/event-ticket-BE/src/controllers"
)

func guestUserHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/user/register", func(ctx *gin.Context) {
			user, status, err := controllers.AuthRegister(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"message": "Registration successful", "user": user})
		}).
		POST("/user/login", func(ctx *gin.Context) {
			token, status, err := controllers.AuthLogin(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"message": "Login successful", "token": token})
		})
	return g
}

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/user/logout", func(ctx *gin.Context) {
			status, err := controllers.AuthLogout(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(status)
		}).
		GET("/user", func(ctx *gin.Context) {
			users, status, err := controllers.GetUsers(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"users": users})
		})
	return g
}
