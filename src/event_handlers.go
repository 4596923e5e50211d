package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/lacegiovanni17/event-ticket-BE/src/allocator"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/lacegiovanni17/event-ticket-BE/src/utils"
	"github.com/tidwall/gjson"
	"github.com/yeqown/go-qrcode"
)

func errorResponse(ctx *gin.Context, err error) {
	var mismatch *allocator.StatusMismatchError
	switch {
	case errors.As(err, &mismatch):
		ctx.JSON(http.StatusNotFound, gin.H{"error": mismatch.Error(), "currentStatus": mismatch.Current})
	case errors.Is(err, allocator.ErrInvalidInput),
		errors.Is(err, allocator.ErrDuplicateName),
		errors.Is(err, allocator.ErrInsufficientBookings):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, allocator.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, allocator.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, allocator.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Unhandled error: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func publicEventHandlers(g *gin.RouterGroup, alloc *allocator.Allocator) *gin.RouterGroup {
	g.
		POST("/event/initialize", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, err := alloc.CreateEvent(ctx, body.Name, body.TotalTickets)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
		})
	return g
}

func eventHandlers(g *gin.RouterGroup, alloc *allocator.Allocator) *gin.RouterGroup {
	g.
		POST("/event/book/:eventId", func(ctx *gin.Context) {
			var params types.EventURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := alloc.BookTickets(ctx, params.EventID, ctx.GetString("id"), body.NumberOfTickets)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			message := "Tickets booked successfully"
			if result.Queued {
				message = "Not enough tickets available, added to waiting list"
			}
			ctx.JSON(http.StatusOK, gin.H{"message": message, "result": result})
		}).
		POST("/event/cancel/:eventId", func(ctx *gin.Context) {
			var params types.EventURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := alloc.CancelTickets(ctx, params.EventID, ctx.GetString("id"), body.NumberOfTickets)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Tickets cancelled successfully", "result": result})
		}).
		GET("/event/status/:eventId", func(ctx *gin.Context) {
			var params types.EventURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.EventStatusQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, err := alloc.GetEventStatus(ctx, params.EventID, types.EventStatus(query.Status))
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"event": event})
		}).
		GET("/event/waiting-list/:eventId", func(ctx *gin.Context) {
			var params types.EventURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entries, err := alloc.WaitingList(ctx, params.EventID)
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			list := make([]types.APIResponseWaitingListEntry, 0, len(entries))
			for _, entry := range entries {
				list = append(list, types.APIResponseWaitingListEntry{
					ID:       entry.ID,
					UserID:   entry.UserID,
					Position: entry.Position,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"waitingList": list, "count": len(list)})
		}).
		GET("/event/tickets/:eventId", func(ctx *gin.Context) {
			var params types.EventURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tickets, err := alloc.UserTickets(ctx, params.EventID, ctx.GetString("id"))
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
		}).
		GET("/event/ticket/:ticketId/qr", func(ctx *gin.Context) {
			var params types.TicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ticket, err := alloc.Ticket(ctx, params.TicketID, ctx.GetString("id"))
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			rawBytes, err := json.Marshal(map[string]any{
				"ticketId": ticket.ID,
				"eventId":  ticket.EventID,
				"userId":   ticket.UserID,
			})
			if err != nil {
				log.Printf("Could not encode ticket payload: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			key, err := utils.QRCodeKey()
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			encryptedMessage, err := utils.EncryptMessage(key, string(rawBytes))
			if err != nil {
				log.Printf("Error encrypting message: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			qrc, err := qrcode.New(encryptedMessage)
			if err != nil {
				log.Printf("Error generating qrcode: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			if tempdir == "" {
				tempdir = os.TempDir()
			}
			file, err := os.CreateTemp(tempdir, fmt.Sprintf("ticketcode_%s_*.jpeg", ticket.ID))
			if err != nil {
				log.Printf("Could not create qrcode file in [%s]: %s\n", tempdir, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			filepath := file.Name()
			file.Close()
			defer os.Remove(filepath)
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		}).
		POST("/event/ticket/verify", func(ctx *gin.Context) {
			var body types.VerifyTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			key, err := utils.QRCodeKey()
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			payload, err := utils.DecryptMessage(key, body.Code)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket code"})
				return
			}
			claims := gjson.GetMany(*payload, "ticketId", "userId")
			if claims[0].String() == "" || claims[1].String() == "" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket code"})
				return
			}
			ticket, err := alloc.Ticket(ctx, claims[0].String(), claims[1].String())
			if err != nil {
				errorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Ticket is valid", "ticket": ticket})
		})
	return g
}
