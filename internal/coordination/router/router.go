package router

import (
	"context"

	"case_coordination_service/internal/coordination/app"
	"case_coordination_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes wire the websocket endpoint and the internal broadcast hooks.
// Only /ws carries end-user tokens; the internal routes are reached from
// collaborator services inside the cluster.
func RegisterRoutes(r *fiber.App, wsHandler *app.CoordinationWebsocketHandler, broadcast *app.BroadcastHandler) {
	r.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r.Get("/ws", middlewares.JWTMiddleware(), websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))

	internal := r.Group("/internal/broadcast")
	internal.Post("/notification", broadcast.Notification)
	internal.Post("/case/:caseId", broadcast.CaseUpdate)
	internal.Post("/activity", broadcast.Activity)
}
