package app

import (
	"context"

	"case_coordination_service/internal/coordination/domain"

	"github.com/gofiber/fiber/v2"
)

// BroadcastHandler REST surface for collaborator services that already
// persisted their state change and only need the live fan-out
type BroadcastHandler struct {
	notificationUC *NotificationUseCase
	activityUC     *ActivityBroadcaster
}

// NewBroadcastHandler create BroadcastHandler
func NewBroadcastHandler(notificationUC *NotificationUseCase, activityUC *ActivityBroadcaster) *BroadcastHandler {
	return &BroadcastHandler{
		notificationUC: notificationUC,
		activityUC:     activityUC,
	}
}

type notificationRequest struct {
	RecipientID string `json:"recipient_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	SenderID    string `json:"sender_id"`
	RelatedID   string `json:"related_id"`
	Priority    string `json:"priority"`
}

// Notification persist a collaborator-originated notification and push it to
// the recipient's live devices
func (h *BroadcastHandler) Notification(c *fiber.Ctx) error {
	var req notificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.RecipientID == "" || req.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient_id and type are required"})
	}

	n, err := h.notificationUC.Create(context.Background(), domain.Notification{
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		SenderID:    req.SenderID,
		RelatedID:   req.RelatedID,
		Priority:    domain.NotificationPriority(req.Priority),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": n.ID})
}

type caseUpdateRequest struct {
	Update map[string]interface{} `json:"update"`
}

// CaseUpdate push a case change to everyone viewing the case
func (h *BroadcastHandler) CaseUpdate(c *fiber.Ctx) error {
	caseID := c.Params("caseId")
	if caseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "case id is required"})
	}

	var req caseUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	h.activityUC.BroadcastCaseUpdate(caseID, req.Update)
	return c.JSON(fiber.Map{"case_id": caseID})
}

type activityRequest struct {
	Scope   string                 `json:"scope"`
	ScopeID string                 `json:"scope_id"`
	Payload map[string]interface{} `json:"payload"`
}

// Activity fan a feed event out to its scope's subscribers
func (h *BroadcastHandler) Activity(c *fiber.Ctx) error {
	var req activityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.activityUC.Publish(context.Background(), domain.ActivityScope(req.Scope), req.ScopeID, req.Payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"scope": req.Scope, "scope_id": req.ScopeID})
}
