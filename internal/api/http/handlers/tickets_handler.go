package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets   *service.TicketService
	dashboard *service.DashboardService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, dashboardService *service.DashboardService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, dashboard: dashboardService}
}

// Dashboard GET /dashboard.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboard.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(stats)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), identity)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.WithRedirect(apperrors.NewValidationError("invalid payload", nil), "/tickets/new")
	}

	ticket, err := h.tickets.Create(c.UserContext(), identity, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":     dto.NewTicketSummary(ticket),
		"redirect": "/tickets",
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	detail, err := h.tickets.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(detail)})
}

// UpdateTicket POST /tickets/:id/update.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	ticketID := c.Params("id")
	// An empty form is valid: it reopens the ticket and clears the assignee.
	var req dto.UpdateTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.WithRedirect(apperrors.NewValidationError("invalid payload", nil), "/tickets/"+ticketID)
		}
	}

	ticket, err := h.tickets.Update(c.UserContext(), identity, ticketID, service.TicketUpdateInput{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewTicketSummary(ticket),
		"redirect": "/tickets/" + ticket.ID,
	})
}
