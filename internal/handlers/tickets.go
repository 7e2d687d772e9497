package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/realtime"
	"github.com/ukydev/fleet-maintenance/internal/ticket"
)

// TicketHandler handles the maintenance ticket lifecycle API.
type TicketHandler struct {
	tickets db.TicketCollection
	users   db.UserCollection
	events  realtime.Publisher
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(tickets db.TicketCollection, users db.UserCollection, events realtime.Publisher) *TicketHandler {
	return &TicketHandler{
		tickets: tickets,
		users:   users,
		events:  events,
	}
}

// publish notifies realtime subscribers of a ticket change. Failures are
// invisible to the HTTP caller; the write already happened.
func (h *TicketHandler) publish(eventType, id, plate string, status models.TicketStatus) {
	if h.events == nil {
		return
	}
	h.events.Publish(realtime.TopicTickets, realtime.Event{
		Type:     eventType,
		TicketID: id,
		Plate:    plate,
		Status:   string(status),
	})
	metrics.TicketTransitions.WithLabelValues(string(status)).Inc()
}

// createRequest is the direct admin/supervisor creation path, used for work
// reported outside the checkout flow.
type createRequest struct {
	Plate       string   `json:"plate"`
	Description string   `json:"description"`
	Symptoms    []string `json:"symptoms"`
	Priority    int      `json:"priority"`
}

// Create handles direct ticket creation by an admin or supervisor. The ticket
// starts in pending and goes through the normal triage path.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Plate == "" {
		writeTicketError(w, &ticket.ValidationError{Code: ticket.CodeMissingPlate, Message: "plate is required"})
		return
	}
	if req.Priority == 0 {
		req.Priority = 3
	}
	if req.Priority < 1 || req.Priority > 3 {
		writeTicketError(w, &ticket.ValidationError{Code: ticket.CodeInvalidPriority, Message: "priority must be between 1 and 3"})
		return
	}

	now := time.Now()
	t := &models.Ticket{
		Plate:       strings.ToUpper(strings.TrimSpace(req.Plate)),
		Status:      models.StatusPending,
		Description: req.Description,
		Symptoms:    req.Symptoms,
		Priority:    req.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		t.DriverID = claims.UserID
		t.DriverName = claims.Username
	}

	id, err := h.tickets.InsertTicket(r.Context(), t)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	h.publish("ticket.created", id, t.Plate, t.Status)
	writeJSON(w, http.StatusCreated, t)
}

// List handles ticket listing with status/plate/assignment filters.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	query := db.TicketQuery{
		Plate:      r.URL.Query().Get("plate"),
		MechanicID: r.URL.Query().Get("mechanic_id"),
		DriverID:   r.URL.Query().Get("driver_id"),
		SortBy:     r.URL.Query().Get("sort"),
		Descending: r.URL.Query().Get("order") != "asc",
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := models.ParseTicketStatus(strings.TrimSpace(part))
			if err != nil {
				http.Error(w, "Unknown status filter: "+part, http.StatusBadRequest)
				return
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}

	// Mechanics and drivers only see their own queue.
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		switch claims.Role {
		case models.RoleMechanic:
			query.MechanicID = claims.UserID
		case models.RoleDriver:
			query.DriverID = claims.UserID
		}
	}

	tickets, err := h.tickets.FindTickets(r.Context(), query)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

// Get handles fetching a single ticket by id.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tickets.FindTicketByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Checkout handles a driver taking a truck out. All preconditions are checked
// before anything is written; a failed checkout leaves no ticket behind.
func (h *TicketHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ticket.CheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		req.DriverID = claims.UserID
		req.DriverName = claims.Username
	}

	t, err := ticket.ValidateCheckout(req, time.Now())
	if err != nil {
		writeTicketError(w, err)
		return
	}

	id, err := h.tickets.InsertTicket(r.Context(), t)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	log.WithFields(log.Fields{"ticket_id": id, "plate": t.Plate}).Info("Vehicle checked out")
	h.publish("ticket.checkout", id, t.Plate, t.Status)
	writeJSON(w, http.StatusCreated, t)
}

// Checkin handles a driver returning a truck against its open en-route
// ticket. A clean return completes the ticket; reported symptoms or a failed
// checklist item park it in pending_triage instead.
func (h *TicketHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req ticket.CheckinRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	patch, err := ticket.ValidateCheckin(t, req, time.Now())
	if err != nil {
		writeTicketError(w, err)
		return
	}
	if err := h.tickets.ApplyPatch(r.Context(), id, patch); err != nil {
		writeTicketError(w, err)
		return
	}

	status := patch["estado"].(models.TicketStatus)
	log.WithFields(log.Fields{"ticket_id": id, "plate": t.Plate, "status": status}).Info("Vehicle checked in")
	h.publish("ticket.checkin", id, t.Plate, status)

	updated, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Triage handles the supervisor decision on a pending ticket: approve with a
// mechanic, reject with a reason, or derive to a new ticket. Deriving closes
// the original and opens a linked follow-up so history stays navigable in
// both directions.
func (h *TicketHandler) Triage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req ticket.TriageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	now := time.Now()
	patch, err := ticket.ValidateTriage(t, req, now)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	if req.Decision == ticket.DecisionDerive {
		// Create the follow-up first so the original never points at a
		// ticket that does not exist.
		followUp := &models.Ticket{
			Plate:       t.Plate,
			Status:      models.StatusPending,
			Description: t.Description,
			Symptoms:    t.Symptoms,
			Priority:    t.Priority,
			DriverID:    t.DriverID,
			DriverName:  t.DriverName,
			DerivedFrom: id,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		followUpID, err := h.tickets.InsertTicket(r.Context(), followUp)
		if err != nil {
			writeTicketError(w, err)
			return
		}
		patch["derivado_a"] = followUpID
		h.publish("ticket.created", followUpID, followUp.Plate, followUp.Status)
	}

	if err := h.tickets.ApplyPatch(r.Context(), id, patch); err != nil {
		writeTicketError(w, err)
		return
	}

	status := patch["estado"].(models.TicketStatus)
	log.WithFields(log.Fields{"ticket_id": id, "decision": req.Decision, "status": status}).Info("Ticket triaged")
	h.publish("ticket.triaged", id, t.Plate, status)

	updated, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// workRequest carries a mechanic lifecycle action.
type workRequest struct {
	Action ticket.WorkAction `json:"action"`
}

// Work handles mechanic start/pause/complete actions on a scheduled ticket.
func (h *TicketHandler) Work(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req workRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	patch, err := ticket.ValidateWork(t, req.Action, time.Now())
	if err != nil {
		writeTicketError(w, err)
		return
	}
	if err := h.tickets.ApplyPatch(r.Context(), id, patch); err != nil {
		writeTicketError(w, err)
		return
	}

	status := patch["estado"].(models.TicketStatus)
	log.WithFields(log.Fields{"ticket_id": id, "action": req.Action, "status": status}).Info("Work state changed")
	h.publish("ticket.work", id, t.Plate, status)

	updated, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Patch handles admin edits to priority and mechanic assignment outside the
// lifecycle transitions.
func (h *TicketHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req ticket.AdminPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Resolve the mechanic's display name when only an id was sent.
	if req.MechanicID != nil && req.MechanicName == nil && h.users != nil {
		if mech, err := h.users.FindUserByID(r.Context(), *req.MechanicID); err == nil {
			name := strings.TrimSpace(mech.FirstName + " " + mech.LastName)
			req.MechanicName = &name
		}
	}

	patch, err := ticket.ValidateAdminPatch(t, req, time.Now())
	if err != nil {
		writeTicketError(w, err)
		return
	}
	if err := h.tickets.ApplyPatch(r.Context(), id, patch); err != nil {
		writeTicketError(w, err)
		return
	}

	h.publish("ticket.updated", id, t.Plate, t.Status)

	updated, err := h.tickets.FindTicketByID(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles admin-only hard deletion of a ticket.
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.tickets.DeleteTicket(r.Context(), id); err != nil {
		writeTicketError(w, err)
		return
	}

	log.WithField("ticket_id", id).Info("Ticket deleted")
	h.publish("ticket.deleted", id, "", "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ticket deleted"})
}

// Mechanics lists the active mechanics available for assignment during
// triage.
func (h *TicketHandler) Mechanics(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsersByRole(r.Context(), models.RoleMechanic)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mechanics": users, "count": len(users)})
}
