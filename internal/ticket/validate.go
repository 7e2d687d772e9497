package ticket

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ValidationError is a pre-write rejection of a proposed ticket operation.
// Code is stable and machine-readable; Message is for display.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation failure codes.
const (
	CodeMissingPlate        = "missing_plate"
	CodeInvalidOdometer     = "invalid_odometer"
	CodeOdometerRegression  = "odometer_regression"
	CodeInvalidFuelLevel    = "invalid_fuel_level"
	CodeMissingPhoto        = "missing_photo"
	CodeIncompleteChecklist = "incomplete_checklist"
	CodeInvalidTransition   = "invalid_transition"
	CodeMissingMechanic     = "missing_mechanic"
	CodeMissingReason       = "missing_reason"
	CodeInvalidDecision     = "invalid_decision"
	CodeInvalidPriority     = "invalid_priority"
)

// Patch is the accepted field-level update produced by a validator, keyed by
// stored field name. It is applied as a merge update, so concurrent edits to
// disjoint fields follow last-write-wins per field.
type Patch map[string]any

// fuelLevels is the discrete gauge scale drivers report against.
var fuelLevels = map[int]bool{0: true, 25: true, 50: true, 75: true, 100: true}

func validFuelLevel(level *int) bool {
	return level != nil && fuelLevels[*level]
}

// CheckoutRequest is a driver taking a truck out.
type CheckoutRequest struct {
	Plate        string          `json:"plate"`
	Description  string          `json:"description"`
	Kilometers   *int            `json:"kilometraje_salida"`
	FuelLevel    *int            `json:"fuel_level"`
	PhotoURL     string          `json:"photo_url"`
	TractorCheck map[string]bool `json:"checklist_tractor"`
	DriverID     string          `json:"driver_id"`
	DriverName   string          `json:"driver_name"`
}

// ValidateCheckout checks every checkout precondition and, when all pass,
// builds the new en-route ticket. No precondition failure leaves partial
// state: either a complete ticket is returned or nothing is.
func ValidateCheckout(req CheckoutRequest, now time.Time) (*models.Ticket, error) {
	if req.Plate == "" {
		return nil, validationErr(CodeMissingPlate, "plate is required")
	}
	if req.Kilometers == nil || *req.Kilometers <= 0 {
		return nil, validationErr(CodeInvalidOdometer, "odometer reading must be a positive number")
	}
	if !validFuelLevel(req.FuelLevel) {
		return nil, validationErr(CodeInvalidFuelLevel, "fuel level must be one of 0, 25, 50, 75, 100")
	}
	if req.PhotoURL == "" {
		return nil, validationErr(CodeMissingPhoto, "board photo is required before checkout")
	}
	if !checklistComplete(TractorChecklistItems, req.TractorCheck) {
		return nil, validationErr(CodeIncompleteChecklist, "every tractor checklist item must be checked")
	}

	return &models.Ticket{
		Plate:         req.Plate,
		Status:        models.StatusEnRoute,
		Description:   req.Description,
		KilometersOut: req.Kilometers,
		FuelLevel:     req.FuelLevel,
		TractorCheck:  req.TractorCheck,
		PhotoURL:      req.PhotoURL,
		Priority:      3,
		DriverID:      req.DriverID,
		DriverName:    req.DriverName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CheckinRequest is a driver returning a truck.
type CheckinRequest struct {
	Kilometers   *int            `json:"kilometraje_ingreso"`
	FuelLevel    *int            `json:"fuel_level"`
	PhotoURL     string          `json:"photo_url"`
	CisternCheck map[string]bool `json:"checklist_cisterna"`
	Symptoms     []string        `json:"sintomas"`
}

// ValidateCheckin validates a check-in against the open ticket and returns
// the accepted patch.
//
// The resulting status is the hard invariant of the lifecycle: a check-in
// reporting symptoms or a failed checklist item never lands directly in
// completed; it requires human triage. The clean path additionally demands a
// fully answered, all-true cistern checklist.
func ValidateCheckin(t *models.Ticket, req CheckinRequest, now time.Time) (Patch, error) {
	if t.Status != models.StatusEnRoute {
		return nil, validationErr(CodeInvalidTransition, "check-in requires an en-route ticket, got %q", t.Status)
	}
	if req.Kilometers == nil || *req.Kilometers <= 0 {
		return nil, validationErr(CodeInvalidOdometer, "odometer reading must be a positive number")
	}
	if t.KilometersOut != nil && *req.Kilometers < *t.KilometersOut {
		return nil, validationErr(CodeOdometerRegression,
			"check-in odometer %d is below checkout reading %d", *req.Kilometers, *t.KilometersOut)
	}
	if !validFuelLevel(req.FuelLevel) {
		return nil, validationErr(CodeInvalidFuelLevel, "fuel level must be one of 0, 25, 50, 75, 100")
	}
	if req.PhotoURL == "" {
		return nil, validationErr(CodeMissingPhoto, "board photo is required before check-in")
	}

	// With no failures screened above, an answered checklist is an all-true
	// one; the clean path only needs to reject unanswered items.
	hasIssues := len(req.Symptoms) > 0 || checklistHasFailure(req.CisternCheck)
	if !hasIssues && !checklistAnswered(CisternChecklistItems, req.CisternCheck) {
		return nil, validationErr(CodeIncompleteChecklist, "every cistern checklist item must be checked")
	}

	status := models.StatusCompleted
	if hasIssues {
		status = models.StatusPendingTriage
	}
	patch := Patch{
		"estado":              status,
		"kilometraje_ingreso": *req.Kilometers,
		"nivel_combustible":   *req.FuelLevel,
		"checklist_cisterna":  req.CisternCheck,
		"foto_tablero":        req.PhotoURL,
		"updated_at":          now,
	}
	if len(req.Symptoms) > 0 {
		patch["sintomas"] = req.Symptoms
	}
	return patch, nil
}

// TriageDecision is the supervisor/admin resolution of a flagged ticket.
type TriageDecision string

const (
	DecisionApprove TriageDecision = "approve"
	DecisionReject  TriageDecision = "reject"
	DecisionDerive  TriageDecision = "derive"
)

// TriageRequest carries the admin decision for a pending ticket.
type TriageRequest struct {
	Decision     TriageDecision `json:"decision"`
	MechanicID   string         `json:"mechanic_id"`
	MechanicName string         `json:"mechanic_name"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
	Reason       string         `json:"reason"`
}

// ValidateTriage validates a triage decision and returns the accepted patch.
// Deriving additionally requires the caller to create the follow-up ticket
// and link both directions; the patch here only closes the original.
func ValidateTriage(t *models.Ticket, req TriageRequest, now time.Time) (Patch, error) {
	switch req.Decision {
	case DecisionApprove:
		if !CanTransition(t.Status, models.StatusScheduled) {
			return nil, validationErr(CodeInvalidTransition, "cannot schedule a %q ticket", t.Status)
		}
		if req.MechanicID == "" {
			return nil, validationErr(CodeMissingMechanic, "scheduling requires an assigned mechanic")
		}
		patch := Patch{
			"estado":          models.StatusScheduled,
			"mecanico_id":     req.MechanicID,
			"mecanico_nombre": req.MechanicName,
			"updated_at":      now,
		}
		if req.ScheduledFor != nil {
			patch["agendado_para"] = *req.ScheduledFor
		}
		return patch, nil

	case DecisionReject:
		if !CanTransition(t.Status, models.StatusRejected) {
			return nil, validationErr(CodeInvalidTransition, "cannot reject a %q ticket", t.Status)
		}
		if req.Reason == "" {
			return nil, validationErr(CodeMissingReason, "rejecting requires a reason")
		}
		return Patch{
			"estado":         models.StatusRejected,
			"motivo_rechazo": req.Reason,
			"updated_at":     now,
		}, nil

	case DecisionDerive:
		if !CanTransition(t.Status, models.StatusDerived) {
			return nil, validationErr(CodeInvalidTransition, "cannot derive a %q ticket", t.Status)
		}
		return Patch{
			"estado":      models.StatusDerived,
			"derivado_en": now,
			"updated_at":  now,
		}, nil

	default:
		return nil, validationErr(CodeInvalidDecision, "unknown triage decision %q", req.Decision)
	}
}

// WorkAction is a mechanic's lifecycle action on a scheduled ticket.
type WorkAction string

const (
	ActionStart    WorkAction = "start"
	ActionPause    WorkAction = "pause"
	ActionComplete WorkAction = "complete"
)

// ValidateWork validates a mechanic action and returns the accepted patch.
// Work-start is assigned once: pausing and restarting keeps the original
// start timestamp.
func ValidateWork(t *models.Ticket, action WorkAction, now time.Time) (Patch, error) {
	switch action {
	case ActionStart:
		if !CanTransition(t.Status, models.StatusInProgress) {
			return nil, validationErr(CodeInvalidTransition, "cannot start work on a %q ticket", t.Status)
		}
		patch := Patch{
			"estado":     models.StatusInProgress,
			"updated_at": now,
		}
		if t.WorkStartedAt == nil {
			patch["trabajo_inicio"] = now
		}
		return patch, nil

	case ActionPause:
		if t.Status != models.StatusInProgress {
			return nil, validationErr(CodeInvalidTransition, "cannot pause a %q ticket", t.Status)
		}
		return Patch{
			"estado":     models.StatusScheduled,
			"updated_at": now,
		}, nil

	case ActionComplete:
		if t.Status != models.StatusInProgress {
			return nil, validationErr(CodeInvalidTransition, "cannot complete a %q ticket", t.Status)
		}
		return Patch{
			"estado":      models.StatusCompleted,
			"trabajo_fin": now,
			"updated_at":  now,
		}, nil

	default:
		return nil, validationErr(CodeInvalidDecision, "unknown work action %q", action)
	}
}

// AdminPatchRequest is the supervisor/admin mutable surface outside the
// lifecycle transitions.
type AdminPatchRequest struct {
	Priority     *int       `json:"priority"`
	MechanicID   *string    `json:"mechanic_id"`
	MechanicName *string    `json:"mechanic_name"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// ValidateAdminPatch validates priority/assignment edits on a live ticket.
func ValidateAdminPatch(t *models.Ticket, req AdminPatchRequest, now time.Time) (Patch, error) {
	if t.Status.IsTerminal() {
		return nil, validationErr(CodeInvalidTransition, "cannot edit a %q ticket", t.Status)
	}
	patch := Patch{"updated_at": now}
	if req.Priority != nil {
		if *req.Priority < 1 || *req.Priority > 3 {
			return nil, validationErr(CodeInvalidPriority, "priority must be between 1 and 3")
		}
		patch["prioridad"] = *req.Priority
	}
	if req.MechanicID != nil {
		patch["mecanico_id"] = *req.MechanicID
	}
	if req.MechanicName != nil {
		patch["mecanico_nombre"] = *req.MechanicName
	}
	if req.ScheduledFor != nil {
		patch["agendado_para"] = *req.ScheduledFor
	}
	return patch, nil
}
