package models

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketStatus is the canonical lifecycle state of a maintenance ticket.
type TicketStatus string

const (
	StatusPending       TicketStatus = "pending"        // awaiting triage/scheduling
	StatusPendingTriage TicketStatus = "pending_triage" // check-in reported issues, needs admin decision
	StatusEnRoute       TicketStatus = "en_route"       // truck checked out, trip open
	StatusScheduled     TicketStatus = "scheduled"      // approved, mechanic/time assigned
	StatusInProgress    TicketStatus = "in_progress"    // mechanic actively working
	StatusCompleted     TicketStatus = "completed"      // terminal
	StatusRejected      TicketStatus = "rejected"       // terminal, triage declined
	StatusDerived       TicketStatus = "derived"        // terminal, forwarded to a new ticket
)

// legacyStatus maps every historical status literal found in stored documents
// to its canonical value. Different producer screens wrote different
// vocabularies for the same field; all of them are normalized here.
var legacyStatus = map[string]TicketStatus{
	"pending":        StatusPending,
	"pendiente":      StatusPending,
	"por_hacer":      StatusPending,
	"pending_triage": StatusPendingTriage,
	"en_viaje":       StatusEnRoute,
	"en_route":       StatusEnRoute,
	"scheduled":      StatusScheduled,
	"agendado":       StatusScheduled,
	"in_progress":    StatusInProgress,
	"en_progreso":    StatusInProgress,
	"haciendo":       StatusInProgress,
	"completed":      StatusCompleted,
	"completado":     StatusCompleted,
	"terminado":      StatusCompleted,
	"rejected":       StatusRejected,
	"rechazado":      StatusRejected,
	"derived":        StatusDerived,
	"derivado":       StatusDerived,
}

// LegacyLiterals returns every stored literal that normalizes to s. Queries
// filtering on status must match all of them, since old documents keep their
// original vocabulary.
func LegacyLiterals(s TicketStatus) []string {
	var out []string
	for raw, canonical := range legacyStatus {
		if canonical == s {
			out = append(out, raw)
		}
	}
	sort.Strings(out)
	return out
}

// ParseTicketStatus normalizes a raw stored status string to its canonical
// value. Unknown literals are rejected at the storage boundary instead of
// being propagated through the domain.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	if s, ok := legacyStatus[raw]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// IsTerminal reports whether no further transition is allowed from s.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusDerived:
		return true
	default:
		return false
	}
}

// Ticket is the strict internal representation of one vehicle service
// lifecycle instance (a "turno"). Instances are only built from stored
// documents through TicketFromDocument, which enforces required fields.
type Ticket struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Plate         string             `bson:"patente" json:"plate"`
	Status        TicketStatus       `bson:"estado" json:"status"`
	Description   string             `bson:"descripcion" json:"description"`
	Symptoms      []string           `bson:"sintomas,omitempty" json:"symptoms,omitempty"`
	KilometersOut *int               `bson:"kilometraje_salida,omitempty" json:"kilometraje_salida,omitempty"`
	KilometersIn  *int               `bson:"kilometraje_ingreso,omitempty" json:"kilometraje_ingreso,omitempty"`
	FuelLevel     *int               `bson:"nivel_combustible,omitempty" json:"fuel_level,omitempty"` // one of 0, 25, 50, 75, 100
	TractorCheck  map[string]bool    `bson:"checklist_tractor,omitempty" json:"checklist_tractor,omitempty"`
	CisternCheck  map[string]bool    `bson:"checklist_cisterna,omitempty" json:"checklist_cisterna,omitempty"`
	PhotoURL      string             `bson:"foto_tablero,omitempty" json:"photo_url,omitempty"`
	Priority      int                `bson:"prioridad" json:"priority"` // 1 high .. 3 low
	MechanicID    string             `bson:"mecanico_id,omitempty" json:"mechanic_id,omitempty"`
	MechanicName  string             `bson:"mecanico_nombre,omitempty" json:"mechanic_name,omitempty"`
	DriverID      string             `bson:"conductor_id,omitempty" json:"driver_id,omitempty"`
	DriverName    string             `bson:"conductor_nombre,omitempty" json:"driver_name,omitempty"`
	RejectReason  string             `bson:"motivo_rechazo,omitempty" json:"reject_reason,omitempty"`
	DerivedFrom   string             `bson:"derivado_de,omitempty" json:"derived_from,omitempty"`
	DerivedTo     string             `bson:"derivado_a,omitempty" json:"derived_to,omitempty"`
	ScheduledFor  *time.Time         `bson:"agendado_para,omitempty" json:"scheduled_for,omitempty"`
	DerivedAt     *time.Time         `bson:"derivado_en,omitempty" json:"derived_at,omitempty"`
	WorkStartedAt *time.Time         `bson:"trabajo_inicio,omitempty" json:"work_started_at,omitempty"`
	WorkEndedAt   *time.Time         `bson:"trabajo_fin,omitempty" json:"work_ended_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Distance returns the kilometers travelled during the trip covered by this
// ticket. Unknown or inconsistent readings yield zero, never a negative.
func (t *Ticket) Distance() int {
	if t.KilometersOut == nil || t.KilometersIn == nil {
		return 0
	}
	d := *t.KilometersIn - *t.KilometersOut
	if d < 0 {
		return 0
	}
	return d
}

// TicketDocument is the wire record decoded from the document store. The
// collection is schema-less: producers merged arbitrary fields over time, so
// everything here is optional and loosely typed. It is narrowed into a Ticket
// at the storage boundary.
type TicketDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Plate         string             `bson:"patente,omitempty"`
	Status        string             `bson:"estado,omitempty"`
	Description   string             `bson:"descripcion,omitempty"`
	Symptoms      []string           `bson:"sintomas,omitempty"`
	KilometersOut *int               `bson:"kilometraje_salida,omitempty"`
	KilometersIn  *int               `bson:"kilometraje_ingreso,omitempty"`
	FuelLevel     *int               `bson:"nivel_combustible,omitempty"`
	TractorCheck  map[string]bool    `bson:"checklist_tractor,omitempty"`
	CisternCheck  map[string]bool    `bson:"checklist_cisterna,omitempty"`
	PhotoURL      string             `bson:"foto_tablero,omitempty"`
	Priority      *int               `bson:"prioridad,omitempty"`
	MechanicID    string             `bson:"mecanico_id,omitempty"`
	MechanicName  string             `bson:"mecanico_nombre,omitempty"`
	DriverID      string             `bson:"conductor_id,omitempty"`
	DriverName    string             `bson:"conductor_nombre,omitempty"`
	RejectReason  string             `bson:"motivo_rechazo,omitempty"`
	DerivedFrom   string             `bson:"derivado_de,omitempty"`
	DerivedTo     string             `bson:"derivado_a,omitempty"`
	ScheduledFor  *time.Time         `bson:"agendado_para,omitempty"`
	DerivedAt     *time.Time         `bson:"derivado_en,omitempty"`
	WorkStartedAt *time.Time         `bson:"trabajo_inicio,omitempty"`
	WorkEndedAt   *time.Time         `bson:"trabajo_fin,omitempty"`
	CreatedAt     time.Time          `bson:"created_at,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty"`
}

// TicketFromDocument narrows a wire record into a strict Ticket. Documents
// missing the invariant fields (plate, status) or carrying an unknown status
// literal are rejected rather than trusted.
func TicketFromDocument(doc TicketDocument) (*Ticket, error) {
	if doc.Plate == "" {
		return nil, fmt.Errorf("ticket %s: missing plate", doc.ID.Hex())
	}
	status, err := ParseTicketStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", doc.ID.Hex(), err)
	}
	priority := 3
	if doc.Priority != nil {
		priority = *doc.Priority
	}
	return &Ticket{
		ID:            doc.ID,
		Plate:         doc.Plate,
		Status:        status,
		Description:   doc.Description,
		Symptoms:      doc.Symptoms,
		KilometersOut: doc.KilometersOut,
		KilometersIn:  doc.KilometersIn,
		FuelLevel:     doc.FuelLevel,
		TractorCheck:  doc.TractorCheck,
		CisternCheck:  doc.CisternCheck,
		PhotoURL:      doc.PhotoURL,
		Priority:      priority,
		MechanicID:    doc.MechanicID,
		MechanicName:  doc.MechanicName,
		DriverID:      doc.DriverID,
		DriverName:    doc.DriverName,
		RejectReason:  doc.RejectReason,
		DerivedFrom:   doc.DerivedFrom,
		DerivedTo:     doc.DerivedTo,
		ScheduledFor:  doc.ScheduledFor,
		DerivedAt:     doc.DerivedAt,
		WorkStartedAt: doc.WorkStartedAt,
		WorkEndedAt:   doc.WorkEndedAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}
