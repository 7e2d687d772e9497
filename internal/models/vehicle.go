package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a fleet vehicle.
//
// The three expiration fields are deliberately loose: historical producers
// stored them as ISO strings, epoch-second objects or native dates, all under
// the same logical field. They are only interpreted through the compliance
// classifier, which normalizes every known wire shape.
type Vehicle struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Plate             string             `bson:"patente" json:"plate"`
	Make              string             `bson:"marca" json:"make"`
	Model             string             `bson:"modelo" json:"model"`
	Year              int                `bson:"anio" json:"year"`
	Status            string             `bson:"estado" json:"status"` // "active", "inactive" or "in_shop"
	InspectionExpiry  any                `bson:"revision_tecnica,omitempty" json:"revision_tecnica,omitempty"`
	InsuranceExpiry   any                `bson:"seguro,omitempty" json:"seguro,omitempty"`
	RoutePermitExpiry any                `bson:"permiso_ruta,omitempty" json:"permiso_ruta,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// ComplianceDates returns the vehicle's regulatory expiration inputs in a
// fixed order: inspection, insurance, route permit.
func (v *Vehicle) ComplianceDates() []any {
	return []any{v.InspectionExpiry, v.InsuranceExpiry, v.RoutePermitExpiry}
}
