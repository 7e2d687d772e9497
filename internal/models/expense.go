package models

import (
	"time"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense represents one maintenance spend entry, the line-item source for
// budget reports.
type Expense struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TicketID      string            `json:"ticket_id" bson:"ticket_id"`
	Plate         string            `json:"plate" bson:"patente"`
	Category      string            `json:"category" bson:"category"` // "parts", "labor", "insurance", "inspection", "other"
	Description   string            `json:"description" bson:"description"`
	Amount        float64           `json:"amount" bson:"amount"`
	Date          time.Time         `json:"date" bson:"date"`
	InvoiceNumber string            `json:"invoice_number" bson:"invoice_number"`
	Vendor        string            `json:"vendor" bson:"vendor"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
}
