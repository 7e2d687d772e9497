package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/ticket"
)

// TicketQuery is the supported filter surface for listing tickets: equality
// and in-filters plus order-by and limit, matching what the dashboard
// screens ask for.
type TicketQuery struct {
	Statuses   []models.TicketStatus
	Plate      string
	MechanicID string
	DriverID   string
	SortBy     string // stored field name, default created_at
	Descending bool
	Limit      int64
}

// TicketCollection defines the interface for ticket database operations.
type TicketCollection interface {
	InsertTicket(ctx context.Context, t *models.Ticket) (string, error)
	FindTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	FindTickets(ctx context.Context, q TicketQuery) ([]models.Ticket, error)
	ApplyPatch(ctx context.Context, id string, patch ticket.Patch) error
	DeleteTicket(ctx context.Context, id string) error
}

// MongoTicketCollection implements TicketCollection for MongoDB.
type MongoTicketCollection struct {
	Collection *mongo.Collection
}

// InsertTicket inserts a new ticket and returns its assigned id.
func (c *MongoTicketCollection) InsertTicket(ctx context.Context, t *models.Ticket) (string, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, t)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	t.ID = id
	return id.Hex(), nil
}

// FindTicketByID finds a ticket by its id, narrowing the stored document
// into the strict domain type.
func (c *MongoTicketCollection) FindTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket id: %w", err)
	}
	var doc models.TicketDocument
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return models.TicketFromDocument(doc)
}

// FindTickets lists tickets matching the query. Documents that fail
// narrowing (missing plate, unknown status literal) are skipped and logged
// rather than propagated.
func (c *MongoTicketCollection) FindTickets(ctx context.Context, q TicketQuery) ([]models.Ticket, error) {
	filter := bson.M{}
	if len(q.Statuses) > 0 {
		var literals []string
		for _, s := range q.Statuses {
			literals = append(literals, models.LegacyLiterals(s)...)
		}
		filter["estado"] = bson.M{"$in": literals}
	}
	if q.Plate != "" {
		filter["patente"] = q.Plate
	}
	if q.MechanicID != "" {
		filter["mecanico_id"] = q.MechanicID
	}
	if q.DriverID != "" {
		filter["conductor_id"] = q.DriverID
	}

	sortField := q.SortBy
	if sortField == "" {
		sortField = "created_at"
	}
	order := 1
	if q.Descending {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: order}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.TicketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(docs))
	for _, doc := range docs {
		t, err := models.TicketFromDocument(doc)
		if err != nil {
			log.WithError(err).WithField("ticket_id", doc.ID.Hex()).
				Warn("skipping malformed ticket document")
			continue
		}
		tickets = append(tickets, *t)
	}
	return tickets, nil
}

// ApplyPatch applies a validated field patch as a merge update. Fields not
// named in the patch are untouched; concurrent writers follow last-write-wins
// per field.
func (c *MongoTicketCollection) ApplyPatch(ctx context.Context, id string, patch ticket.Patch) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid ticket id: %w", err)
	}
	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTicket removes a ticket document. Admin-only destructive operation;
// the normal lifecycle soft-completes instead.
func (c *MongoTicketCollection) DeleteTicket(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid ticket id: %w", err)
	}
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
