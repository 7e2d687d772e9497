package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ExpenseCollection defines the interface for expense data operations.
type ExpenseCollection interface {
	InsertExpense(ctx context.Context, expense models.Expense) error
	FindExpenses(ctx context.Context, plate string, from, to time.Time) ([]models.Expense, error)
}

// MongoExpenseCollection implements ExpenseCollection for MongoDB.
type MongoExpenseCollection struct {
	Collection *mongo.Collection
}

// InsertExpense inserts an expense record into the collection.
func (c *MongoExpenseCollection) InsertExpense(ctx context.Context, expense models.Expense) error {
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, expense)
	return err
}

// FindExpenses queries expenses within a date range, optionally scoped to a
// plate, oldest first.
func (c *MongoExpenseCollection) FindExpenses(ctx context.Context, plate string, from, to time.Time) ([]models.Expense, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	if plate != "" {
		filter["patente"] = plate
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var expenses []models.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Collections bundles every collection handle the service uses, bound to one
// database.
type Collections struct {
	Tickets  TicketCollection
	Vehicles VehicleCollection
	Expenses ExpenseCollection
	Users    UserCollection
}

// NewCollections binds the Mongo-backed collection set.
func NewCollections(database *mongo.Database) *Collections {
	return &Collections{
		Tickets:  &MongoTicketCollection{Collection: database.Collection("turnos")},
		Vehicles: &MongoVehicleCollection{Collection: database.Collection("vehiculos")},
		Expenses: &MongoExpenseCollection{Collection: database.Collection("gastos")},
		Users:    &MongoUserCollection{Collection: database.Collection("usuarios")},
	}
}
