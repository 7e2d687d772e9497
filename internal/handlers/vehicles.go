package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/compliance"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/realtime"
)

// VehicleHandler handles vehicle registry and fleet compliance requests.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	events   realtime.Publisher
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles db.VehicleCollection, events realtime.Publisher) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, events: events}
}

// List handles vehicle listing, optionally filtered by status.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["estado"] = status
	}

	vehicles, err := h.vehicles.FindVehicles(r.Context(), filter)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// Get handles fetching a single vehicle by id.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Create handles registering a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	vehicle.Plate = strings.ToUpper(strings.TrimSpace(vehicle.Plate))
	if vehicle.Plate == "" {
		http.Error(w, "Plate is required", http.StatusBadRequest)
		return
	}
	if _, err := h.vehicles.FindVehicleByPlate(r.Context(), vehicle.Plate); err == nil {
		http.Error(w, "Vehicle already registered", http.StatusConflict)
		return
	}

	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		writeTicketError(w, err)
		return
	}

	log.WithField("plate", vehicle.Plate).Info("Vehicle registered")
	if h.events != nil {
		h.events.Publish(realtime.TopicVehicles, realtime.Event{
			Type:  "vehicle.created",
			Plate: vehicle.Plate,
		})
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// Update handles replacing a vehicle record.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	vehicle.Plate = strings.ToUpper(strings.TrimSpace(vehicle.Plate))

	if err := h.vehicles.UpdateVehicle(r.Context(), id, vehicle); err != nil {
		writeTicketError(w, err)
		return
	}

	if h.events != nil {
		h.events.Publish(realtime.TopicVehicles, realtime.Event{
			Type:  "vehicle.updated",
			Plate: vehicle.Plate,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle updated"})
}

// Delete handles removing a vehicle from the registry.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.vehicles.DeleteVehicle(r.Context(), id); err != nil {
		writeTicketError(w, err)
		return
	}

	log.WithField("vehicle_id", id).Info("Vehicle deleted")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted"})
}

// Compliance handles the fleet compliance dashboard: the critical/warning
// summary plus the per-vehicle document breakdown, classified at request
// time so the counts always reflect the current clock.
func (h *VehicleHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context(), bson.M{})
	if err != nil {
		writeTicketError(w, err)
		return
	}

	now := time.Now()
	breakdown := make([]compliance.VehicleCompliance, 0, len(vehicles))
	for i := range vehicles {
		breakdown = append(breakdown, compliance.ClassifyVehicle(&vehicles[i], now))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  compliance.Aggregate(vehicles, now),
		"vehicles": breakdown,
	})
}
