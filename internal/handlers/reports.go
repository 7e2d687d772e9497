package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/report"
)

// ReportHandler renders printable HTML reports and records the expenses that
// feed them.
type ReportHandler struct {
	tickets  db.TicketCollection
	expenses db.ExpenseCollection
}

// NewReportHandler creates a new report handler.
func NewReportHandler(tickets db.TicketCollection, expenses db.ExpenseCollection) *ReportHandler {
	return &ReportHandler{tickets: tickets, expenses: expenses}
}

// CreateExpense records a maintenance expense against a plate.
func (h *ReportHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var expense models.Expense
	if err := json.Unmarshal(body, &expense); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	expense.Plate = strings.ToUpper(strings.TrimSpace(expense.Plate))
	if expense.Plate == "" {
		http.Error(w, "Plate is required", http.StatusBadRequest)
		return
	}
	if expense.Amount <= 0 {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}

	if err := h.expenses.InsertExpense(r.Context(), expense); err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// Budget renders the expense budget report for a plate and date range as
// printable HTML.
func (h *ReportHandler) Budget(w http.ResponseWriter, r *http.Request) {
	plate := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("plate")))
	from, to, err := parsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid date range, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	expenses, err := h.expenses.FindExpenses(r.Context(), plate, from, to)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderBudget(w, report.NewBudgetData(plate, from, to, expenses)); err != nil {
		log.WithError(err).Error("Failed to render budget report")
	}
}

// Repair renders the repair sheet for a single ticket as printable HTML.
func (h *ReportHandler) Repair(w http.ResponseWriter, r *http.Request) {
	t, err := h.tickets.FindTicketByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTicketError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderRepair(w, t, time.Now()); err != nil {
		log.WithError(err).Error("Failed to render repair report")
	}
}

// parsePeriod parses from/to query dates, defaulting to the last 30 days.
// The to date is inclusive of its whole day.
func parsePeriod(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
