package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// HTML assembly for the printable budget and repair reports. The rendered
// string is handed to the OS print/share integration on the client; layout
// here is presentation only.

var funcs = template.FuncMap{
	"date": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.Format("02/01/2006")
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006")
		}
		return ""
	},
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"km": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

var budgetTmpl = template.Must(template.New("budget").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Período: {{date .From}} — {{date .To}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Fecha</th><th>Patente</th><th>Categoría</th><th>Descripción</th><th>Proveedor</th><th>Monto</th></tr>
{{range .Expenses}}<tr>
<td>{{date .Date}}</td><td>{{.Plate}}</td><td>{{.Category}}</td><td>{{.Description}}</td><td>{{.Vendor}}</td><td>{{money .Amount}}</td>
</tr>
{{end}}</table>
<h3>Total: {{money .Total}}</h3>
</body>
</html>
`))

// BudgetData is the input of the budget report.
type BudgetData struct {
	Title    string
	From     time.Time
	To       time.Time
	Expenses []models.Expense
	Total    float64
}

// NewBudgetData builds the report input, summing the total.
func NewBudgetData(plate string, from, to time.Time, expenses []models.Expense) BudgetData {
	title := "Presupuesto de mantención"
	if plate != "" {
		title += " — " + plate
	}
	data := BudgetData{Title: title, From: from, To: to, Expenses: expenses}
	for _, e := range expenses {
		data.Total += e.Amount
	}
	return data
}

// RenderBudget writes the budget report HTML.
func RenderBudget(w io.Writer, data BudgetData) error {
	return budgetTmpl.Execute(w, data)
}

var statusLabels = map[models.TicketStatus]string{
	models.StatusPending:       "Pendiente",
	models.StatusPendingTriage: "Pendiente de revisión",
	models.StatusEnRoute:       "En viaje",
	models.StatusScheduled:     "Agendado",
	models.StatusInProgress:    "En progreso",
	models.StatusCompleted:     "Completado",
	models.StatusRejected:      "Rechazado",
	models.StatusDerived:       "Derivado",
}

// StatusLabel returns the display name for a canonical status.
func StatusLabel(s models.TicketStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var repairTmpl = template.Must(template.New("repair").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Orden de trabajo {{.Ticket.Plate}}</title></head>
<body>
<h1>Orden de trabajo — {{.Ticket.Plate}}</h1>
<p>Estado: <strong>{{.StatusLabel}}</strong> · Prioridad: {{.Ticket.Priority}}</p>
<p>Creado: {{date .Ticket.CreatedAt}}</p>
{{if .Ticket.Description}}<p>{{.Ticket.Description}}</p>{{end}}
{{if .Ticket.DriverName}}<p>Conductor: {{.Ticket.DriverName}}</p>{{end}}
{{if .Ticket.MechanicName}}<p>Mecánico: {{.Ticket.MechanicName}}</p>{{end}}
{{if .Ticket.KilometersOut}}<p>Kilometraje salida: {{km .Ticket.KilometersOut}} km</p>{{end}}
{{if .Ticket.KilometersIn}}<p>Kilometraje ingreso: {{km .Ticket.KilometersIn}} km ({{.Distance}} km recorridos)</p>{{end}}
{{if .Ticket.Symptoms}}<h3>Síntomas reportados</h3><ul>{{range .Ticket.Symptoms}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Ticket.RejectReason}}<p>Motivo de rechazo: {{.Ticket.RejectReason}}</p>{{end}}
{{if .Ticket.WorkStartedAt}}<p>Inicio de trabajo: {{date .Ticket.WorkStartedAt}}</p>{{end}}
{{if .Ticket.WorkEndedAt}}<p>Fin de trabajo: {{date .Ticket.WorkEndedAt}}</p>{{end}}
<p><small>Generado el {{date .Generated}}</small></p>
</body>
</html>
`))

type repairData struct {
	Ticket      *models.Ticket
	StatusLabel string
	Distance    int
	Generated   time.Time
}

// RenderRepair writes the repair order report HTML for one ticket.
func RenderRepair(w io.Writer, t *models.Ticket, now time.Time) error {
	return repairTmpl.Execute(w, repairData{
		Ticket:      t,
		StatusLabel: StatusLabel(t.Status),
		Distance:    t.Distance(),
		Generated:   now,
	})
}
