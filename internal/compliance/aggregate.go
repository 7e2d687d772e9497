package compliance

import (
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Summary is the fleet-wide dashboard badge: how many vehicles need
// immediate attention and how many are approaching a deadline.
type Summary struct {
	CriticalCount int `json:"critical_count"`
	WarningCount  int `json:"warning_count"`
}

// VehicleCompliance is the per-vehicle breakdown behind the summary.
type VehicleCompliance struct {
	Plate       string    `json:"plate"`
	Inspection  DocStatus `json:"revision_tecnica"`
	Insurance   DocStatus `json:"seguro"`
	RoutePermit DocStatus `json:"permiso_ruta"`
	Worst       Tier      `json:"worst"`
}

// ClassifyVehicle classifies all three regulatory dates of a vehicle.
func ClassifyVehicle(v *models.Vehicle, now time.Time) VehicleCompliance {
	vc := VehicleCompliance{
		Plate:       v.Plate,
		Inspection:  Classify(v.InspectionExpiry, now),
		Insurance:   Classify(v.InsuranceExpiry, now),
		RoutePermit: Classify(v.RoutePermitExpiry, now),
	}
	vc.Worst = worstTier(vc.Inspection.Tier, vc.Insurance.Tier, vc.RoutePermit.Tier)
	return vc
}

// Aggregate reduces the fleet into the dashboard counts. A vehicle with any
// expired or critical document counts as critical; otherwise any warning
// document counts it as warning. Critical takes precedence, so no vehicle is
// counted twice.
func Aggregate(vehicles []models.Vehicle, now time.Time) Summary {
	var s Summary
	for i := range vehicles {
		switch worst := ClassifyVehicle(&vehicles[i], now).Worst; worst {
		case TierExpired, TierCritical:
			s.CriticalCount++
		case TierWarning:
			s.WarningCount++
		}
	}
	return s
}

var tierSeverity = map[Tier]int{
	TierOK:       0,
	TierWarning:  1,
	TierCritical: 2,
	TierExpired:  3,
}

func worstTier(tiers ...Tier) Tier {
	worst := TierOK
	for _, t := range tiers {
		if tierSeverity[t] > tierSeverity[worst] {
			worst = t
		}
	}
	return worst
}
