package ticket

// Inspection checklist vocabularies. The tractor-unit and cistern lists are
// kept as two distinct schemas: they cover different physical scopes and the
// stored documents use both id sets.

// TractorChecklistItems are the checkout inspection points for the tractor
// unit.
var TractorChecklistItems = []string{
	"luces",
	"frenos",
	"neumaticos",
	"nivel_aceite",
	"nivel_refrigerante",
	"espejos",
	"parabrisas",
	"extintor",
	"botiquin",
	"conos",
	"cinturones",
	"documentacion",
}

// CisternChecklistItems are the check-in inspection points for the tank
// trailer.
var CisternChecklistItems = []string{
	"valvulas",
	"mangueras",
	"tapa_estanque",
	"sellos",
	"escalera",
	"barandas",
	"conexion_tierra",
	"kit_derrame",
}

// checklistComplete reports whether every item of the schema was explicitly
// answered true.
func checklistComplete(schema []string, values map[string]bool) bool {
	for _, item := range schema {
		if !values[item] {
			return false
		}
	}
	return true
}

// checklistAnswered reports whether every item of the schema is present,
// regardless of its value.
func checklistAnswered(schema []string, values map[string]bool) bool {
	for _, item := range schema {
		if _, ok := values[item]; !ok {
			return false
		}
	}
	return true
}

// checklistHasFailure reports whether any answered item is false.
func checklistHasFailure(values map[string]bool) bool {
	for _, ok := range values {
		if !ok {
			return true
		}
	}
	return false
}
