package commandes

// Order statuses as sent by the backend.
const (
	StatutEnAttente    = "en_attente"
	StatutConfirmee    = "confirmee"
	StatutEnProduction = "en_production"
	StatutPrete        = "prete"
	StatutLivree       = "livree"
	StatutAnnulee      = "annulee"
)

// Statuses lists the statuses in workflow order, for the list filter.
var Statuses = []struct {
	Code  string
	Label string
}{
	{StatutEnAttente, "En attente"},
	{StatutConfirmee, "Confirmée"},
	{StatutEnProduction, "En production"},
	{StatutPrete, "Prête"},
	{StatutLivree, "Livrée"},
	{StatutAnnulee, "Annulée"},
}

// Transition is a status change button.
type Transition struct {
	To      string
	Label   string
	Class   string
	Confirm string
}

var transitions = map[string][]Transition{
	StatutEnAttente: {
		{To: StatutConfirmee, Label: "Confirmer", Class: "btn"},
		{To: StatutAnnulee, Label: "Annuler la commande", Class: "btn danger", Confirm: "Annuler cette commande ?"},
	},
	StatutConfirmee: {
		{To: StatutEnProduction, Label: "Lancer la production", Class: "btn"},
		{To: StatutAnnulee, Label: "Annuler la commande", Class: "btn danger", Confirm: "Annuler cette commande ?"},
	},
	StatutEnProduction: {
		{To: StatutPrete, Label: "Marquer prête", Class: "btn"},
	},
	StatutPrete: {
		{To: StatutLivree, Label: "Marquer livrée", Class: "btn"},
	},
}

// TransitionsFrom returns the status changes offered from status. Final and
// unknown statuses offer none. The backend still decides.
func TransitionsFrom(status string) []Transition {
	out := transitions[status]
	if len(out) == 0 {
		return nil
	}
	return append([]Transition(nil), out...)
}

// CanTransition reports whether the button for from → to is offered.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t.To == to {
			return true
		}
	}
	return false
}

// StatusLabel is the fallback label when the backend sends none.
func StatusLabel(code string) string {
	for _, s := range Statuses {
		if s.Code == code {
			return s.Label
		}
	}
	return code
}
