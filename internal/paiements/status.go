package paiements

// Payment statuses as sent by the backend.
const (
	StatutEnAttente = "en_attente"
	StatutConfirme  = "confirme"
	StatutRejete    = "rejete"
	StatutEchoue    = "echoue"
)

// Statuses lists the statuses for the list filter.
var Statuses = []Option{
	{StatutEnAttente, "En attente"},
	{StatutConfirme, "Confirmé"},
	{StatutRejete, "Rejeté"},
	{StatutEchoue, "Échoué"},
}

// Payment methods.
const (
	MethodeEspeces     = "especes"
	MethodeWave        = "wave"
	MethodeOrangeMoney = "orange_money"
	MethodeCarte       = "carte"
	MethodeVirement    = "virement"
)

// Methods lists the payment methods for selects.
var Methods = []Option{
	{MethodeEspeces, "Espèces"},
	{MethodeWave, "Wave"},
	{MethodeOrangeMoney, "Orange Money"},
	{MethodeCarte, "Carte bancaire"},
	{MethodeVirement, "Virement"},
}

// Option is a code with its label.
type Option struct {
	Code  string
	Label string
}

// Actions on a payment.
const (
	ActionConfirm = "confirmer"
	ActionReject  = "rejeter"
	ActionVerify  = "verifier"
)

// Action is a payment action button.
type Action struct {
	Name    string
	Label   string
	Class   string
	Confirm string
}

var (
	confirmAction = Action{Name: ActionConfirm, Label: "Confirmer", Class: "btn", Confirm: "Confirmer la réception de ce paiement ?"}
	rejectAction  = Action{Name: ActionReject, Label: "Rejeter", Class: "btn danger"}
	verifyAction  = Action{Name: ActionVerify, Label: "Vérifier auprès de l'opérateur", Class: "btn"}
)

// IsGateway reports whether the method goes through a payment operator.
func IsGateway(methode string) bool {
	switch methode {
	case MethodeWave, MethodeOrangeMoney, MethodeCarte:
		return true
	}
	return false
}

// ActionsFor lists the actions offered for a payment. Only pending payments
// can be confirmed or rejected, and only pending gateway payments checked.
func ActionsFor(statut, methode string) []Action {
	if statut != StatutEnAttente {
		return nil
	}
	out := []Action{confirmAction, rejectAction}
	if IsGateway(methode) {
		out = append(out, verifyAction)
	}
	return out
}

// Allowed reports whether action is offered.
func Allowed(statut, methode, action string) bool {
	for _, a := range ActionsFor(statut, methode) {
		if a.Name == action {
			return true
		}
	}
	return false
}

// MethodLabel is the display name of a method code.
func MethodLabel(code string) string {
	return lookup(Methods, code)
}

// StatusLabel is the fallback label when the backend sends none.
func StatusLabel(code string) string {
	return lookup(Statuses, code)
}

func lookup(options []Option, code string) string {
	for _, o := range options {
		if o.Code == code {
			return o.Label
		}
	}
	return code
}
