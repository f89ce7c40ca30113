package paiements

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-sur-mesure/atelier-admin/internal/commandes"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/paiements"

// OrderFinder loads the order a manual payment is recorded against.
type OrderFinder interface {
	Get(ctx context.Context, id int64) (commandes.Order, error)
}

// Handler serves the payment screens.
type Handler struct {
	service *Service
	orders  OrderFinder
	respond *view.Responder
	perPage int
}

// NewHandler builds a Handler.
func NewHandler(service *Service, orders OrderFinder, respond *view.Responder, perPage int) *Handler {
	return &Handler{service: service, orders: orders, respond: respond, perPage: perPage}
}

// MountRoutes registers the payment routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.NewForm)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/confirmer", h.Confirm)
	r.Post("/{id}/rejeter", h.Reject)
	r.Post("/{id}/verifier", h.Verify)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := shared.ParseListQuery(r.URL.Query(), h.perPage, "statut", "methode")

	var (
		page  api.Page[Payment]
		stats Stats
	)
	hasStats := true
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		page, err = h.service.List(ctx, query.API())
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = h.service.Stats(ctx)
		if err != nil {
			h.respond.Logger().Warn("load payment stats failed", "error", err)
			hasStats = false
		}
		return nil
	})
	data := map[string]any{"Query": query, "Base": basePath, "Statuses": Statuses, "Methods": Methods}
	if err := g.Wait(); err != nil {
		h.respond.Logger().Error("list payments failed", "error", err)
		data["Error"] = shared.UserSafeMessage(err)
		h.respond.Render(w, r, view.Page{Template: "pages/paiements/list.html", Title: "Paiements", Section: "paiements", Status: http.StatusBadGateway, Data: data})
		return
	}
	pagination := shared.PaginationFromMeta(page.Meta)
	if clamped, overflow := query.Overflow(pagination); overflow {
		http.Redirect(w, r, clamped.URL(basePath), http.StatusSeeOther)
		return
	}
	data["Payments"] = page.Items
	data["Pagination"] = pagination
	if hasStats {
		data["Stats"] = stats
	}
	h.respond.Render(w, r, view.Page{Template: "pages/paiements/list.html", Title: "Paiements", Section: "paiements", Data: data})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "show payment", err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get payment", err)
		return
	}
	h.renderShow(w, r, http.StatusOK, p, RejectForm{}, nil)
}

func (h *Handler) renderShow(w http.ResponseWriter, r *http.Request, status int, p Payment, reject RejectForm, fe shared.FieldErrors) {
	h.respond.Render(w, r, view.Page{
		Template: "pages/paiements/show.html",
		Title:    "Paiement " + p.Reference,
		Section:  "paiements",
		Status:   status,
		Errors:   fe,
		Data:     map[string]any{"Payment": p, "Reject": reject},
	})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "confirm payment", err)
		return
	}
	back := shared.SafeReturn(r.PostFormValue("return_to"), showPath(id))
	p, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, back, "confirm payment", err)
		return
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, "Paiement "+p.Reference+" confirmé.")
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "reject payment", err)
		return
	}
	form := RejectForm{Motif: r.PostFormValue("motif")}
	p, fe, err := h.service.Reject(r.Context(), id, form)
	if fe.Any() {
		current, getErr := h.service.Get(r.Context(), id)
		if getErr != nil {
			h.respond.Fail(w, r, basePath, "get payment", getErr)
			return
		}
		h.renderShow(w, r, http.StatusUnprocessableEntity, current, form, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, showPath(id), "reject payment", err)
		return
	}
	h.respond.Redirect(w, r, showPath(id), shared.FlashSuccess, "Paiement "+p.Reference+" rejeté.")
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "verify payment", err)
		return
	}
	p, err := h.service.Verify(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, showPath(id), "verify payment", err)
		return
	}
	label := p.StatutLabel
	if label == "" {
		label = StatusLabel(p.Statut)
	}
	kind := shared.FlashInfo
	if p.Statut == StatutConfirme {
		kind = shared.FlashSuccess
	}
	h.respond.Redirect(w, r, showPath(id), kind, "Statut chez l'opérateur : "+strings.ToLower(label)+".")
}

func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	form := Form{Methode: MethodeEspeces}
	var order *commandes.Order
	if raw := r.URL.Query().Get("commande_id"); raw != "" {
		id, err := shared.ParseID(raw)
		if err != nil {
			h.respond.Fail(w, r, basePath, "payment form", err)
			return
		}
		o, err := h.orders.Get(r.Context(), id)
		if err != nil {
			h.respond.Fail(w, r, "/commandes", "get payment order", err)
			return
		}
		order = &o
		form.CommandeID = o.ID
		if o.ResteAPayer.IsPositive() {
			form.Montant = o.ResteAPayer.String()
		}
	}
	h.renderForm(w, r, http.StatusOK, form, order, nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, basePath, "parse payment form", err)
		return
	}
	form := Form{
		Montant:       shared.FormString(r, "montant"),
		Methode:       shared.FormString(r, "methode"),
		TransactionID: shared.FormString(r, "transaction_id"),
		Notes:         shared.FormString(r, "notes"),
	}
	var order *commandes.Order
	var due *decimal.Decimal
	if id, err := shared.ParseID(r.PostFormValue("commande_id")); err == nil {
		form.CommandeID = id
		o, err := h.orders.Get(r.Context(), id)
		if err != nil {
			h.respond.Fail(w, r, basePath, "get payment order", err)
			return
		}
		order = &o
		due = &o.ResteAPayer
	}
	p, fe, err := h.service.Record(r.Context(), form, due)
	if fe.Any() {
		if fe.Has("commande_id") {
			fe["commande_id"] = "Choisissez une commande."
		}
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, order, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, basePath, "record payment", err)
		return
	}
	location := showPath(p.ID)
	if order != nil {
		location = "/commandes/" + strconv.FormatInt(order.ID, 10)
	}
	h.respond.Redirect(w, r, location, shared.FlashSuccess, "Paiement "+p.Reference+" enregistré.")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form Form, order *commandes.Order, fe shared.FieldErrors) {
	h.respond.Render(w, r, view.Page{
		Template: "pages/paiements/form.html",
		Title:    "Enregistrer un paiement",
		Section:  "paiements",
		Status:   status,
		Errors:   fe,
		Data:     map[string]any{"Form": form, "Order": order, "Methods": Methods},
	})
}

func showPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
