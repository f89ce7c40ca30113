package commandes

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/produits"
	"github.com/atelier-sur-mesure/atelier-admin/internal/clients"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/commandes"

// ClientFinder looks clients up for the order form.
type ClientFinder interface {
	Search(ctx context.Context, term string) ([]clients.Client, error)
	Get(ctx context.Context, id int64) (clients.Detail, error)
}

// ProductFinder looks products up for the order form.
type ProductFinder interface {
	Options(ctx context.Context) ([]produits.Product, error)
	Get(ctx context.Context, id int64) (produits.Product, error)
}

// Handler serves the order screens and the order form.
type Handler struct {
	service  *Service
	clients  ClientFinder
	products ProductFinder
	respond  *view.Responder
	perPage  int
}

// NewHandler builds a Handler.
func NewHandler(service *Service, clientFinder ClientFinder, productFinder ProductFinder, respond *view.Responder, perPage int) *Handler {
	return &Handler{service: service, clients: clientFinder, products: productFinder, respond: respond, perPage: perPage}
}

// MountRoutes registers the order routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Route("/new", func(r chi.Router) {
		r.Get("/", h.ClientStep)
		r.Post("/client", h.SelectClient)
		r.Get("/articles", h.ArticlesStep)
		r.Post("/articles", h.AddArticle)
		r.Post("/articles/{index}/delete", h.RemoveArticle)
		r.Get("/recap", h.RecapStep)
		r.Post("/recap", h.SubmitRecap)
		r.Post("/cancel", h.Cancel)
	})
	r.Get("/{id}", h.Show)
	r.Get("/{id}/pdf", h.Sheet)
	r.Post("/{id}/statut", h.ChangeStatus)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := shared.ParseListQuery(r.URL.Query(), h.perPage, "statut", "date_debut", "date_fin")
	for _, key := range []string{"date_debut", "date_fin"} {
		if _, err := api.ParseDate(query.Filter(key)); err != nil {
			query = query.WithFilter(key, "")
		}
	}
	data := map[string]any{"Query": query, "Base": basePath, "Statuses": Statuses}
	page, err := h.service.List(r.Context(), query.API())
	if err != nil {
		h.respond.Logger().Error("list orders failed", "error", err)
		data["Error"] = shared.UserSafeMessage(err)
		h.respond.Render(w, r, view.Page{Template: "pages/commandes/list.html", Title: "Commandes", Section: "commandes", Status: http.StatusBadGateway, Data: data})
		return
	}
	pagination := shared.PaginationFromMeta(page.Meta)
	if clamped, overflow := query.Overflow(pagination); overflow {
		http.Redirect(w, r, clamped.URL(basePath), http.StatusSeeOther)
		return
	}
	data["Orders"] = page.Items
	data["Pagination"] = pagination
	h.respond.Render(w, r, view.Page{Template: "pages/commandes/list.html", Title: "Commandes", Section: "commandes", Data: data})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "show order", err)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get order", err)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/commandes/show.html",
		Title:    "Commande " + order.Reference,
		Section:  "commandes",
		Data:     map[string]any{"Order": order, "Fields": clients.Fields},
	})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "change order status", err)
		return
	}
	back := shared.SafeReturn(r.PostFormValue("return_to"), showPath(id))
	statut := shared.FormString(r, "statut")
	order, err := h.service.ChangeStatus(r.Context(), id, statut)
	if err != nil {
		h.respond.Fail(w, r, back, "change order status", err)
		return
	}
	label := order.StatutLabel
	if label == "" {
		label = StatusLabel(statut)
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, "Commande "+order.Reference+" : "+strings.ToLower(label)+".")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "delete order", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respond.Fail(w, r, shared.SafeReturn(r.PostFormValue("return_to"), showPath(id)), "delete order", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Commande supprimée.")
}

// Sheet serves the printable order sheet as PDF, or as HTML for the browser to
// print when PDF rendering is not configured.
func (h *Handler) Sheet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "order sheet", err)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get order", err)
		return
	}
	html, err := h.respond.Templates().RenderString("pages/commandes/sheet.html", view.TemplateData{
		Title: "Bon de commande " + order.Reference,
		Data:  map[string]any{"Order": order, "Fields": clients.Fields},
	})
	if err != nil {
		h.respond.Fail(w, r, showPath(id), "render order sheet", err)
		return
	}
	out, err := h.service.OrderSheet(r.Context(), html)
	if errors.Is(err, ErrPDFDisabled) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}
	if err != nil {
		h.respond.Fail(w, r, showPath(id), "order sheet pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sheetFilename(order)+`"`)
	_, _ = w.Write(out)
}

func sheetFilename(o Order) string {
	ref := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, o.Reference)
	if ref == "" {
		ref = strconv.FormatInt(o.ID, 10)
	}
	return "commande-" + ref + ".pdf"
}

// Order form, step 1: client.

func (h *Handler) ClientStep(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	selected := draft.ClientID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		if id, err := shared.ParseID(raw); err == nil {
			selected = id
		}
	}
	h.renderClientStep(w, r, http.StatusOK, draft, selected, nil)
}

func (h *Handler) SelectClient(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	id, err := shared.ParseID(r.PostFormValue("client_id"))
	if err != nil {
		fe := shared.FieldErrors{}
		fe.Add("client_id", "Choisissez un client.")
		h.renderClientStep(w, r, http.StatusUnprocessableEntity, draft, 0, fe)
		return
	}
	detail, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath+"/new", "select order client", err)
		return
	}
	draft.SetClient(detail.ID, detail.FullName())
	if !h.save(w, r, draft) {
		return
	}
	http.Redirect(w, r, basePath+"/new/articles", http.StatusSeeOther)
}

func (h *Handler) renderClientStep(w http.ResponseWriter, r *http.Request, status int, draft Draft, selected int64, fe shared.FieldErrors) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	found, err := h.clients.Search(r.Context(), term)
	if err != nil {
		h.respond.Logger().Error("search clients failed", "error", err)
		if fe == nil {
			fe = shared.FieldErrors{}
		}
		fe.Add("client_id", shared.UserSafeMessage(err))
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/commandes/step_client.html",
		Title:    "Nouvelle commande",
		Section:  "commandes",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Draft":    draft,
			"Step":     StepClient,
			"Clients":  found,
			"Term":     term,
			"Selected": selected,
		},
	})
}

// Order form, step 2: articles.

func (h *Handler) ArticlesStep(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	if draft.ClientID == 0 {
		http.Redirect(w, r, basePath+"/new", http.StatusSeeOther)
		return
	}
	h.renderArticlesStep(w, r, http.StatusOK, draft, lineInput{Quantite: "1"}, nil)
}

// lineInput is the raw add-line form, shown back on error.
type lineInput struct {
	ProduitID        int64
	Quantite         string
	PrixUnitaire     string
	UseClientMesures bool
	Mesures          map[string]string
}

// Value returns the raw measurement input for key.
func (l lineInput) Value(key string) string {
	return l.Mesures[key]
}

func (h *Handler) AddArticle(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	if draft.ClientID == 0 {
		http.Redirect(w, r, basePath+"/new", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, basePath+"/new/articles", "parse order line", err)
		return
	}
	in := lineInput{
		Quantite:         shared.FormString(r, "quantite"),
		PrixUnitaire:     shared.FormString(r, "prix_unitaire"),
		UseClientMesures: shared.FormBool(r, "use_client_mesures"),
	}
	raw, mesures, fe := clients.ParseValues(r.PostFormValue, "mesure_")
	in.Mesures = raw

	id, err := shared.ParseID(r.PostFormValue("produit_id"))
	if err != nil {
		fe.Add("produit_id", "Choisissez un produit.")
	}
	in.ProduitID = id
	quantite, err := strconv.Atoi(in.Quantite)
	if err != nil || quantite < 1 || quantite > MaxLineQuantity {
		fe.Add("quantite", "La quantité doit être comprise entre 1 et "+strconv.Itoa(MaxLineQuantity)+".")
	}
	var prix decimal.Decimal
	if in.PrixUnitaire != "" {
		prix, err = shared.ParseAmount(in.PrixUnitaire)
		if err != nil || prix.IsNegative() {
			fe.Add("prix_unitaire", "Prix invalide.")
		}
	}
	if fe.Any() {
		h.renderArticlesStep(w, r, http.StatusUnprocessableEntity, draft, in, fe)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath+"/new/articles", "get order product", err)
		return
	}
	if in.PrixUnitaire == "" {
		prix = product.UnitPrice()
	}
	line := DraftLine{
		ProduitID:    product.ID,
		ProduitNom:   product.Nom,
		SurMesure:    bool(product.SurMesure),
		Quantite:     quantite,
		PrixUnitaire: prix.Round(2),
	}
	if line.SurMesure {
		if len(mesures) == 0 && in.UseClientMesures {
			mesures, err = h.latestMesures(r.Context(), draft.ClientID)
			if err != nil {
				h.respond.Fail(w, r, basePath+"/new/articles", "load client measurements", err)
				return
			}
		}
		if len(mesures) > 0 {
			line.Mesures = mesures
		}
	}
	if err := draft.AddLine(line); err != nil {
		if errors.Is(err, ErrQuantityLimit) {
			fe.Add("quantite", "La quantité d'un même article est limitée à "+strconv.Itoa(MaxLineQuantity)+".")
		} else {
			fe.Add("produit_id", "Une commande est limitée à "+strconv.Itoa(MaxDraftLines)+" articles.")
		}
		h.renderArticlesStep(w, r, http.StatusUnprocessableEntity, draft, in, fe)
		return
	}
	if !h.save(w, r, draft) {
		return
	}
	h.respond.Redirect(w, r, basePath+"/new/articles", shared.FlashSuccess, "Article « "+product.Nom+" » ajouté.")
}

func (h *Handler) RemoveArticle(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		draft.RemoveLine(index)
		if !h.save(w, r, draft) {
			return
		}
	}
	http.Redirect(w, r, basePath+"/new/articles", http.StatusSeeOther)
}

func (h *Handler) latestMesures(ctx context.Context, clientID int64) (map[string]decimal.Decimal, error) {
	detail, err := h.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	var latest *clients.Mesures
	for i := range detail.Mesures {
		m := &detail.Mesures[i]
		if latest == nil || m.UpdatedAt.After(latest.UpdatedAt.Time) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Valeurs, nil
}

func (h *Handler) renderArticlesStep(w http.ResponseWriter, r *http.Request, status int, draft Draft, in lineInput, fe shared.FieldErrors) {
	var (
		products []produits.Product
		detail   clients.Detail
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		products, err = h.products.Options(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		detail, err = h.clients.Get(ctx, draft.ClientID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.respond.Fail(w, r, basePath, "load order form", err)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/commandes/step_articles.html",
		Title:    "Nouvelle commande",
		Section:  "commandes",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Draft":      draft,
			"Step":       StepArticles,
			"Summary":    draft.Summary(),
			"Products":   products,
			"Client":     detail,
			"HasMesures": len(detail.Mesures) > 0,
			"Input":      in,
			"Fields":     clients.Fields,
		},
	})
}

// Order form, step 3: recap and submit.

// recapInput is the raw recap form, shown back on error.
type recapInput struct {
	DateLivraison string
	Remise        string
	Acompte       string
	Notes         string
}

func recapFrom(d Draft) recapInput {
	in := recapInput{DateLivraison: d.DateLivraison.FormValue(), Notes: d.Notes}
	if !d.Remise.IsZero() {
		in.Remise = d.Remise.String()
	}
	if !d.Acompte.IsZero() {
		in.Acompte = d.Acompte.String()
	}
	return in
}

func (h *Handler) RecapStep(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	if step := draft.Step(); step != StepRecap {
		http.Redirect(w, r, stepPath(step), http.StatusSeeOther)
		return
	}
	h.renderRecap(w, r, http.StatusOK, draft, recapFrom(draft), nil)
}

func (h *Handler) SubmitRecap(w http.ResponseWriter, r *http.Request) {
	draft := h.draft(r)
	if step := draft.Step(); step != StepRecap {
		http.Redirect(w, r, stepPath(step), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, basePath+"/new/recap", "parse order recap", err)
		return
	}
	in := recapInput{
		DateLivraison: shared.FormString(r, "date_livraison"),
		Remise:        shared.FormString(r, "remise"),
		Acompte:       shared.FormString(r, "acompte"),
		Notes:         shared.FormString(r, "notes"),
	}
	fe := shared.FieldErrors{}
	date, err := api.ParseDate(in.DateLivraison)
	if err != nil {
		fe.Add("date_livraison", "Date invalide.")
	}
	remise, err := shared.ParseAmount(in.Remise)
	if err != nil {
		fe.Add("remise", "Montant invalide.")
	}
	acompte, err := shared.ParseAmount(in.Acompte)
	if err != nil {
		fe.Add("acompte", "Montant invalide.")
	}
	if fe.Any() {
		h.renderRecap(w, r, http.StatusUnprocessableEntity, draft, in, fe)
		return
	}
	draft.DateLivraison = date
	draft.Remise = remise
	draft.Acompte = acompte
	draft.Notes = in.Notes

	if r.PostFormValue("action") != "submit" {
		// Recalculate only: keep the inputs and show the new summary.
		if !h.save(w, r, draft) {
			return
		}
		h.renderRecap(w, r, http.StatusOK, draft, recapFrom(draft), nil)
		return
	}

	order, fe, err := h.service.Submit(r.Context(), draft)
	if fe.Any() {
		if err != nil {
			h.respond.Logger().Warn("order rejected by backend", "error", err)
		}
		_ = h.save(w, r, draft)
		h.renderRecap(w, r, http.StatusUnprocessableEntity, draft, in, fe)
		return
	}
	if err != nil {
		_ = h.save(w, r, draft)
		h.respond.Fail(w, r, basePath+"/new/recap", "create order", err)
		return
	}
	ClearDraft(shared.SessionFromContext(r.Context()))
	h.respond.Redirect(w, r, showPath(order.ID), shared.FlashSuccess, "Commande "+order.Reference+" créée.")
}

func (h *Handler) renderRecap(w http.ResponseWriter, r *http.Request, status int, draft Draft, in recapInput, fe shared.FieldErrors) {
	h.respond.Render(w, r, view.Page{
		Template: "pages/commandes/step_recap.html",
		Title:    "Nouvelle commande",
		Section:  "commandes",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Draft":   draft,
			"Step":    StepRecap,
			"Summary": draft.Summary(),
			"Input":   in,
			"Fields":  clients.Fields,
		},
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ClearDraft(shared.SessionFromContext(r.Context()))
	h.respond.Redirect(w, r, basePath, shared.FlashInfo, "Saisie de la commande annulée.")
}

func (h *Handler) draft(r *http.Request) Draft {
	d, err := LoadDraft(shared.SessionFromContext(r.Context()))
	if err != nil {
		h.respond.Logger().Warn("order draft dropped", "error", err)
	}
	return d
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, d Draft) bool {
	if err := SaveDraft(shared.SessionFromContext(r.Context()), d); err != nil {
		h.respond.Fail(w, r, basePath, "save order draft", err)
		return false
	}
	return true
}

func stepPath(step string) string {
	switch step {
	case StepClient:
		return basePath + "/new"
	case StepArticles:
		return basePath + "/new/articles"
	}
	return basePath + "/new/recap"
}

func showPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
