package produits

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/categories"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/produits"

// CategoryOptions feeds the category select of the form and the filters.
type CategoryOptions interface {
	Options(ctx context.Context) ([]categories.Category, error)
	Get(ctx context.Context, id int64) (categories.Category, error)
}

// Handler serves the product screens.
type Handler struct {
	service    *Service
	categories CategoryOptions
	respond    *view.Responder
	perPage    int
}

// NewHandler builds a Handler.
func NewHandler(service *Service, cats CategoryOptions, respond *view.Responder, perPage int) *Handler {
	return &Handler{service: service, categories: cats, respond: respond, perPage: perPage}
}

// MountRoutes registers the product routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.NewForm)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := shared.ParseListQuery(r.URL.Query(), h.perPage, "categorie_id", "actif", "sur_mesure")

	var (
		page api.Page[Product]
		cats []categories.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		page, err = h.service.List(ctx, query.API())
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = h.categories.Options(ctx)
		if err != nil {
			// The filter select degrades to empty, the list still shows.
			h.respond.Logger().Warn("load category options failed", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		h.respond.Logger().Error("list products failed", "error", err)
		h.respond.Render(w, r, view.Page{
			Template: "pages/produits/list.html",
			Title:    "Produits",
			Section:  "produits",
			Status:   http.StatusBadGateway,
			Data:     map[string]any{"Query": query, "Base": basePath, "Categories": cats, "Error": shared.UserSafeMessage(err)},
		})
		return
	}

	pagination := shared.PaginationFromMeta(page.Meta)
	if clamped, overflow := query.Overflow(pagination); overflow {
		http.Redirect(w, r, clamped.URL(basePath), http.StatusSeeOther)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/produits/list.html",
		Title:    "Produits",
		Section:  "produits",
		Data: map[string]any{
			"Products":   page.Items,
			"Categories": cats,
			"Pagination": pagination,
			"Query":      query,
			"Base":       basePath,
		},
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "show product", err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get product", err)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/produits/show.html",
		Title:    product.Nom,
		Section:  "produits",
		Data:     map[string]any{"Product": product},
	})
}

func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, Form{Actif: true}, nil, nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, image, fe, err := h.decode(r)
	if err != nil {
		h.respond.Fail(w, r, basePath, "parse product form", err)
		return
	}
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, form, fe, nil)
		return
	}
	created, fe, err := h.service.Create(r.Context(), form, image)
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, form, fe, nil)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, basePath+"/new", "create product", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Produit « "+created.Nom+" » créé.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "edit product", err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get product", err)
		return
	}
	h.renderForm(w, r, http.StatusOK, id, FormFrom(product), nil, &product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "update product", err)
		return
	}
	form, image, fe, err := h.decode(r)
	if err != nil {
		h.respond.Fail(w, r, editPath(id), "parse product form", err)
		return
	}
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, form, fe, h.current(r.Context(), id))
		return
	}
	updated, fe, err := h.service.Update(r.Context(), id, form, image)
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, form, fe, h.current(r.Context(), id))
		return
	}
	if err != nil {
		h.respond.Fail(w, r, editPath(id), "update product", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Produit « "+updated.Nom+" » mis à jour.")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	back := shared.SafeReturn(r.PostFormValue("return_to"), basePath)
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, back, "toggle product", err)
		return
	}
	product, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, back, "toggle product", err)
		return
	}
	msg := "Produit « " + product.Nom + " » masqué de la boutique."
	if product.Actif {
		msg = "Produit « " + product.Nom + " » visible en boutique."
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, msg)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	back := shared.SafeReturn(r.PostFormValue("return_to"), basePath)
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, back, "delete product", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respond.Fail(w, r, back, "delete product", err)
		return
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, "Produit supprimé.")
}

func (h *Handler) decode(r *http.Request) (Form, *shared.Upload, shared.FieldErrors, error) {
	if err := shared.ParseForm(r); err != nil {
		return Form{}, nil, nil, err
	}
	fe := shared.FieldErrors{}
	form := Form{
		Nom:         shared.FormString(r, "nom"),
		Description: shared.FormString(r, "description"),
		Prix:        shared.FormString(r, "prix"),
		PrixPromo:   shared.FormString(r, "prix_promo"),
		SurMesure:   shared.FormBool(r, "sur_mesure"),
		Actif:       shared.FormBool(r, "actif"),
	}
	if raw := shared.FormString(r, "categorie_id"); raw != "" {
		id, err := shared.ParseID(raw)
		if err != nil {
			fe.Add("categorie_id", "Catégorie invalide.")
		}
		form.CategorieID = id
	}
	if raw := shared.FormString(r, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			fe.Add("stock", "Nombre entier attendu.")
		}
		form.Stock = stock
	}
	image, err := shared.ReadImage(r, "image")
	if err != nil {
		fe.Add("image", shared.UploadMessage(err))
	}
	if fe.Any() {
		return form, nil, fe, nil
	}
	return form, image, nil, nil
}

// current reloads the edited product for the preview and category of a
// re-rendered form. A failure only loses them.
func (h *Handler) current(ctx context.Context, id int64) *Product {
	p, err := h.service.Get(ctx, id)
	if err != nil {
		h.respond.Logger().Warn("reload product for form failed", "id", id, "error", err)
		return nil
	}
	return &p
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form Form, fe shared.FieldErrors, current *Product) {
	cats, err := h.categories.Options(r.Context())
	if err != nil {
		h.respond.Logger().Warn("load category options failed", "error", err)
		if fe == nil {
			fe = shared.FieldErrors{}
		}
		fe.Add("categorie_id", "Impossible de charger les catégories.")
	} else if id > 0 {
		cats = h.withSelected(r.Context(), cats, form.CategorieID, current)
	}
	imageURL := ""
	if current != nil {
		imageURL = current.ImageURL
	}
	title := "Nouveau produit"
	action := basePath
	if id > 0 {
		title = "Modifier le produit"
		action = editPath(id)
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/produits/form.html",
		Title:    title,
		Section:  "produits",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Form":       form,
			"Categories": cats,
			"Action":     action,
			"ImageURL":   imageURL,
			"Cancel":     basePath,
		},
	})
}

// withSelected keeps the product's category selectable when the options
// leave it out, as for an inactive category.
func (h *Handler) withSelected(ctx context.Context, cats []categories.Category, id int64, current *Product) []categories.Category {
	if id == 0 {
		return cats
	}
	for _, c := range cats {
		if c.ID == id {
			return cats
		}
	}
	if current != nil && current.Categorie != nil && current.Categorie.ID == id {
		return append(cats, categories.Category{ID: id, Nom: current.Categorie.Nom})
	}
	c, err := h.categories.Get(ctx, id)
	if err != nil {
		h.respond.Logger().Warn("load selected category failed", "id", id, "error", err)
		return cats
	}
	return append(cats, c)
}

func editPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10) + "/edit"
}
