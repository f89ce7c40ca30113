package categories

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/categories"

// Handler serves the category screens.
type Handler struct {
	service *Service
	respond *view.Responder
	perPage int
}

// NewHandler builds a Handler.
func NewHandler(service *Service, respond *view.Responder, perPage int) *Handler {
	return &Handler{service: service, respond: respond, perPage: perPage}
}

// MountRoutes registers the category routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.NewForm)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := shared.ParseListQuery(r.URL.Query(), h.perPage, "actif")
	page, err := h.service.List(r.Context(), query.API())
	if err != nil {
		h.respond.Logger().Error("list categories failed", "error", err)
		h.respond.Render(w, r, view.Page{
			Template: "pages/categories/list.html",
			Title:    "Catégories",
			Section:  "categories",
			Status:   http.StatusBadGateway,
			Data:     map[string]any{"Query": query, "Error": shared.UserSafeMessage(err), "Base": basePath},
		})
		return
	}
	pagination := shared.PaginationFromMeta(page.Meta)
	if clamped, overflow := query.Overflow(pagination); overflow {
		http.Redirect(w, r, clamped.URL(basePath), http.StatusSeeOther)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/categories/list.html",
		Title:    "Catégories",
		Section:  "categories",
		Data: map[string]any{
			"Categories": page.Items,
			"Pagination": pagination,
			"Query":      query,
			"Base":       basePath,
		},
	})
}

func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, Form{Actif: true}, nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, image, fe, err := h.decode(r)
	if err != nil {
		h.respond.Fail(w, r, basePath, "parse category form", err)
		return
	}
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, form, fe)
		return
	}
	created, fe, err := h.service.Create(r.Context(), form, image)
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, form, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, basePath+"/new", "create category", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Catégorie « "+created.Nom+" » créée.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "edit category", err)
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get category", err)
		return
	}
	h.renderFormWith(w, r, http.StatusOK, id, FormFrom(category), nil, category.ImageURL)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "update category", err)
		return
	}
	form, image, fe, err := h.decode(r)
	if err != nil {
		h.respond.Fail(w, r, editPath(id), "parse category form", err)
		return
	}
	if fe.Any() {
		h.renderFormWith(w, r, http.StatusUnprocessableEntity, id, form, fe, h.currentImage(r.Context(), id))
		return
	}
	updated, fe, err := h.service.Update(r.Context(), id, form, image)
	if fe.Any() {
		h.renderFormWith(w, r, http.StatusUnprocessableEntity, id, form, fe, h.currentImage(r.Context(), id))
		return
	}
	if err != nil {
		h.respond.Fail(w, r, editPath(id), "update category", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Catégorie « "+updated.Nom+" » mise à jour.")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	back := backTo(r)
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, back, "toggle category", err)
		return
	}
	category, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, back, "toggle category", err)
		return
	}
	msg := "Catégorie « " + category.Nom + " » désactivée."
	if category.Actif {
		msg = "Catégorie « " + category.Nom + " » activée."
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, msg)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	back := backTo(r)
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, back, "delete category", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respond.Fail(w, r, back, "delete category", err)
		return
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, "Catégorie supprimée.")
}

func (h *Handler) decode(r *http.Request) (Form, *shared.Upload, shared.FieldErrors, error) {
	if err := shared.ParseForm(r); err != nil {
		return Form{}, nil, nil, err
	}
	form := Form{
		Nom:         shared.FormString(r, "nom"),
		Description: shared.FormString(r, "description"),
		Actif:       shared.FormBool(r, "actif"),
	}
	image, err := shared.ReadImage(r, "image")
	if err != nil {
		fe := shared.FieldErrors{}
		fe.Add("image", shared.UploadMessage(err))
		return form, nil, fe, nil
	}
	return form, image, nil, nil
}

// currentImage returns the stored image of a category for the re-rendered
// edit form. The preview is dropped when the reload fails.
func (h *Handler) currentImage(ctx context.Context, id int64) string {
	c, err := h.service.Get(ctx, id)
	if err != nil {
		h.respond.Logger().Warn("reload category for form failed", "id", id, "error", err)
		return ""
	}
	return c.ImageURL
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form Form, fe shared.FieldErrors) {
	h.renderFormWith(w, r, status, id, form, fe, "")
}

func (h *Handler) renderFormWith(w http.ResponseWriter, r *http.Request, status int, id int64, form Form, fe shared.FieldErrors, imageURL string) {
	title := "Nouvelle catégorie"
	action := basePath
	if id > 0 {
		title = "Modifier la catégorie"
		action = editPath(id)
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/categories/form.html",
		Title:    title,
		Section:  "categories",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Form":     form,
			"Action":   action,
			"ImageURL": imageURL,
			"Cancel":   basePath,
		},
	})
}

func editPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10) + "/edit"
}

// backTo keeps the list position after row actions.
func backTo(r *http.Request) string {
	return shared.SafeReturn(r.PostFormValue("return_to"), basePath)
}
