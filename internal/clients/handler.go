package clients

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/clients"

// Handler serves the client screens.
type Handler struct {
	service *Service
	respond *view.Responder
	perPage int
}

// NewHandler builds a Handler.
func NewHandler(service *Service, respond *view.Responder, perPage int) *Handler {
	return &Handler{service: service, respond: respond, perPage: perPage}
}

// MountRoutes registers the client routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.NewForm)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/delete", h.Delete)
	r.Post("/{id}/mesures", h.SaveMesures)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := shared.ParseListQuery(r.URL.Query(), h.perPage, "ville")
	page, err := h.service.List(r.Context(), query.API())
	if err != nil {
		h.respond.Logger().Error("list clients failed", "error", err)
		h.respond.Render(w, r, view.Page{
			Template: "pages/clients/list.html",
			Title:    "Clients",
			Section:  "clients",
			Status:   http.StatusBadGateway,
			Data:     map[string]any{"Query": query, "Base": basePath, "Error": shared.UserSafeMessage(err)},
		})
		return
	}
	pagination := shared.PaginationFromMeta(page.Meta)
	if clamped, overflow := query.Overflow(pagination); overflow {
		http.Redirect(w, r, clamped.URL(basePath), http.StatusSeeOther)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/clients/list.html",
		Title:    "Clients",
		Section:  "clients",
		Data: map[string]any{
			"Clients":    page.Items,
			"Pagination": pagination,
			"Query":      query,
			"Base":       basePath,
		},
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "show client", err)
		return
	}
	h.renderShow(w, r, http.StatusOK, id, MesuresForm{}, nil)
}

func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, Form{}, nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, basePath, "parse client form", err)
		return
	}
	form := decodeForm(r)
	created, fe, err := h.service.Create(r.Context(), form)
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, form, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, basePath+"/new", "create client", err)
		return
	}
	h.respond.Redirect(w, r, showPath(created.ID), shared.FlashSuccess, "Client « "+created.FullName()+" » créé.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "edit client", err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get client", err)
		return
	}
	h.renderForm(w, r, http.StatusOK, id, FormFrom(detail.Client), nil)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "update client", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, editPath(id), "parse client form", err)
		return
	}
	form := decodeForm(r)
	updated, fe, err := h.service.Update(r.Context(), id, form)
	if fe.Any() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, form, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, editPath(id), "update client", err)
		return
	}
	h.respond.Redirect(w, r, showPath(id), shared.FlashSuccess, "Client « "+updated.FullName()+" » mis à jour.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	back := shared.SafeReturn(r.PostFormValue("return_to"), basePath)
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, back, "delete client", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respond.Fail(w, r, back, "delete client", err)
		return
	}
	h.respond.Redirect(w, r, basePath, shared.FlashSuccess, "Client supprimé.")
}

func (h *Handler) SaveMesures(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Fail(w, r, basePath, "save measurements", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.respond.Fail(w, r, showPath(id), "parse measurements form", err)
		return
	}
	form := MesuresForm{
		TypeVetement: shared.FormString(r, "type_vetement"),
		Notes:        shared.FormString(r, "notes"),
		Values:       make(map[string]string, len(Fields)),
	}
	for _, f := range Fields {
		if v := shared.FormString(r, "mesure_"+f.Key); v != "" {
			form.Values[f.Key] = v
		}
	}
	_, fe, err := h.service.SaveMesures(r.Context(), id, form)
	if fe.Any() {
		h.renderShow(w, r, http.StatusUnprocessableEntity, id, form, fe)
		return
	}
	if err != nil {
		h.respond.Fail(w, r, showPath(id), "save measurements", err)
		return
	}
	h.respond.Redirect(w, r, showPath(id), shared.FlashSuccess, "Mesures enregistrées.")
}

func (h *Handler) renderShow(w http.ResponseWriter, r *http.Request, status int, id int64, form MesuresForm, fe shared.FieldErrors) {
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, basePath, "get client", err)
		return
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/clients/show.html",
		Title:    detail.FullName(),
		Section:  "clients",
		Status:   status,
		Errors:   fe,
		Data: map[string]any{
			"Client":       detail,
			"MesuresForm":  form,
			"Fields":       Fields,
			"GarmentTypes": GarmentTypes,
		},
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form Form, fe shared.FieldErrors) {
	title := "Nouveau client"
	action := basePath
	cancel := basePath
	if id > 0 {
		title = "Modifier le client"
		action = editPath(id)
		cancel = showPath(id)
	}
	h.respond.Render(w, r, view.Page{
		Template: "pages/clients/form.html",
		Title:    title,
		Section:  "clients",
		Status:   status,
		Errors:   fe,
		Data:     map[string]any{"Form": form, "Action": action, "Cancel": cancel},
	})
}

func decodeForm(r *http.Request) Form {
	return Form{
		Nom:       shared.FormString(r, "nom"),
		Prenom:    shared.FormString(r, "prenom"),
		Telephone: shared.FormString(r, "telephone"),
		Email:     shared.FormString(r, "email"),
		Adresse:   shared.FormString(r, "adresse"),
		Ville:     shared.FormString(r, "ville"),
		Genre:     shared.FormString(r, "genre"),
		Notes:     shared.FormString(r, "notes"),
	}
}

func showPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}

func editPath(id int64) string {
	return showPath(id) + "/edit"
}
