package commandes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/produits"
	"github.com/atelier-sur-mesure/atelier-admin/internal/clients"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/pdf"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/testing/webtest"
)

var (
	clientAwa = map[string]any{
		"id": 12, "nom": "Diop", "prenom": "Awa", "telephone": "771234567",
		"mesures": []map[string]any{
			{"id": 1, "type_vetement": "robe", "mesures": map[string]any{"tour_taille": 68}, "updated_at": "2025-01-10"},
			{"id": 2, "type_vetement": "robe", "mesures": map[string]any{"tour_taille": 70}, "updated_at": "2026-02-01"},
		},
	}
	productBoubou = map[string]any{"id": 9, "nom": "Boubou", "prix": "45000", "prix_promo": "39000", "sur_mesure": false, "actif": true}
	productRobe   = map[string]any{"id": 10, "nom": "Robe de soirée", "prix": "60000", "prix_promo": nil, "sur_mesure": true, "actif": true}
)

type orderBackend struct {
	*webtest.Backend
	order map[string]any
}

func newOrderBackend(t *testing.T) *orderBackend {
	t.Helper()
	b := &orderBackend{order: map[string]any{
		"id": 77, "reference": "CMD-2026-0077", "statut": StatutEnAttente,
		"client":   map[string]any{"id": 12, "nom": "Diop", "prenom": "Awa"},
		"articles": []map[string]any{{"produit_id": 9, "produit_nom": "Boubou", "quantite": 2, "prix_unitaire": "39000", "sous_total": "78000"}},
		"montant_total": "78000", "reste_a_payer": "78000",
	}}
	b.Backend = webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/clients":
			webtest.OK(w, webtest.Paginated([]any{clientAwa}, 1, 1, 20, 1))
		case r.URL.Path == "/clients/12":
			webtest.OK(w, clientAwa)
		case r.URL.Path == "/produits":
			webtest.OK(w, webtest.Paginated([]any{productBoubou, productRobe}, 1, 1, 100, 2))
		case r.URL.Path == "/produits/9":
			webtest.OK(w, productBoubou)
		case r.URL.Path == "/produits/10":
			webtest.OK(w, productRobe)
		case r.URL.Path == "/commandes" && r.Method == http.MethodPost:
			webtest.OK(w, b.order)
		case r.URL.Path == "/commandes/77" && r.Method == http.MethodGet:
			webtest.OK(w, b.order)
		case r.URL.Path == "/commandes/77/statut":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			updated := map[string]any{"id": 77, "reference": "CMD-2026-0077", "statut": body["statut"]}
			webtest.OK(w, updated)
		default:
			webtest.Fail(w, http.StatusNotFound, "introuvable")
		}
	})
	return b
}

type fakeRenderer struct {
	html string
}

func (f *fakeRenderer) RenderHTML(_ context.Context, html string, _ pdf.Options) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.7"), nil
}

func newBrowser(t *testing.T, backend *webtest.Backend, renderer Renderer) *webtest.Browser {
	t.Helper()
	clientSvc := clients.NewService(clients.NewRepository(backend.Client))
	productSvc := produits.NewService(produits.NewRepository(backend.Client))
	handler := NewHandler(NewService(NewRepository(backend.Client), renderer), clientSvc, productSvc, webtest.Responder(t), 15)
	return webtest.NewBrowser(t, "/commandes", handler.MountRoutes)
}

func TestOrderFormFullFlow(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.Get("/commandes/new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Awa Diop")

	rec = browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/new/articles", rec.Header().Get("Location"))

	rec = browser.Get("/commandes/new/articles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Robe de soirée")

	rec = browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"9"}, "quantite": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"10"}, "quantite": {"1"}, "use_client_mesures": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	draft, err := LoadDraft(browser.Session)
	require.NoError(t, err)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, "39000", draft.Lines[0].PrixUnitaire.String())
	assert.Equal(t, "70", draft.Lines[1].Mesure("tour_taille"))

	rec = browser.Get("/commandes/new/recap")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = browser.PostForm("/commandes/new/recap", url.Values{"remise": {"3000"}, "acompte": {"20000"}, "notes": {"Livrer au magasin"}, "action": {"submit"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/77", rec.Header().Get("Location"))

	var created createPayloadJSON
	for _, c := range backend.Calls() {
		if c.Method == http.MethodPost && c.Path == "/commandes" {
			require.NoError(t, json.Unmarshal(c.Body, &created))
		}
	}
	assert.Equal(t, int64(12), created.ClientID)
	require.Len(t, created.Articles, 2)
	assert.Equal(t, 2, created.Articles[0].Quantite)
	assert.Equal(t, "39000", created.Articles[0].PrixUnitaire)
	assert.Equal(t, map[string]string{"tour_taille": "70"}, created.Articles[1].Mesures)
	assert.Equal(t, "3000", created.Remise)
	assert.Equal(t, "20000", created.Acompte)
	assert.Equal(t, "Livrer au magasin", created.Notes)

	after, err := LoadDraft(browser.Session)
	require.NoError(t, err)
	assert.Equal(t, Draft{}, after)
}

type createPayloadJSON struct {
	ClientID int64 `json:"client_id"`
	Articles []struct {
		Quantite     int               `json:"quantite"`
		PrixUnitaire string            `json:"prix_unitaire"`
		Mesures      map[string]string `json:"mesures"`
	} `json:"articles"`
	Remise  string `json:"remise"`
	Acompte string `json:"acompte"`
	Notes   string `json:"notes"`
}

func TestOrderFormRecalculateKeepsDraft(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)
	browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})
	browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"10"}, "quantite": {"1"}})

	rec := browser.PostForm("/commandes/new/recap", url.Values{"remise": {"100000"}, "acompte": {"5000"}, "action": {"update"}})

	require.Equal(t, http.StatusOK, rec.Code)
	draft, err := LoadDraft(browser.Session)
	require.NoError(t, err)
	assert.Equal(t, "100000", draft.Remise.String())
	summary := draft.Summary()
	assert.True(t, summary.Total.IsZero())
	assert.True(t, summary.Acompte.IsZero())
	for _, c := range backend.Calls() {
		assert.NotEqual(t, "/commandes", c.Path)
	}
}

func TestOrderFormRejectsBadLine(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)
	browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})

	rec := browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"10"}, "quantite": {"0"}, "mesure_tour_taille": {"abc"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "La quantité doit être comprise entre 1 et 999.")
	assert.Contains(t, body, "Mesure invalide.")
	draft, err := LoadDraft(browser.Session)
	require.NoError(t, err)
	assert.Empty(t, draft.Lines)
}

func TestOrderFormCapsMergedQuantity(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)
	browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})
	rec := browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"9"}, "quantite": {"999"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"9"}, "quantite": {"999"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "un même article est limitée à 999.")
	draft, err := LoadDraft(browser.Session)
	require.NoError(t, err)
	require.Len(t, draft.Lines, 1)
	assert.Equal(t, 999, draft.Lines[0].Quantite)
}

func TestOrderFormCancelResetsDraft(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)
	browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})
	browser.PostForm("/commandes/new/articles", url.Values{"produit_id": {"9"}, "quantite": {"1"}})

	rec := browser.PostForm("/commandes/new/cancel", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes", rec.Header().Get("Location"))

	rec = browser.Get("/commandes/new/articles")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/new", rec.Header().Get("Location"))
}

func TestRecapRequiresPreviousSteps(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.Get("/commandes/new/recap")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/new", rec.Header().Get("Location"))

	browser.PostForm("/commandes/new/client", url.Values{"client_id": {"12"}})
	rec = browser.Get("/commandes/new/recap")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/new/articles", rec.Header().Get("Location"))
}

func TestChangeStatusAllowed(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.PostForm("/commandes/77/statut", url.Values{"statut": {StatutConfirmee}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/77", rec.Header().Get("Location"))
	last := backend.Last()
	assert.Equal(t, http.MethodPatch, last.Method)
	assert.JSONEq(t, `{"statut":"confirmee"}`, string(last.Body))
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashSuccess, flashes[0].Kind)
}

func TestChangeStatusNotOffered(t *testing.T) {
	backend := newOrderBackend(t)
	backend.order["statut"] = StatutLivree
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.PostForm("/commandes/77/statut", url.Values{"statut": {StatutAnnulee}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range backend.Calls() {
		assert.NotEqual(t, http.MethodPatch, c.Method)
	}
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashError, flashes[0].Kind)
	assert.Equal(t, "Cette action n'est pas disponible pour ce statut.", flashes[0].Message)
}

func TestShowOffersGatedButtons(t *testing.T) {
	backend := newOrderBackend(t)
	backend.order["statut"] = StatutEnProduction
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.Get("/commandes/77")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="prete"`)
	assert.NotContains(t, body, `value="annulee"`)
	assert.NotContains(t, body, `value="livree"`)
}

func TestSheetFallsBackToHTML(t *testing.T) {
	backend := newOrderBackend(t)
	browser := newBrowser(t, backend.Backend, nil)

	rec := browser.Get("/commandes/77/pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Bon de commande CMD-2026-0077")
}

func TestSheetRendersPDF(t *testing.T) {
	backend := newOrderBackend(t)
	renderer := &fakeRenderer{}
	browser := newBrowser(t, backend.Backend, renderer)

	rec := browser.Get("/commandes/77/pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="commande-CMD-2026-0077.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7", rec.Body.String())
	assert.Contains(t, renderer.html, "Boubou")
}

func TestListDropsInvalidDates(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, webtest.Paginated([]any{}, 1, 1, 15, 0))
	})
	browser := newBrowser(t, backend, nil)

	rec := browser.Get("/commandes?statut=prete&date_debut=2026-01-01&date_fin=31/01/2026")

	require.Equal(t, http.StatusOK, rec.Code)
	q := backend.Last().Query
	assert.Equal(t, "prete", q.Get("statut"))
	assert.Equal(t, "2026-01-01", q.Get("date_debut"))
	assert.False(t, q.Has("date_fin"))
}
