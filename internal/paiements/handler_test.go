package paiements

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-sur-mesure/atelier-admin/internal/commandes"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/testing/webtest"
)

func payment(statut, methode string) map[string]any {
	return map[string]any{
		"id": 31, "reference": "PAY-031", "montant": "25000", "methode": methode,
		"statut": statut, "client_nom": "Awa Diop",
		"commande": map[string]any{"id": 77, "reference": "CMD-2026-0077"},
	}
}

func newBrowser(t *testing.T, backend *webtest.Backend) *webtest.Browser {
	t.Helper()
	orders := commandes.NewService(commandes.NewRepository(backend.Client), nil)
	handler := NewHandler(NewService(NewRepository(backend.Client)), orders, webtest.Responder(t), 15)
	return webtest.NewBrowser(t, "/paiements", handler.MountRoutes)
}

func TestListShowsStatsAndFilters(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paiements/stats":
			webtest.OK(w, map[string]any{
				"total": "125000", "nombre": 6,
				"par_statut": []map[string]any{{"statut": "en_attente", "statut_label": "En attente", "nombre": 2, "montant": "40000"}},
			})
		default:
			webtest.OK(w, webtest.Paginated([]any{payment(StatutEnAttente, MethodeWave)}, 1, 1, 15, 1))
		}
	})
	browser := newBrowser(t, backend)

	rec := browser.Get("/paiements?statut=en_attente&methode=wave&search=PAY")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "PAY-031")
	assert.Contains(t, body, "Total encaissé")
	assert.Contains(t, body, "/paiements/31/verifier")
	var listed bool
	for _, c := range backend.Calls() {
		if c.Path == "/paiements" {
			listed = true
			assert.Equal(t, "en_attente", c.Query.Get("statut"))
			assert.Equal(t, "wave", c.Query.Get("methode"))
			assert.Equal(t, "PAY", c.Query.Get("search"))
		}
	}
	assert.True(t, listed)
}

func TestListWithoutStats(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/paiements/stats" {
			webtest.Fail(w, http.StatusInternalServerError, "boom")
			return
		}
		webtest.OK(w, webtest.Paginated([]any{}, 1, 1, 15, 0))
	})
	browser := newBrowser(t, backend)

	rec := browser.Get("/paiements")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Total encaissé")
	assert.Contains(t, rec.Body.String(), "Aucun paiement.")
}

func TestConfirmPending(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paiements/31":
			webtest.OK(w, payment(StatutEnAttente, MethodeEspeces))
		case "/paiements/31/confirmer":
			webtest.OK(w, payment(StatutConfirme, MethodeEspeces))
		}
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements/31/confirmer", url.Values{"return_to": {"/paiements?statut=en_attente"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/paiements?statut=en_attente", rec.Header().Get("Location"))
	assert.Equal(t, http.MethodPost, backend.Last().Method)
	assert.Equal(t, "/paiements/31/confirmer", backend.Last().Path)
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "Paiement PAY-031 confirmé.", flashes[0].Message)
}

func TestConfirmNotPending(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, payment(StatutRejete, MethodeEspeces))
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements/31/confirmer", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/paiements/31", rec.Header().Get("Location"))
	for _, c := range backend.Calls() {
		assert.NotEqual(t, "/paiements/31/confirmer", c.Path)
	}
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashError, flashes[0].Kind)
}

func TestRejectWithoutMotifShowsInlineError(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, payment(StatutEnAttente, MethodeWave))
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements/31/rejeter", url.Values{"motif": {""}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ce champ est obligatoire.")
	for _, c := range backend.Calls() {
		assert.NotEqual(t, "/paiements/31/rejeter", c.Path)
	}
}

func TestRejectSendsMotif(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/paiements/31/rejeter" {
			webtest.OK(w, payment(StatutRejete, MethodeWave))
			return
		}
		webtest.OK(w, payment(StatutEnAttente, MethodeWave))
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements/31/rejeter", url.Values{"motif": {"Transaction introuvable"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.JSONEq(t, `{"motif":"Transaction introuvable"}`, string(backend.Last().Body))
}

func TestVerifyCallsGateway(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/paiements/31/verifier" {
			p := payment(StatutConfirme, MethodeWave)
			p["statut_label"] = "Confirmé"
			webtest.OK(w, p)
			return
		}
		webtest.OK(w, payment(StatutEnAttente, MethodeWave))
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements/31/verifier", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	last := backend.Last()
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Equal(t, "/paiements/31/verifier", last.Path)
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashSuccess, flashes[0].Kind)
	assert.Equal(t, "Statut chez l'opérateur : confirmé.", flashes[0].Message)
}

func TestShowHidesActionsOnceSettled(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, payment(StatutConfirme, MethodeWave))
	})
	browser := newBrowser(t, backend)

	rec := browser.Get("/paiements/31")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "/paiements/31/confirmer")
	assert.NotContains(t, body, "/paiements/31/rejeter")
	assert.NotContains(t, body, "/paiements/31/verifier")
}

func orderBackend(t *testing.T) *webtest.Backend {
	return webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/commandes/77":
			webtest.OK(w, map[string]any{"id": 77, "reference": "CMD-2026-0077", "statut": "confirmee", "montant_total": "60000", "montant_paye": "20000", "reste_a_payer": "40000"})
		case r.URL.Path == "/paiements" && r.Method == http.MethodPost:
			webtest.OK(w, map[string]any{"id": 40, "reference": "PAY-040", "statut": "confirme"})
		default:
			webtest.Fail(w, http.StatusNotFound, "introuvable")
		}
	})
}

func TestNewFormPrefillsRemainingAmount(t *testing.T) {
	browser := newBrowser(t, orderBackend(t))

	rec := browser.Get("/paiements/new?commande_id=77")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "CMD-2026-0077")
	assert.Contains(t, body, `name="montant" value="40000"`)
}

func TestRecordManualPayment(t *testing.T) {
	backend := orderBackend(t)
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements", url.Values{"commande_id": {"77"}, "montant": {"15000"}, "methode": {"especes"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/commandes/77", rec.Header().Get("Location"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(backend.Last().Body, &body))
	assert.Equal(t, float64(77), body["commande_id"])
	assert.Equal(t, "15000", body["montant"])
	assert.Equal(t, "especes", body["methode"])
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "Paiement PAY-040 enregistré.", flashes[0].Message)
}

func TestRecordAboveRemainingIsRejectedInline(t *testing.T) {
	backend := orderBackend(t)
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements", url.Values{"commande_id": {"77"}, "montant": {"50000"}, "methode": {"wave"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Le montant dépasse le reste à payer.")
	for _, c := range backend.Calls() {
		assert.NotEqual(t, http.MethodPost, c.Method)
	}
}

func TestRecordWithoutOrder(t *testing.T) {
	browser := newBrowser(t, orderBackend(t))

	rec := browser.PostForm("/paiements", url.Values{"montant": {"100"}, "methode": {"especes"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Choisissez une commande.")
}

func TestRecordOnSettledOrderIsRejectedInline(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/commandes/78" {
			webtest.OK(w, map[string]any{"id": 78, "reference": "CMD-2026-0078", "statut": "livree", "montant_total": "60000", "montant_paye": "60000", "reste_a_payer": "0"})
			return
		}
		webtest.Fail(w, http.StatusNotFound, "introuvable")
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/paiements", url.Values{"commande_id": {"78"}, "montant": {"500000"}, "methode": {"especes"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cette commande est déjà soldée.")
	for _, c := range backend.Calls() {
		assert.NotEqual(t, http.MethodPost, c.Method)
	}
}
