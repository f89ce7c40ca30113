package clients

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-sur-mesure/atelier-admin/internal/testing/webtest"
)

func newBrowser(t *testing.T, backend *webtest.Backend) *webtest.Browser {
	t.Helper()
	handler := NewHandler(NewService(NewRepository(backend.Client)), webtest.Responder(t), 15)
	return webtest.NewBrowser(t, "/clients", handler.MountRoutes)
}

var awa = map[string]any{
	"id":        12,
	"nom":       "Diop",
	"prenom":    "Awa",
	"telephone": "771234567",
	"ville":     "Dakar",
	"commandes": []map[string]any{
		{"id": 40, "reference": "CMD-2026-0040", "statut": "en_production", "statut_label": "En production", "statut_color": "info", "montant_total": "60000.00", "date_commande": "2026-03-02"},
	},
	"mesures": []map[string]any{
		{"id": 1, "type_vetement": "robe", "mesures": map[string]any{"tour_taille": 70, "tour_hanches": "98.0"}, "unite": "cm"},
	},
}

func TestShowRendersOrdersAndMeasures(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, awa)
	})
	browser := newBrowser(t, backend)

	rec := browser.Get("/clients/12")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Awa Diop")
	assert.Contains(t, body, "CMD-2026-0040")
	assert.Contains(t, body, "En production")
	assert.Contains(t, body, "<dt>Tour de taille</dt><dd>70 cm</dd>")
	assert.Contains(t, body, "<dt>Tour de hanches</dt><dd>98 cm</dd>")
	assert.Equal(t, "/clients/12", backend.Last().Path)
}

func TestListSendsVilleFilter(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, webtest.Paginated([]any{awa}, 1, 1, 15, 1))
	})
	browser := newBrowser(t, backend)

	rec := browser.Get("/clients?ville=Dakar&search=diop&page=3&filter=1")

	require.Equal(t, http.StatusOK, rec.Code)
	call := backend.Last()
	assert.Equal(t, "Dakar", call.Query.Get("ville"))
	assert.Equal(t, "diop", call.Query.Get("search"))
	assert.Equal(t, "1", call.Query.Get("page"))
	assert.Contains(t, rec.Body.String(), "Awa Diop")
}

func TestSaveMesuresPostsJSON(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webtest.OK(w, map[string]any{"id": 2, "type_vetement": "boubou"})
			return
		}
		webtest.OK(w, awa)
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/clients/12/mesures", url.Values{
		"type_vetement":        {"boubou"},
		"mesure_tour_poitrine": {"104,5"},
		"mesure_epaule":        {""},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/clients/12", rec.Header().Get("Location"))

	call := backend.Last()
	assert.Equal(t, "/clients/12/mesures", call.Path)
	var sent struct {
		TypeVetement string            `json:"type_vetement"`
		Mesures      map[string]string `json:"mesures"`
		Unite        string            `json:"unite"`
	}
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	assert.Equal(t, "boubou", sent.TypeVetement)
	assert.Equal(t, map[string]string{"tour_poitrine": "104.5"}, sent.Mesures)
	assert.Equal(t, "cm", sent.Unite)
}

func TestSaveMesuresInvalidReRendersShow(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		webtest.OK(w, awa)
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/clients/12/mesures", url.Values{"type_vetement": {"robe"}, "mesure_tour_taille": {"beaucoup"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mesure invalide.")
	assert.Contains(t, rec.Body.String(), `value="beaucoup"`)
	for _, c := range backend.Calls() {
		assert.Equal(t, http.MethodGet, c.Method)
	}
}

func TestCreateRedirectsToClientPage(t *testing.T) {
	backend := webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ndiaye", body["nom"])
		webtest.OK(w, map[string]any{"id": 51, "nom": "Ndiaye", "prenom": "Moussa"})
	})
	browser := newBrowser(t, backend)

	rec := browser.PostForm("/clients", url.Values{"nom": {"Ndiaye"}, "prenom": {"Moussa"}, "telephone": {"+221 77 000 00 00"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/clients/51", rec.Header().Get("Location"))
	flashes := browser.Flashes()
	require.Len(t, flashes, 1)
	assert.Contains(t, flashes[0].Message, "Moussa Ndiaye")
}
