package reports

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/cache"
	"github.com/atelier-sur-mesure/atelier-admin/internal/testing/webtest"
)

var (
	statsJSON = map[string]any{
		"commandes_par_statut":  []map[string]any{{"statut": "en_attente", "statut_label": "En attente", "nombre": 3}},
		"commandes_mois":        8,
		"chiffre_affaires_mois": "412000",
		"encaisse_mois":         "250000",
		"total_clients":         42,
		"nouveaux_clients":      5,
		"paiements_en_attente":  2,
		"montant_en_attente":    "40000",
		"dernieres_commandes": []map[string]any{
			{"id": 77, "reference": "CMD-2026-0077", "statut": "en_attente", "montant_total": "78000", "client": map[string]any{"id": 12, "nom": "Diop", "prenom": "Awa"}},
			{"id": 78, "reference": "CMD-2026-0078", "statut": "confirmee", "montant_total": "15000"},
		},
	}
	salesJSON = []map[string]any{
		{"date": "2026-03-02", "nombre_commandes": 2, "montant_total": "90000", "montant_paye": "40000"},
		{"date": "2026-03-10", "nombre_commandes": 1, "montant_total": "15000", "montant_paye": "15000"},
	}
	productsJSON = []map[string]any{
		{"produit_id": 9, "produit": "Boubou", "quantite": 4, "chiffre_affaires": "156000"},
	}
)

func reportBackend(t *testing.T, failing ...string) *webtest.Backend {
	t.Helper()
	fail := map[string]bool{}
	for _, p := range failing {
		fail[p] = true
	}
	return webtest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if fail[r.URL.Path] {
			webtest.Fail(w, http.StatusInternalServerError, "panne")
			return
		}
		switch r.URL.Path {
		case "/dashboard/stats":
			webtest.OK(w, statsJSON)
		case "/rapports/ventes":
			webtest.OK(w, salesJSON)
		case "/rapports/produits":
			webtest.OK(w, productsJSON)
		default:
			webtest.Fail(w, http.StatusNotFound, "introuvable")
		}
	})
}

func newService(t *testing.T, backend *webtest.Backend, c *cache.JSON) *Service {
	t.Helper()
	svc := NewService(NewRepository(backend.Client), c, webtest.Logger())
	svc.now = func() time.Time { return now }
	return svc
}

func redisCache(t *testing.T) *cache.JSON {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewJSON(client, "atelier:rapports", time.Minute)
}

func countCalls(b *webtest.Backend, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Path == path {
			n++
		}
	}
	return n
}

func TestSalesAreCachedUntilRefresh(t *testing.T) {
	backend := reportBackend(t)
	svc := newService(t, backend, redisCache(t))
	ctx := context.Background()
	p := MonthToDate(now)

	first, err := svc.Sales(ctx, p)
	require.NoError(t, err)
	second, err := svc.Sales(ctx, p)
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first[0].MontantTotal.String(), second[0].MontantTotal.String())
	assert.Equal(t, "2026-03-02", second[0].Date.FormValue())
	assert.Equal(t, 1, countCalls(backend, "/rapports/ventes"))
	assert.Equal(t, "2026-03-01", backend.Last().Query.Get("date_debut"))
	assert.Equal(t, "2026-03-14", backend.Last().Query.Get("date_fin"))

	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.Sales(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 2, countCalls(backend, "/rapports/ventes"))
}

func TestTopProductsCacheKeyIncludesLimit(t *testing.T) {
	backend := reportBackend(t)
	svc := newService(t, backend, redisCache(t))
	ctx := context.Background()
	p := MonthToDate(now)

	_, err := svc.TopProducts(ctx, p, 5)
	require.NoError(t, err)
	rows, err := svc.TopProducts(ctx, p, ReportProducts)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Boubou", rows[0].Produit)
	assert.Equal(t, 2, countCalls(backend, "/rapports/produits"))
	assert.Equal(t, "50", backend.Last().Query.Get("limit"))
}

func TestReportsWithoutCache(t *testing.T) {
	backend := reportBackend(t)
	svc := newService(t, backend, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Sales(ctx, MonthToDate(now))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, countCalls(backend, "/rapports/ventes"))
	assert.NoError(t, svc.Refresh(ctx))
}

func TestDashboard(t *testing.T) {
	backend := reportBackend(t)
	svc := newService(t, backend, nil)

	d, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, d.Stats.CommandesMois)
	require.Len(t, d.Stats.DernieresCommandes, 2)
	assert.Len(t, d.Sales, 30)
	assert.Len(t, d.Products, 1)
	for _, c := range backend.Calls() {
		if c.Path == "/rapports/produits" {
			assert.Equal(t, "5", c.Query.Get("limit"))
			assert.Equal(t, "2026-03-01", c.Query.Get("date_debut"))
		}
	}
}

func TestDashboardToleratesMissingReports(t *testing.T) {
	backend := reportBackend(t, "/rapports/ventes", "/rapports/produits")
	svc := newService(t, backend, nil)

	d, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, d.Stats.TotalClients)
	assert.Empty(t, d.Sales)
	assert.Empty(t, d.Products)
}

func TestDashboardNeedsStats(t *testing.T) {
	backend := reportBackend(t, "/dashboard/stats")
	svc := newService(t, backend, nil)

	_, err := svc.Dashboard(context.Background())

	assert.Error(t, err)
}

func TestWarmFillsTheCache(t *testing.T) {
	backend := reportBackend(t)
	svc := newService(t, backend, redisCache(t))
	ctx := context.Background()

	n, err := svc.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	warmed := len(backend.Calls())

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	_, err = svc.Sales(ctx, MonthToDate(now))
	require.NoError(t, err)

	assert.Equal(t, warmed+1, len(backend.Calls()), "only the dashboard counters reach the backend")
	assert.Equal(t, "/dashboard/stats", backend.Last().Path)
}

func TestWarmStopsOnBackendError(t *testing.T) {
	backend := reportBackend(t, "/rapports/produits")
	svc := newService(t, backend, redisCache(t))

	_, err := svc.Warm(context.Background())

	assert.Error(t, err)
}
