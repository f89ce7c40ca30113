package reports

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-sur-mesure/atelier-admin/internal/reports/chart"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
)

const basePath = "/rapports"

// ExportCounter counts report downloads.
type ExportCounter interface {
	CountExport(report, format string)
}

// WarmupQueue schedules a background reload of the report cache.
type WarmupQueue interface {
	EnqueueReportsWarmup(ctx context.Context, reason string) error
}

// Handler serves the dashboard and the report pages.
type Handler struct {
	service *Service
	respond *view.Responder
	exports ExportCounter
	warmup  WarmupQueue
}

// NewHandler builds a Handler. exports may be nil.
func NewHandler(service *Service, respond *view.Responder, exports ExportCounter) *Handler {
	return &Handler{service: service, respond: respond, exports: exports}
}

// WithWarmup makes Refresh queue a cache warmup once the cache is dropped.
func (h *Handler) WithWarmup(q WarmupQueue) *Handler {
	h.warmup = q
	return h
}

// MountRoutes registers the report routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, basePath+"/ventes", http.StatusSeeOther)
	})
	r.Get("/ventes", h.Sales)
	r.Get("/ventes/export", h.ExportSales)
	r.Get("/produits", h.Products)
	r.Get("/produits/export", h.ExportProducts)
	r.Post("/refresh", h.Refresh)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	data := map[string]any{}
	status := http.StatusOK
	if err != nil {
		h.respond.Logger().Error("load dashboard failed", "error", err)
		data["Error"] = shared.UserSafeMessage(err)
		status = http.StatusBadGateway
	} else {
		data["Dashboard"] = d
		data["Chart"] = h.salesChart(d.Sales, "Ventes des 30 derniers jours")
	}
	h.respond.Render(w, r, view.Page{Template: "pages/dashboard/index.html", Title: "Tableau de bord", Section: "dashboard", Status: status, Data: data})
}

func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	period, fe := ParsePeriod(r.URL.Query(), h.service.Now())
	data := map[string]any{"Period": period, "Base": basePath + "/ventes"}
	status := http.StatusOK
	if fe.Any() {
		status = http.StatusUnprocessableEntity
	}
	rows, err := h.service.Sales(r.Context(), period)
	if err != nil {
		h.respond.Logger().Error("sales report failed", "error", err)
		data["Error"] = shared.UserSafeMessage(err)
		status = http.StatusBadGateway
	} else {
		rows = FillDays(rows, period)
		data["Rows"] = rows
		data["Totals"] = SumSales(rows)
		data["Chart"] = h.salesChart(rows, "Ventes par jour")
	}
	h.respond.Render(w, r, view.Page{Template: "pages/rapports/ventes.html", Title: "Rapport des ventes", Section: "rapports", Status: status, Errors: fe, Data: data})
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	period, fe := ParsePeriod(r.URL.Query(), h.service.Now())
	data := map[string]any{"Period": period, "Base": basePath + "/produits"}
	status := http.StatusOK
	if fe.Any() {
		status = http.StatusUnprocessableEntity
	}
	rows, err := h.service.TopProducts(r.Context(), period, ReportProducts)
	if err != nil {
		h.respond.Logger().Error("products report failed", "error", err)
		data["Error"] = shared.UserSafeMessage(err)
		status = http.StatusBadGateway
	} else {
		data["Rows"] = rows
		data["Chart"] = h.productsChart(rows)
	}
	h.respond.Render(w, r, view.Page{Template: "pages/rapports/produits.html", Title: "Meilleures ventes", Section: "rapports", Status: status, Errors: fe, Data: data})
}

func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	period, format, ok := h.exportParams(w, r, basePath+"/ventes")
	if !ok {
		return
	}
	rows, err := h.service.Sales(r.Context(), period)
	if err != nil {
		h.respond.Fail(w, r, basePath+"/ventes?"+period.Query().Encode(), "export sales", err)
		return
	}
	body, err := EncodeSales(FillDays(rows, period), format)
	h.send(w, r, "ventes", format, "ventes_"+period.Slug(), body, err)
}

func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	period, format, ok := h.exportParams(w, r, basePath+"/produits")
	if !ok {
		return
	}
	rows, err := h.service.TopProducts(r.Context(), period, ReportProducts)
	if err != nil {
		h.respond.Fail(w, r, basePath+"/produits?"+period.Query().Encode(), "export products", err)
		return
	}
	body, err := EncodeProducts(rows, format)
	h.send(w, r, "produits", format, "produits_"+period.Slug(), body, err)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	back := shared.SafeReturn(r.PostFormValue("return_to"), basePath+"/ventes")
	if err := h.service.Refresh(r.Context()); err != nil {
		h.respond.Fail(w, r, back, "refresh reports", err)
		return
	}
	if h.warmup != nil {
		if err := h.warmup.EnqueueReportsWarmup(r.Context(), "refresh"); err != nil {
			h.respond.Logger().Warn("enqueue reports warmup failed", "error", err)
		}
	}
	h.respond.Redirect(w, r, back, shared.FlashSuccess, "Rapports actualisés.")
}

func (h *Handler) exportParams(w http.ResponseWriter, r *http.Request, page string) (Period, string, bool) {
	period, fe := ParsePeriod(r.URL.Query(), h.service.Now())
	if fe.Any() {
		h.respond.Redirect(w, r, page, shared.FlashError, "Période invalide.")
		return Period{}, "", false
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		h.respond.Redirect(w, r, page+"?"+period.Query().Encode(), shared.FlashError, "Format d'export inconnu.")
		return Period{}, "", false
	}
	return period, format, true
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, report, format, name string, body []byte, err error) {
	if err != nil {
		h.respond.Fail(w, r, basePath+"/"+report, "export "+report, err)
		return
	}
	if h.exports != nil {
		h.exports.CountExport(report, format)
	}
	w.Header().Set("Content-Type", ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+"."+format+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

func (h *Handler) salesChart(rows []SalesRow, title string) template.HTML {
	if len(rows) == 0 {
		return ""
	}
	points := make([]chart.Point, len(rows))
	for i, r := range rows {
		points[i] = chart.Point{Label: r.Date.Format("02/01"), A: r.MontantTotal, B: r.MontantPaye}
	}
	svg, err := chart.Bars(points, chart.Options{Title: title, LabelA: "Commandé", LabelB: "Encaissé"})
	if err != nil {
		h.respond.Logger().Warn("sales chart failed", "error", err)
		return ""
	}
	return svg
}

func (h *Handler) productsChart(rows []ProductRow) template.HTML {
	if len(rows) == 0 {
		return ""
	}
	n := len(rows)
	if n > 10 {
		n = 10
	}
	points := make([]chart.Point, n)
	for i, r := range rows[:n] {
		points[i] = chart.Point{Label: r.Produit, A: r.ChiffreAffaires}
	}
	svg, err := chart.Bars(points, chart.Options{Title: "Chiffre d'affaires par produit", LabelA: "Chiffre d'affaires"})
	if err != nil {
		h.respond.Logger().Warn("products chart failed", "error", err)
		return ""
	}
	return svg
}
