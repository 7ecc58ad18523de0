package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/report"
)

// ExportSales streams the completed-sales report as a spreadsheet or CSV
// depending on the format query parameter (xlsx by default).
func (h *Handlers) ExportSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.Completed(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="sales-report-%s.csv"`, stamp))
		if err := report.WriteCSV(w, sales); err != nil {
			respondJSONError(w, err.Error(), http.StatusInternalServerError)
		}
	case "", "xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="sales-report-%s.xlsx"`, stamp))
		if err := report.WriteXLSX(w, sales); err != nil {
			respondJSONError(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		respondJSONError(w, "unsupported format", http.StatusBadRequest)
	}
}
