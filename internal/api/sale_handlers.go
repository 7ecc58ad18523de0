package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/ErlynFabian/WearShop-sub000/internal/state"
)

// CreateSale records a sale. An active sale is pre-checked against the
// available stock so the back office cannot oversell; the ledger itself
// clamps rather than rejects, so the check lives here at the edge.
func (h *Handlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	var in sale.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if in.Status == "" {
		in.Status = sale.StatusPending
	}
	if in.Status.Active() && in.ProductID != "" && in.Quantity > 0 {
		stock, err := h.sales.GetAvailableStock(r.Context(), in.ProductID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if in.Quantity > stock {
			h.toasts.Push("Insufficient stock", state.ToastError)
			respondJSONError(w, "insufficient stock", http.StatusUnprocessableEntity)
			return
		}
	}

	s, err := h.sales.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.toasts.Push("Sale recorded", state.ToastSuccess)
	respondJSON(w, http.StatusCreated, s)
}

func (h *Handlers) GetSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetSale(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sales/")

	s, err := h.sales.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sales/")

	var in sale.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.sales.Update(r.Context(), id, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sales/")

	if err := h.sales.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "sale deleted"})
}

// GetSalesSummary aggregates completed sales over [from, to). Defaults to
// the current calendar month when no range is given.
func (h *Handlers) GetSalesSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := periodFromQuery(r)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.sales.RevenueForPeriod(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetSalesComparison compares the requested period against the period of
// the same length immediately preceding it.
func (h *Handlers) GetSalesComparison(w http.ResponseWriter, r *http.Request) {
	from, to, err := periodFromQuery(r)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	span := to.Sub(from)
	cmp, err := h.sales.ComparePeriods(r.Context(), from.Add(-span), from, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

func periodFromQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
