package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/ErlynFabian/WearShop-sub000/internal/api/middleware"
	"github.com/ErlynFabian/WearShop-sub000/internal/auth"
)

// NewRouter wires the storefront (public) and back-office (admin) routes.
// Admin routes sit behind JWT auth plus an admin role check.
func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(jwtService)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(h))
	}

	// Auth
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Register(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Login(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Logout(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Refresh(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))

	// Products: reads are public, writes are back-office only.
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		case http.MethodPost:
			requireAdmin(handlers.CreateProduct).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/share") && r.Method == http.MethodGet:
			handlers.GetProductShare(w, r)
		case r.Method == http.MethodGet:
			handlers.GetProduct(w, r)
		case r.Method == http.MethodPatch || r.Method == http.MethodPut:
			requireAdmin(handlers.UpdateProduct).ServeHTTP(w, r)
		case r.Method == http.MethodDelete:
			requireAdmin(handlers.DeleteProduct).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Cart (storefront)
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		case http.MethodPost:
			handlers.AddToCart(w, r)
		case http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/cart/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut, http.MethodPatch:
			handlers.SetCartQuantity(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Recently viewed (storefront)
	mux.HandleFunc("/recently-viewed", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetRecentlyViewed(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Toasts (back office)
	mux.Handle("/toasts", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetToasts(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/toasts/", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/dismiss") && r.Method == http.MethodPost:
			handlers.DismissToast(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Stock
	mux.HandleFunc("/stock/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetAvailableStock(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Sales ledger (back office)
	mux.Handle("/sales", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetSales(w, r)
		case http.MethodPost:
			handlers.CreateSale(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/sales/summary", requireAdmin(handlers.GetSalesSummary))
	mux.Handle("/sales/compare", requireAdmin(handlers.GetSalesComparison))
	mux.Handle("/sales/export", requireAdmin(handlers.ExportSales))

	mux.Handle("/sales/", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetSale(w, r)
		case http.MethodPatch, http.MethodPut:
			handlers.UpdateSale(w, r)
		case http.MethodDelete:
			handlers.DeleteSale(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Notifications (back office)
	mux.Handle("/notifications", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetNotifications(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/notifications/read-all", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.MarkAllNotificationsRead(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/notifications/", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/read") && r.Method == http.MethodPost:
			handlers.MarkNotificationRead(w, r)
		case r.Method == http.MethodDelete:
			handlers.DeleteNotification(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Contact messages: submit is public, the inbox is back office.
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.SubmitMessage(w, r)
		case http.MethodGet:
			requireAdmin(handlers.GetMessages).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/messages/", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/read") && r.Method == http.MethodPost:
			handlers.MarkMessageRead(w, r)
		case r.Method == http.MethodDelete:
			handlers.DeleteMessage(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
