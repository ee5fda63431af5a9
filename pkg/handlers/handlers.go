package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tunde/vend-settlement/pkg/handlers/purchases"
	"github.com/tunde/vend-settlement/pkg/handlers/transactions"
	"github.com/tunde/vend-settlement/pkg/handlers/wallets"
	"github.com/tunde/vend-settlement/pkg/handlers/webhooks"
	"github.com/tunde/vend-settlement/pkg/middleware"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// ApiHandler composes the per-resource handlers behind one router.
// It holds our application's dependencies, including the storage layer.
type ApiHandler struct {
	Purchases    *purchases.PurchasesHandler
	Webhooks     *webhooks.WebhooksHandler
	Wallets      *wallets.WalletsHandler
	Transactions *transactions.TransactionsHandler

	Auth   middleware.Authenticator
	Logger *slog.Logger
}

// NewApiHandler creates a new ApiHandler wired over the store, the
// settlement engine and the reconciliation listener.
func NewApiHandler(store storage.Storage, engine purchases.PurchaseEngine, listener webhooks.Reconciler, auth middleware.Authenticator, logger *slog.Logger) *ApiHandler {
	return &ApiHandler{
		Purchases:    purchases.NewPurchasesHandler(engine),
		Webhooks:     webhooks.NewWebhooksHandler(listener, logger),
		Wallets:      wallets.NewWalletsHandler(store),
		Transactions: transactions.NewTransactionsHandler(store),
		Auth:         auth,
		Logger:       logger,
	}
}

// Routes mounts every endpoint on a chi router. Provider callbacks and
// the funding-collaborator surface are unauthenticated seams; purchases
// require a bearer token.
func (h *ApiHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(h.Logger))
	router.Use(chimiddleware.Recoverer)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount(h.Auth))
		r.Post("/purchases", h.Purchases.CreatePurchase)
	})

	router.Post("/webhooks/{provider}", h.Webhooks.HandleProviderCallback)

	router.Post("/wallets", h.Wallets.CreateWallet)
	router.Post("/wallets/{accountID}/credits", func(w http.ResponseWriter, r *http.Request) {
		h.Wallets.CreditWallet(w, r, chi.URLParam(r, "accountID"))
	})
	router.Get("/wallets/{accountID}", func(w http.ResponseWriter, r *http.Request) {
		h.Wallets.GetWalletByAccountId(w, r, chi.URLParam(r, "accountID"))
	})

	router.Get("/transactions/{reference}", func(w http.ResponseWriter, r *http.Request) {
		h.Transactions.GetTransactionByReference(w, r, chi.URLParam(r, "reference"))
	})
	router.Get("/accounts/{accountID}/transactions", func(w http.ResponseWriter, r *http.Request) {
		h.Transactions.ListTransactionsByAccountId(w, r, chi.URLParam(r, "accountID"))
	})

	return router
}
