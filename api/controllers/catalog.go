package controllers

import (
	"net/http"

	"github.com/davidrangel/poscenter-gateway/api/responses"
	"github.com/davidrangel/poscenter-gateway/internal/catalog"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
)

// CatalogProducts lists the product snapshot backing the admin screens.
func CatalogProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, svc != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.Products(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CatalogCategories lists the category snapshot.
func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, svc != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categories, err := svc.Categories(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogRefresh busts the cached snapshots and repulls them.
func CatalogRefresh(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r, svc != nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Refresh(r.Context(), sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "refreshed"})
	}
}

func requireSession(r *http.Request, svcReady bool) (session.Session, error) {
	if !svcReady {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeInternal, "service unavailable")
	}
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return sess, nil
}
