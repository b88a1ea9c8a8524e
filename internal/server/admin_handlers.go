package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgellow/shop-admin/internal/adminauth"
	jsonwriter "github.com/dgellow/shop-admin/internal/json"
	"github.com/dgellow/shop-admin/internal/log"
	"github.com/dgellow/shop-admin/internal/storage"
	"golang.org/x/sync/singleflight"
)

const listLoginsTimeout = 10 * time.Second

// AdminHandlers serves admin-only endpoints. Routes must be wrapped with
// NewRequireAdminMiddleware.
type AdminHandlers struct {
	store storage.LoginStore
	// Concurrent dashboard refreshes share one storage read
	listGroup singleflight.Group
}

// NewAdminHandlers creates admin handlers over the login log
func NewAdminHandlers(store storage.LoginStore) *AdminHandlers {
	return &AdminHandlers{store: store}
}

// ListLoginsHandler returns the login log, most recent first
func (h *AdminHandlers) ListLoginsHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := adminauth.PrincipalFromContext(r.Context())

	v, err, _ := h.listGroup.Do("logins", func() (any, error) {
		// Detached from the first caller so its disconnect does not fail the others
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), listLoginsTimeout)
		defer cancel()
		return h.store.ListLogins(ctx)
	})
	if err != nil {
		log.LogErrorWithFields("admin", "Failed to list logins", map[string]any{
			"error": err.Error(),
			"by":    principal.Email,
		})
		jsonwriter.WriteInternalServerError(w, "")
		return
	}

	_ = jsonwriter.Write(w, map[string]any{"logins": v.([]storage.LoginRecord)})
}

// GetLoginHandler returns the login record for the {sub} path value
func (h *AdminHandlers) GetLoginHandler(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("sub")
	if subject == "" {
		jsonwriter.WriteBadRequest(w, "missing subject")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), listLoginsTimeout)
	defer cancel()

	record, err := h.store.GetLogin(ctx, subject)
	if errors.Is(err, storage.ErrLoginNotFound) {
		jsonwriter.WriteError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err != nil {
		log.LogErrorWithFields("admin", "Failed to get login", map[string]any{
			"error": err.Error(),
			"sub":   subject,
		})
		jsonwriter.WriteInternalServerError(w, "")
		return
	}

	_ = jsonwriter.Write(w, map[string]any{"login": record})
}
