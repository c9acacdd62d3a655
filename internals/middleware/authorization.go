package middle

import (
	"net/http"

	"connwatch/internals/security"
	"connwatch/pkg/apperror"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

func AllowAdmin(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)
		caller, ok := CallerFromContext(ctx)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "caller is unauthorised")
			return
		}

		if caller.Role != security.RoleAdmin {
			utils.WriteError(w, http.StatusForbidden, reqID, apperror.Forbidden, "caller does not have access")
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
