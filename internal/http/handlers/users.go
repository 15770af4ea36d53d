package handlers

import (
	"net/http"

	middlewarex "taskhub/internal/http/middleware"
	"taskhub/internal/query"
	"taskhub/internal/services/user"
)

// ListUsers runs the query engine over all users. The router guards this
// with the "list users" ability.
func ListUsers(userService *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := query.ParseListQuery(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}

		result, err := userService.List(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Me returns the authenticated user's profile.
func Me(userService *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewarex.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := userService.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}
