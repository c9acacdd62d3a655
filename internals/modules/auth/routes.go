package auth

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/token", h.IssueToken)

	return r
}

/*
- POST: /auth/token -> operator login
	req auth : false
	body : TokenRequest
	resp : TokenResponse
*/
