package mw

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/yangfinder/internal/logger"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDCookie = "yf_client"
)

type clientIDKey struct{}

var validClientID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ClientID resolves the caller's list namespace from the X-Client-ID
// header or the yf_client cookie. A missing or malformed id is replaced by
// a fresh uuid, returned as a cookie and in the response header.
func ClientID(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(ClientIDHeader)
			if id == "" {
				if c, err := r.Cookie(ClientIDCookie); err == nil {
					id = c.Value
				}
			}

			if !validClientID.MatchString(id) {
				id = uuid.NewString()
				log.Debug("minted client id", logger.String("client_id", id))
				http.SetCookie(w, &http.Cookie{
					Name:     ClientIDCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(ClientIDHeader, id)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIDKey{}, id)))
		})
	}
}

// ClientIDFrom returns the id set by ClientID, or "" outside it.
func ClientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
