package middleware

import (
	"net/http"

	"github.com/jwebster45206/npc-engine/pkg/access"
)

// TierHeader names the caller's access tier. Authentication happens upstream;
// this service trusts the header set by the gateway.
const TierHeader = "X-Access-Tier"

// Tier copies the caller's tier into the request context. A missing or
// unknown value falls back to Guest.
func Tier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier, err := access.ParseTier(r.Header.Get(TierHeader))
		if err != nil {
			tier = access.Guest
		}
		next.ServeHTTP(w, r.WithContext(access.WithTier(r.Context(), tier)))
	})
}
