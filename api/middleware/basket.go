package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// BasketIDHeader carries the anonymous basket identity between requests.
const BasketIDHeader = "X-Basket-Id"

// BasketID resolves the caller's basket. A missing or malformed header
// starts a new basket; the id is always echoed back so the client can keep it.
func BasketID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			basketID := strings.TrimSpace(r.Header.Get(BasketIDHeader))
			if parsed, err := uuid.Parse(basketID); err == nil {
				basketID = parsed.String()
			} else {
				basketID = uuid.NewString()
			}

			w.Header().Set(BasketIDHeader, basketID)

			ctx := WithBasketID(r.Context(), basketID)
			if logg != nil {
				ctx = logg.WithBasketID(ctx, basketID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
