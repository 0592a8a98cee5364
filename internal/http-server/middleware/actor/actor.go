package actor

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
)

// Заголовки выставляет шлюз после аутентификации
const (
	HeaderUserID  = "X-User-ID"
	HeaderIsAdmin = "X-User-Admin"
)

// Actor пользователь, от имени которого выполняется запрос
type Actor struct {
	ID      int64
	IsAdmin bool
}

type ctxKey struct{}

// New требует X-User-ID и кладёт Actor в контекст
func New() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
			if err != nil || id < 1 {
				response.Fail(w, r, http.StatusUnauthorized, response.UNAUTHORIZED, "missing or invalid "+HeaderUserID)
				return
			}

			isAdmin, _ := strconv.ParseBool(r.Header.Get(HeaderIsAdmin))

			ctx := WithActor(r.Context(), Actor{ID: id, IsAdmin: isAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext возвращает Actor; без middleware ok == false
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Require достаёт Actor или отвечает 401
func Require(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	a, ok := FromContext(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, response.UNAUTHORIZED, "actor is not identified")
	}
	return a, ok
}
