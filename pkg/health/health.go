// pkg/health/health.go
package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Check проверяет одну зависимость: Redis, SQLite, каталог файла истории.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler возвращает "OK", если все проверки прошли, иначе 503 со списком ошибок.
func Handler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		var failed []string
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", c.Name, err))
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(strings.Join(failed, "\n")))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
