package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/linkplay"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

func SetupRoutes(client *linkplay.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", Healthz)
	r.Route("/multiplayer/me", func(r chi.Router) {
		r.Post("/room/create", CreateRoom(client))
		r.Post("/room/{code}", JoinRoom(client))
		r.Post("/update", UpdateRoom(client))
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.DebugF("[%s] %s %s -> %d (%v)", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
