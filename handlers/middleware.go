package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

type contextKey string

const ActorKey contextKey = "actor"

// GetActor extracts the resolved actor from the request context.
func GetActor(r *http.Request) (services.Actor, bool) {
	actor, ok := r.Context().Value(ActorKey).(services.Actor)
	return actor, ok
}

// ActorMiddleware resolves the authenticated record into a quote actor once
// per request and stores it in the request context. Anonymous requests and
// unknown auth collections pass through untouched; handlers decide whether
// they need an actor.
func ActorMiddleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return e.Next()
		}

		actor, err := resolveActor(e.Auth)
		if err != nil {
			log.Printf("middleware: %s %s: %v", e.Request.Method, e.Request.URL.Path, err)
			return e.Next()
		}

		ctx := context.WithValue(e.Request.Context(), ActorKey, actor)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
