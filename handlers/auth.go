package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

const partnersCollection = "partners"

var (
	errUnauthenticated = errors.New("authentication required")
	errUnknownActor    = errors.New("account is neither a partner nor an administrator")
)

// resolveActor maps a PocketBase auth record to a quote actor: superusers
// are admins, records of the partners collection are partners.
func resolveActor(auth *core.Record) (services.Actor, error) {
	if auth == nil {
		return services.Actor{}, errUnauthenticated
	}
	if auth.IsSuperuser() {
		return services.Actor{Role: services.RoleAdmin}, nil
	}
	if auth.Collection().Name == partnersCollection {
		return services.Actor{Role: services.RolePartner, PartnerID: auth.Id}, nil
	}
	return services.Actor{}, errUnknownActor
}

// actorFromRequest prefers the actor stored by ActorMiddleware and falls
// back to resolving the auth record directly.
func actorFromRequest(e *core.RequestEvent) (services.Actor, error) {
	if actor, ok := GetActor(e.Request); ok {
		return actor, nil
	}
	return resolveActor(e.Auth)
}

// requireActor resolves the actor and writes a 401/403 response when the
// caller may not continue. The returned bool is false once a response has
// been written. With roles given, only those roles are admitted.
func requireActor(e *core.RequestEvent, roles ...services.ActorRole) (services.Actor, bool, error) {
	actor, err := actorFromRequest(e)
	if errors.Is(err, errUnauthenticated) {
		return actor, false, e.JSON(http.StatusUnauthorized, errorBody("unauthenticated", err.Error()))
	}
	if err != nil {
		return actor, false, e.JSON(http.StatusForbidden, errorBody("forbidden", err.Error()))
	}
	if len(roles) == 0 {
		return actor, true, nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return actor, true, nil
		}
	}
	return actor, false, e.JSON(http.StatusForbidden, errorBody("forbidden", "this action is not available to "+string(actor.Role)+"s"))
}

// partnerSnapshot copies the partner's current profile for a new quote.
func partnerSnapshot(record *core.Record) services.PartnerSnapshot {
	return services.PartnerSnapshot{
		Name:    record.GetString("name"),
		Email:   record.Email(),
		Company: record.GetString("company"),
	}
}
