package api

import (
	"testing"

	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/user"
)

func TestEventPublisher_NilClientDropsEvents(t *testing.T) {
	p := NewEventPublisher(nil, 1, logging.Default())

	// Must not panic or block without a broker.
	p.UserRegistered(&user.User{ID: 1, Login: "alice"})
}
