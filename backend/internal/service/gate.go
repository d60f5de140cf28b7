package service

import (
	"strings"

	"github.com/deskfolio/deskfolio/shared/domain"
)

// Gate is the admin allow-list. It is fixed for the life of the process.
type Gate struct {
	allowed map[domain.Email]struct{}
}

func NewGate(adminEmails []domain.Email) *Gate {
	allowed := make(map[domain.Email]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Gate{allowed: allowed}
}

// Authorize reports whether identity's email is on the allow-list, ignoring case.
func (g *Gate) Authorize(identity domain.Identity) bool {
	_, ok := g.allowed[strings.ToLower(strings.TrimSpace(identity.Email))]
	return ok
}
