package service

import (
	"github.com/google/uuid"

	"impact-service/internal/model"
)

// Access control guard. Violations surface as ErrNotFound, never as a
// distinguishable "forbidden", to avoid leaking resource existence.
// The checks are re-applied on every single-resource fetch.

// AuthorizePortfolio allows access only to the portfolio's owning user
func AuthorizePortfolio(p *model.Portfolio, userID uuid.UUID) error {
	if p.UserUUID == nil || *p.UserUUID != userID {
		return ErrNotFound
	}
	return nil
}

// AuthorizeTenantResource allows access only to requesters of the owning
// tenant. A nil owner (official/global resource) is never tenant-visible
// through this check.
func AuthorizeTenantResource(resourceTenant *uuid.UUID, requesterTenant uuid.UUID) error {
	if resourceTenant == nil || *resourceTenant != requesterTenant {
		return ErrNotFound
	}
	return nil
}

// AuthorizeTenant allows access when the requester belongs to the tenant
func AuthorizeTenant(resourceTenant, requesterTenant uuid.UUID) error {
	if resourceTenant != requesterTenant {
		return ErrNotFound
	}
	return nil
}
