package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/ctxutil"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
)

// actingAccountID reads the account resolved by the auth middleware.
func actingAccountID(dbc dbctx.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.AccountID == uuid.Nil {
		return uuid.Nil, apierr.Unauthenticated(fmt.Errorf("request data not set in context"))
	}
	return rd.AccountID, nil
}

// actingChild loads the child profile owned by the acting account.
func actingChild(dbc dbctx.Context, childRepo repos.ChildProfileRepo) (*types.ChildProfile, error) {
	accountID, err := actingAccountID(dbc)
	if err != nil {
		return nil, err
	}
	child, err := childRepo.GetByAccountID(dbc, accountID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load child profile: %w", err))
	}
	if child == nil {
		return nil, apierr.NotFound("perfil não encontrado")
	}
	return child, nil
}
