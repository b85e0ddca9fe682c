package tickets

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

type queryService struct {
	repo Repository
}

// NewQueryService builds the ticket read service.
func NewQueryService(repo Repository) QueryService {
	return &queryService{repo: repo}
}

func (s *queryService) ListForUser(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*TicketList, error) {
	if userProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user profile id is required")
	}
	list, err := s.repo.ListByUser(ctx, userProfileID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tickets")
	}
	return list, nil
}
