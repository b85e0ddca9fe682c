package points

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/config"
	"github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

type service struct {
	client *db.Client
	repo   Repository
	cfg    config.PointsConfig
	logg   *logger.Logger
}

// NewService builds the points ledger mutator. The client wraps each
// balance mutation and its ledger entry in one transaction; client may be
// nil, in which case mutations run directly against the bound repository.
func NewService(client *db.Client, repo Repository, cfg config.PointsConfig, logg *logger.Logger) Service {
	return &service{client: client, repo: repo, cfg: cfg, logg: logg}
}

// WithTx joins the caller's transaction. The returned service carries no
// client so it never opens a nested transaction.
func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), cfg: s.cfg, logg: s.logg}
}

// inTx runs fn against a transaction-bound repository when the service owns
// a client, or against the already-bound repository otherwise.
func (s *service) inTx(ctx context.Context, fn func(repo Repository) error) error {
	if s.client == nil {
		return fn(s.repo)
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(s.repo.WithTx(tx))
	})
}

// Credit applies the signed amount and appends the matching ledger entry.
// The balance change is a single conditional UPDATE, so a debit past zero
// never lands, and the update commits together with its ledger row.
func (s *service) Credit(ctx context.Context, input CreditInput) (*models.PointEvent, error) {
	if input.UserProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user profile id is required")
	}
	if input.Amount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid point action %q", input.Action))
	}

	var event *models.PointEvent
	err := s.inTx(ctx, func(repo Repository) error {
		var err error
		event, err = s.credit(ctx, repo, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) credit(ctx context.Context, repo Repository, input CreditInput) (*models.PointEvent, error) {
	applied, err := repo.AddPoints(ctx, input.UserProfileID, input.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust point balance")
	}
	if !applied {
		profile, err := repo.FindProfile(ctx, input.UserProfileID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		if profile == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient points")
	}

	return s.appendEvent(ctx, repo, input)
}

func (s *service) GrantSignupBonus(ctx context.Context, userProfileID uuid.UUID) (*models.PointEvent, error) {
	if userProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user profile id is required")
	}

	var event *models.PointEvent
	err := s.inTx(ctx, func(repo Repository) error {
		claimed, err := repo.ClaimSignupBonus(ctx, userProfileID, s.cfg.SignupBonus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim signup bonus")
		}
		if !claimed {
			profile, err := repo.FindProfile(ctx, userProfileID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
			}
			if profile == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return nil
		}

		event, err = s.appendEvent(ctx, repo, CreditInput{
			UserProfileID: userProfileID,
			Amount:        s.cfg.SignupBonus,
			Action:        enums.PointActionSignup,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if event != nil && s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userProfileID.String()), "signup bonus credited")
	}
	return event, nil
}

func (s *service) CreditOrderBonus(ctx context.Context, userProfileID uuid.UUID, orderRef string) (*models.PointEvent, error) {
	if userProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user profile id is required")
	}
	if orderRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}

	var event *models.PointEvent
	err := s.inTx(ctx, func(repo Repository) error {
		exists, err := repo.HasEventForReference(ctx, userProfileID, enums.PointActionOrder, orderRef)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check order bonus")
		}
		if exists {
			return nil
		}

		event, err = s.credit(ctx, repo, CreditInput{
			UserProfileID: userProfileID,
			Amount:        s.cfg.OrderBonus,
			Action:        enums.PointActionOrder,
			Reference:     &orderRef,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) Redeem(ctx context.Context, userProfileID uuid.UUID, amount int, reference *string) (*models.PointEvent, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redeem amount must be positive")
	}
	return s.Credit(ctx, CreditInput{
		UserProfileID: userProfileID,
		Amount:        -amount,
		Action:        enums.PointActionRedeem,
		Reference:     reference,
	})
}

func (s *service) Summary(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*Summary, error) {
	profile, err := s.repo.FindProfile(ctx, userProfileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	page, err := s.repo.ListEvents(ctx, userProfileID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list point events")
	}
	return &Summary{Balance: profile.Points, Events: page.Events, NextCursor: page.NextCursor}, nil
}

func (s *service) appendEvent(ctx context.Context, repo Repository, input CreditInput) (*models.PointEvent, error) {
	profile, err := repo.FindProfile(ctx, input.UserProfileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load balance")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	event := &models.PointEvent{
		UserProfileID: input.UserProfileID,
		Action:        input.Action,
		Amount:        input.Amount,
		BalanceAfter:  profile.Points,
		Reference:     input.Reference,
	}
	if err := repo.InsertEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append point event")
	}
	return event, nil
}
