package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/platewise/platewise/internal/authctx"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/config"
	policydomain "github.com/platewise/platewise/internal/policy/domain"
	"github.com/platewise/platewise/internal/reviewer/domain"
	pkgdb "github.com/platewise/platewise/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	PolicySvc policydomain.Service
}

type Service struct {
	cfg       config.Config
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	policySvc policydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		cfg:       p.Cfg,
		db:        p.DB,
		log:       p.Log.Named("reviewer.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		policySvc: p.PolicySvc,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Reviewer, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Reviewer{}, domain.ErrInvalidEmail
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return domain.Reviewer{}, domain.ErrInvalidNickname
	}
	if len(req.Password) < 8 {
		return domain.Reviewer{}, domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Reviewer{}, err
	}

	now := s.clock.Now().UTC()
	reviewer := domain.Reviewer{
		ID:        s.genID.Generate(),
		Email:     email,
		Nickname:  nickname,
		Password:  string(hash),
		Role:      domain.RoleUser,
		Tier:      domain.TierRookie,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if exists, err := s.repo.ExistsByEmail(ctx, tx, email); err != nil {
			return err
		} else if exists {
			return domain.ErrDuplicateEmail
		}
		if exists, err := s.repo.ExistsByNickname(ctx, tx, nickname); err != nil {
			return err
		} else if exists {
			return domain.ErrDuplicateNickname
		}
		if err := s.repo.Insert(ctx, tx, &reviewer); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Reviewer{}, err
	}

	s.log.Info("reviewer registered",
		zap.String("reviewer_id", reviewer.ID.String()),
		zap.String("nickname", reviewer.Nickname),
	)
	return reviewer, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	reviewer, err := s.repo.FindByEmail(ctx, s.db, strings.TrimSpace(req.Email))
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if reviewer == nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(*reviewer)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		Reviewer:    *reviewer,
	}, nil
}

func (s *Service) issueToken(reviewer domain.Reviewer) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":  reviewer.ID.String(),
		"role": string(reviewer.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AuthJWTSecret))
}

func (s *Service) GetProfile(ctx context.Context) (domain.Reviewer, error) {
	reviewer, err := s.currentReviewer(ctx, s.db)
	if err != nil {
		return domain.Reviewer{}, err
	}
	return *reviewer, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.Reviewer, error) {
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return domain.Reviewer{}, domain.ErrInvalidNickname
	}

	var updated domain.Reviewer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reviewer, err := s.currentReviewer(ctx, tx)
		if err != nil {
			return err
		}
		if reviewer.Nickname != nickname {
			if exists, err := s.repo.ExistsByNickname(ctx, tx, nickname); err != nil {
				return err
			} else if exists {
				return domain.ErrDuplicateNickname
			}
			reviewer.Nickname = nickname
			reviewer.UpdatedAt = s.clock.Now().UTC()
			if err := s.repo.Save(ctx, tx, reviewer); err != nil {
				return err
			}
		}
		updated = *reviewer
		return nil
	})
	if err != nil {
		return domain.Reviewer{}, err
	}
	return updated, nil
}

func (s *Service) Follow(ctx context.Context, targetID string) error {
	currentID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || currentID == 0 {
		return domain.ErrUnauthenticated
	}
	target, err := s.parseID(targetID)
	if err != nil {
		return err
	}
	if target == currentID {
		return domain.ErrSelfFollow
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if reviewer, err := s.repo.FindByID(ctx, tx, target); err != nil {
			return err
		} else if reviewer == nil {
			return domain.ErrNotFound
		}
		if existing, err := s.repo.FindFollow(ctx, tx, currentID, target); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrAlreadyFollowing
		}
		follow := domain.Follow{
			ID:          s.genID.Generate(),
			FollowerID:  currentID,
			FollowingID: target,
			CreatedAt:   s.clock.Now().UTC(),
		}
		if err := s.repo.InsertFollow(ctx, tx, &follow); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyFollowing
			}
			return err
		}
		return nil
	})
}

func (s *Service) Unfollow(ctx context.Context, targetID string) error {
	currentID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || currentID == 0 {
		return domain.ErrUnauthenticated
	}
	target, err := s.parseID(targetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		follow, err := s.repo.FindFollow(ctx, tx, currentID, target)
		if err != nil {
			return err
		}
		if follow == nil {
			return domain.ErrFollowNotFound
		}
		return s.repo.DeleteFollow(ctx, tx, follow.ID)
	})
}

func (s *Service) AdminSetTier(ctx context.Context, req domain.AdminTierRequest) (domain.Reviewer, error) {
	if !req.Tier.Valid() {
		return domain.Reviewer{}, domain.ErrInvalidTier
	}
	targetID, err := s.parseID(req.ReviewerID)
	if err != nil {
		return domain.Reviewer{}, err
	}

	var updated domain.Reviewer
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireAdmin(ctx, tx); err != nil {
			return err
		}
		target, err := s.repo.FindByID(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrNotFound
		}

		oldTier := target.ForceTier(req.Tier)
		if oldTier == req.Tier {
			updated = *target
			return nil
		}
		target.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, target); err != nil {
			return err
		}
		if err := s.policySvc.HandleTierChanged(ctx, tx, target.ID, oldTier, req.Tier); err != nil {
			return err
		}
		updated = *target
		return nil
	})
	if err != nil {
		return domain.Reviewer{}, err
	}

	s.log.Info("reviewer tier overridden",
		zap.String("reviewer_id", updated.ID.String()),
		zap.String("tier", string(updated.Tier)),
	)
	return updated, nil
}

func (s *Service) AdminSetRole(ctx context.Context, req domain.AdminRoleRequest) (domain.Reviewer, error) {
	if req.Role != domain.RoleUser && req.Role != domain.RoleAdmin {
		return domain.Reviewer{}, domain.ErrInvalidRole
	}
	targetID, err := s.parseID(req.ReviewerID)
	if err != nil {
		return domain.Reviewer{}, err
	}

	currentID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || currentID == 0 {
		return domain.Reviewer{}, domain.ErrUnauthenticated
	}
	// Keeps an administrator from locking themselves out by accident.
	if currentID == targetID {
		return domain.Reviewer{}, domain.ErrSelfRoleChange
	}

	var updated domain.Reviewer
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireAdmin(ctx, tx); err != nil {
			return err
		}
		target, err := s.repo.FindByID(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrNotFound
		}
		target.ForceRole(req.Role)
		target.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, target); err != nil {
			return err
		}
		updated = *target
		return nil
	})
	if err != nil {
		return domain.Reviewer{}, err
	}
	return updated, nil
}

func (s *Service) AdminSetPhoneVerification(ctx context.Context, req domain.AdminPhoneVerificationRequest) (domain.Reviewer, error) {
	targetID, err := s.parseID(req.ReviewerID)
	if err != nil {
		return domain.Reviewer{}, err
	}

	var updated domain.Reviewer
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireAdmin(ctx, tx); err != nil {
			return err
		}
		target, err := s.repo.FindByID(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrNotFound
		}
		target.PhoneVerified = req.Verified
		target.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, target); err != nil {
			return err
		}
		updated = *target
		return nil
	})
	if err != nil {
		return domain.Reviewer{}, err
	}
	return updated, nil
}

func (s *Service) currentReviewer(ctx context.Context, db *gorm.DB) (*domain.Reviewer, error) {
	id, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || id == 0 {
		return nil, domain.ErrUnauthenticated
	}
	reviewer, err := s.repo.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if reviewer == nil {
		return nil, domain.ErrNotFound
	}
	return reviewer, nil
}

func (s *Service) requireAdmin(ctx context.Context, db *gorm.DB) error {
	current, err := s.currentReviewer(ctx, db)
	if err != nil {
		return err
	}
	if current.Role != domain.RoleAdmin {
		return domain.ErrAdminRequired
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
