package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/platewise/platewise/internal/authctx"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/config"
	policyservice "github.com/platewise/platewise/internal/policy/service"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewrepo "github.com/platewise/platewise/internal/review/repository"
	"github.com/platewise/platewise/internal/reviewer/domain"
	reviewerrepo "github.com/platewise/platewise/internal/reviewer/repository"
	scoringservice "github.com/platewise/platewise/internal/scoring/service"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	storerepo "github.com/platewise/platewise/internal/store/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var testDBSeq int

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:reviewer%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Reviewer{},
		&domain.Follow{},
		&storedomain.Store{},
		&reviewdomain.Review{},
		&reviewdomain.StoreVisit{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	scoringSvc := scoringservice.New(scoringservice.Params{
		Log:          log,
		Clock:        clk,
		ReviewRepo:   reviewrepo.Provide(),
		StoreRepo:    storerepo.Provide(),
		ReviewerRepo: reviewerrepo.Provide(),
	})
	policySvc := policyservice.New(policyservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        clk,
		ReviewRepo:   reviewrepo.Provide(),
		VisitRepo:    reviewrepo.ProvideVisit(),
		ReviewerRepo: reviewerrepo.Provide(),
		ScoringSvc:   scoringSvc,
	})
	svc := New(Params{
		Cfg:       config.Config{AuthJWTSecret: testSecret},
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Repo:      reviewerrepo.Provide(),
		PolicySvc: policySvc,
	})

	return &fixture{t: t, db: db, node: node, clock: clk, svc: svc}
}

func (f *fixture) register(email, nickname string) domain.Reviewer {
	r, err := f.svc.Register(context.Background(), domain.RegisterRequest{
		Email:    email,
		Nickname: nickname,
		Password: "password123",
	})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) as(id snowflake.ID) context.Context {
	return authctx.WithReviewerID(context.Background(), id)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	r := f.register("kim@example.com", "foodie")
	assert.Equal(t, domain.RoleUser, r.Role)
	assert.Equal(t, domain.TierRookie, r.Tier)
	assert.NotEqual(t, "password123", r.Password)

	_, err := f.svc.Register(context.Background(), domain.RegisterRequest{
		Email: "kim@example.com", Nickname: "other", Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = f.svc.Register(context.Background(), domain.RegisterRequest{
		Email: "lee@example.com", Nickname: "foodie", Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateNickname)

	_, err = f.svc.Register(context.Background(), domain.RegisterRequest{
		Email: "park@example.com", Nickname: "short", Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = f.svc.Register(context.Background(), domain.RegisterRequest{
		Email: "not-an-email", Nickname: "x", Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	registered := f.register("kim@example.com", "foodie")

	resp, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email: "kim@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.Reviewer.ID)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithTimeFunc(f.clock.Now))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, registered.ID.String(), claims["sub"])
	assert.Equal(t, "USER", claims["role"])

	_, err = f.svc.Login(context.Background(), domain.LoginRequest{
		Email: "kim@example.com", Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), domain.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	a := f.register("a@example.com", "alpha")
	f.register("b@example.com", "beta")

	updated, err := f.svc.UpdateProfile(f.as(a.ID), domain.UpdateProfileRequest{Nickname: "gamma"})
	require.NoError(t, err)
	assert.Equal(t, "gamma", updated.Nickname)

	_, err = f.svc.UpdateProfile(f.as(a.ID), domain.UpdateProfileRequest{Nickname: "beta"})
	assert.ErrorIs(t, err, domain.ErrDuplicateNickname)
}

func TestFollow(t *testing.T) {
	f := newFixture(t)
	a := f.register("a@example.com", "alpha")
	b := f.register("b@example.com", "beta")

	assert.ErrorIs(t, f.svc.Follow(f.as(a.ID), a.ID.String()), domain.ErrSelfFollow)

	require.NoError(t, f.svc.Follow(f.as(a.ID), b.ID.String()))
	assert.ErrorIs(t, f.svc.Follow(f.as(a.ID), b.ID.String()), domain.ErrAlreadyFollowing)

	require.NoError(t, f.svc.Unfollow(f.as(a.ID), b.ID.String()))
	assert.ErrorIs(t, f.svc.Unfollow(f.as(a.ID), b.ID.String()), domain.ErrFollowNotFound)

	missing := f.node.Generate()
	assert.ErrorIs(t, f.svc.Follow(f.as(a.ID), missing.String()), domain.ErrNotFound)
}

func TestAdminSetTier(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com", "admin")
	require.NoError(t, f.db.Model(&domain.Reviewer{}).Where("id = ?", admin.ID).
		Update("role", domain.RoleAdmin).Error)
	target := f.register("user@example.com", "user")

	// Non-admins are refused.
	_, err := f.svc.AdminSetTier(f.as(target.ID), domain.AdminTierRequest{
		ReviewerID: target.ID.String(), Tier: domain.TierElite,
	})
	assert.ErrorIs(t, err, domain.ErrAdminRequired)

	updated, err := f.svc.AdminSetTier(f.as(admin.ID), domain.AdminTierRequest{
		ReviewerID: target.ID.String(), Tier: domain.TierElite,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TierElite, updated.Tier)

	_, err = f.svc.AdminSetTier(f.as(admin.ID), domain.AdminTierRequest{
		ReviewerID: target.ID.String(), Tier: "PLATINUM",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
}

func TestAdminSetTier_RestrictionSuspendsPublicReviews(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com", "admin")
	require.NoError(t, f.db.Model(&domain.Reviewer{}).Where("id = ?", admin.ID).
		Update("role", domain.RoleAdmin).Error)
	target := f.register("user@example.com", "user")

	store := &storedomain.Store{ID: f.node.Generate(), Name: "store", Blind: false, CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}
	require.NoError(t, f.db.Create(store).Error)
	review := &reviewdomain.Review{
		ID:             f.node.Generate(),
		StoreID:        store.ID,
		ReviewerID:     target.ID,
		Content:        "x",
		ScoreComposite: 5.00,
		Status:         reviewdomain.StatusPublic,
		CreatedAt:      f.clock.Now(),
		UpdatedAt:      f.clock.Now(),
	}
	require.NoError(t, f.db.Create(review).Error)

	_, err := f.svc.AdminSetTier(f.as(admin.ID), domain.AdminTierRequest{
		ReviewerID: target.ID.String(), Tier: domain.TierRestricted,
	})
	require.NoError(t, err)

	var got reviewdomain.Review
	require.NoError(t, f.db.First(&got, "id = ?", review.ID).Error)
	assert.Equal(t, reviewdomain.StatusSuspended, got.Status)
}

func TestAdminSetRole(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com", "admin")
	require.NoError(t, f.db.Model(&domain.Reviewer{}).Where("id = ?", admin.ID).
		Update("role", domain.RoleAdmin).Error)
	target := f.register("user@example.com", "user")

	// Admins cannot change their own role.
	_, err := f.svc.AdminSetRole(f.as(admin.ID), domain.AdminRoleRequest{
		ReviewerID: admin.ID.String(), Role: domain.RoleUser,
	})
	assert.ErrorIs(t, err, domain.ErrSelfRoleChange)

	updated, err := f.svc.AdminSetRole(f.as(admin.ID), domain.AdminRoleRequest{
		ReviewerID: target.ID.String(), Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestAdminSetPhoneVerification(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com", "admin")
	require.NoError(t, f.db.Model(&domain.Reviewer{}).Where("id = ?", admin.ID).
		Update("role", domain.RoleAdmin).Error)
	target := f.register("user@example.com", "user")
	assert.False(t, target.PhoneVerified)

	updated, err := f.svc.AdminSetPhoneVerification(f.as(admin.ID), domain.AdminPhoneVerificationRequest{
		ReviewerID: target.ID.String(), Verified: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.PhoneVerified)
}
