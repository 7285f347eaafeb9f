package service

import (
	"context"
	"testing"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/common/security"
	"codecamp/internal/domain/model"
	"codecamp/internal/platform/config"
	"codecamp/internal/testutil"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-key"), JWTExp: time.Hour}
	security.InitJWT()
}

func TestSignupAndLogin(t *testing.T) {
	initTestJWT(t)
	users := newFakeUserRepo()
	svc := NewAuthService(users)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{Username: " grace ", Email: "Grace@Example.com", Password: "hopper123"})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, resp.User.Username, "grace")
	testutil.AssertEqual(t, resp.User.Email, "grace@example.com")
	testutil.AssertEqual(t, resp.User.Role, model.RoleUser)
	testutil.AssertTrue(t, resp.Token != "", "token issued")

	byEmail, err := svc.Login(ctx, LoginRequest{LoginField: "GRACE@example.com", Password: "hopper123"})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, byEmail.User.ID, resp.User.ID)

	byName, err := svc.Login(ctx, LoginRequest{LoginField: "grace", Password: "hopper123"})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, byName.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, LoginRequest{LoginField: "grace", Password: "wrong-password"})
	testutil.AssertErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{LoginField: "nobody", Password: "hopper123"})
	testutil.AssertErrorIs(t, err, common.ErrUnauthorized)
}

func TestSignupRejectsBadInput(t *testing.T) {
	initTestJWT(t)
	svc := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Username: "x", Email: "not-an-email", Password: "longenough"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)

	_, err = svc.Signup(ctx, SignupRequest{Username: "x", Email: "x@example.com", Password: "short"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)

	_, err = svc.Signup(ctx, SignupRequest{Email: "x@example.com", Password: "longenough"})
	testutil.AssertErrorIs(t, err, common.ErrBadRequest)
}

func TestSignupDuplicate(t *testing.T) {
	initTestJWT(t)
	svc := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Username: "linus", Email: "linus@example.com", Password: "penguin99"})
	testutil.AssertNil(t, err)
	_, err = svc.Signup(ctx, SignupRequest{Username: "linus", Email: "other@example.com", Password: "penguin99"})
	testutil.AssertErrorIs(t, err, common.ErrConflict)
}

func TestProvisionAdminIsIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users)
	ctx := context.Background()
	req := SignupRequest{Username: "root", Email: "admin@example.com", Password: "supersecret"}

	result, err := svc.ProvisionAdmin(ctx, req)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, result, AdminCreated)

	created, err := users.FindByEmail(ctx, "admin@example.com")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, created.Role, model.RoleAdmin)

	req.Password = "a-different-password"
	result, err = svc.ProvisionAdmin(ctx, req)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, result, AdminUnchanged)

	again, err := users.FindByEmail(ctx, "admin@example.com")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, again.HashedPassword, created.HashedPassword)
	testutil.AssertEqual(t, len(users.users), 1)
}

func TestProvisionAdminPromotesExistingUser(t *testing.T) {
	users := newFakeUserRepo(&model.User{ID: "u1", Username: "ops", Email: "ops@example.com", Role: model.RoleUser})
	svc := NewAuthService(users)

	result, err := svc.ProvisionAdmin(context.Background(), SignupRequest{Username: "ops", Email: "OPS@example.com", Password: "whatever1"})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, result, AdminPromoted)
	testutil.AssertEqual(t, users.get("u1").Role, model.RoleAdmin)
}
