package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-user-service/internal/core/auth"
	"go-user-service/internal/core/database"
	"go-user-service/internal/domain"
	"go-user-service/internal/store"
)

// recorder counts broadcasts per collection, synchronously.
type recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *recorder) EntityChanged(collection string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[collection]++
}

func (r *recorder) count(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[collection]
}

func newTestService(t *testing.T) (*UserService, *recorder) {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: database.DriverMemory, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open memory backend: %v", err)
	}
	if err := store.Migrate(db, database.DriverMemory); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tokens := &auth.Tokens{
		Issuer:  "user-service-test",
		Type:    "Bearer",
		Access:  auth.KindConfig{Secret: []byte("access-secret"), TTL: 15 * time.Minute},
		Refresh: auth.KindConfig{Secret: []byte("refresh-secret"), TTL: 24 * time.Hour},
	}
	rec := &recorder{}
	svc := NewUserService(store.New(db), tokens, rec, nil, bcrypt.MinCost, zap.NewNop())
	return svc, rec
}

func validInput() CreateUserInput {
	return CreateUserInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret123",
		Phone:    "0123456789",
	}
}

func TestCreateHashesPassword(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Password != "" {
		t.Fatal("password leaked in create response")
	}
	if u.Gender == nil || *u.Gender != domain.GenderMale {
		t.Fatalf("gender default not applied: %v", u.Gender)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("timestamps not stamped")
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Password != "" {
		t.Fatal("password leaked in read response")
	}
	// sign-in proves the stored value is a verifiable hash, not plaintext
	if _, err := svc.SignIn(ctx, "jane@example.com", "secret123"); err != nil {
		t.Fatalf("sign in with correct password: %v", err)
	}
	if rec.count(domain.CollectionUsers) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", rec.count(domain.CollectionUsers))
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, validInput())
	if !domain.IsKind(err, domain.KindDuplicate) {
		t.Fatalf("expected duplicate kind, got %v", err)
	}
	if rec.count(domain.CollectionUsers) != 1 {
		t.Fatalf("failed create must not broadcast, got %d", rec.count(domain.CollectionUsers))
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	other := domain.Gender("other")
	short := "x"

	cases := []struct {
		name   string
		mutate func(*CreateUserInput)
	}{
		{"short name", func(in *CreateUserInput) { in.Name = "J" }},
		{"bad email", func(in *CreateUserInput) { in.Email = "not-an-email" }},
		{"short password", func(in *CreateUserInput) { in.Password = "12345" }},
		{"short address", func(in *CreateUserInput) { in.Address = &short }},
		{"bad gender", func(in *CreateUserInput) { in.Gender = &other }},
		{"bad phone", func(in *CreateUserInput) { in.Phone = "123" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			if !domain.IsKind(err, domain.KindValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
			var de *domain.Error
			if ok := errors.As(err, &de); !ok || len(de.Fields) == 0 {
				t.Fatalf("expected field details, got %v", err)
			}
		})
	}
}

func TestSignInMatrix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatal(err)
	}

	pair, err := svc.SignIn(ctx, "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("incomplete token pair")
	}
	if pair.TokenType != "Bearer" || pair.ExpireIn != int64((15*time.Minute).Seconds()) {
		t.Fatalf("bad metadata: %+v", pair)
	}

	if _, err := svc.SignIn(ctx, "jane@example.com", "wrong-pass"); !domain.IsKind(err, domain.KindCredentials) {
		t.Fatalf("wrong password: expected credentials kind, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "secret123"); !domain.IsKind(err, domain.KindCredentials) {
		t.Fatalf("unknown email: expected credentials kind, got %v", err)
	}
}

func TestResolveTokenMatrix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}
	pair, err := svc.SignIn(ctx, "jane@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	u, err := svc.ResolveToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.ID != created.ID || u.Password != "" {
		t.Fatalf("bad resolution: %+v", u)
	}

	// refresh token must not pass where an access token is required
	if _, err := svc.ResolveToken(ctx, pair.RefreshToken); !domain.IsKind(err, domain.KindToken) {
		t.Fatalf("refresh as access: expected token kind, got %v", err)
	}
	if _, err := svc.ResolveToken(ctx, "garbage"); !domain.IsKind(err, domain.KindToken) {
		t.Fatalf("garbage: expected token kind, got %v", err)
	}

	// deleted subject stops resolving even while the signature is valid
	if _, err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResolveToken(ctx, pair.AccessToken); !domain.IsKind(err, domain.KindToken) {
		t.Fatalf("deleted subject: expected token kind, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatal(err)
	}
	pair, err := svc.SignIn(ctx, "jane@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Fatal("no access token minted")
	}
	if _, err := svc.ResolveToken(ctx, fresh.AccessToken); err != nil {
		t.Fatalf("minted token does not resolve: %v", err)
	}

	// an access token is not a refresh token
	if _, err := svc.Refresh(ctx, pair.AccessToken); !domain.IsKind(err, domain.KindToken) {
		t.Fatalf("access as refresh: expected token kind, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}

	name := "Janet Doe"
	updated, err := svc.Update(ctx, created.ID, UpdateUserInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Janet Doe" {
		t.Fatalf("name not updated: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updatedAt not refreshed")
	}
	if updated.CreatedAt.Unix() != created.CreatedAt.Unix() {
		t.Fatal("createdAt must not change")
	}

	// password change re-hashes and the new password signs in
	pw := "newsecret"
	if _, err := svc.Update(ctx, created.ID, UpdateUserInput{Password: &pw}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignIn(ctx, "jane@example.com", "newsecret"); err != nil {
		t.Fatalf("sign in after password change: %v", err)
	}
	if _, err := svc.SignIn(ctx, "jane@example.com", "secret123"); !domain.IsKind(err, domain.KindCredentials) {
		t.Fatalf("old password still valid: %v", err)
	}

	bad := "x"
	if _, err := svc.Update(ctx, created.ID, UpdateUserInput{Name: &bad}); !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing-id", UpdateUserInput{Name: &name}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}

	// email change onto an existing live email is a duplicate
	in2 := validInput()
	in2.Email = "second@example.com"
	if _, err := svc.Create(ctx, in2); err != nil {
		t.Fatal(err)
	}
	taken := "second@example.com"
	if _, err := svc.Update(ctx, created.ID, UpdateUserInput{Email: &taken}); !domain.IsKind(err, domain.KindDuplicate) {
		t.Fatalf("expected duplicate kind, got %v", err)
	}

	if got := rec.count(domain.CollectionUsers); got != 4 { // 2 creates + 2 updates
		t.Fatalf("expected 4 broadcasts, got %d", got)
	}
}

func TestDeleteSoftSemantics(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.DeletedAt.Valid {
		t.Fatal("deletedAt not stamped")
	}

	// absent from default reads and listings
	if _, err := svc.Get(ctx, created.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	list, err := svc.List(ctx, domain.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted record in default listing: %+v", list)
	}

	// former email is free for a new create
	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("recreate with former email: %v", err)
	}

	if _, err := svc.Delete(ctx, created.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("repeat delete: expected not-found, got %v", err)
	}

	if got := rec.count(domain.CollectionUsers); got != 3 { // create + delete + create
		t.Fatalf("expected 3 broadcasts, got %d", got)
	}
}

func TestListAndCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		in := validInput()
		in.Email = email
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	list, err := svc.List(ctx, domain.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for _, u := range list {
		if u.Password != "" {
			t.Fatal("password leaked in listing")
		}
	}
	n, err := svc.Count(ctx, domain.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}
