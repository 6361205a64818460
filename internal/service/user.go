package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-user-service/internal/core/auth"
	"go-user-service/internal/core/cache"
	"go-user-service/internal/domain"
	"go-user-service/internal/events"
	"go-user-service/internal/store"
	"go-user-service/pkg/utils"
)

const readCacheTTL = 5 * time.Minute

// TokenPair is the sign-in/refresh result. ExpireIn is the access-token
// lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpireIn     int64  `json:"expireIn"`
}

// UserService orchestrates validation, hashing, token issuance, persistence
// and invalidation broadcasting for the users collection.
type UserService struct {
	store    domain.UserStore
	tokens   *auth.Tokens
	bc       events.Broadcaster
	cache    *cache.Cache // nil disables the read-through path
	hashCost int
	log      *zap.Logger
}

func NewUserService(st domain.UserStore, tokens *auth.Tokens, bc events.Broadcaster, c *cache.Cache, hashCost int, log *zap.Logger) *UserService {
	return &UserService{store: st, tokens: tokens, bc: bc, cache: c, hashCost: hashCost, log: log}
}

// entityChanged fires exactly once per successful mutation. The broadcaster
// itself is async, the mutation never waits on cache purges.
func (s *UserService) entityChanged(op string) {
	s.bc.EntityChanged(domain.CollectionUsers)
	s.log.Debug("entity changed", zap.String("collection", domain.CollectionUsers), zap.String("op", op))
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	// fast-path duplicate check; the storage constraint stays the arbiter
	// under concurrency
	existing, err := s.store.FindOne(ctx, domain.Filter{Email: in.Email})
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate("email already exists")
	}

	hash, err := utils.HashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	gender := in.Gender
	if gender == nil {
		g := domain.GenderMale
		gender = &g
	}
	now := time.Now()
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Address:   in.Address,
		Gender:    gender,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if store.IsDupKey(err) {
			return nil, domain.ErrDuplicate("email already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	s.entityChanged("create")
	out := u.Sanitized()
	return &out, nil
}

// Get serves reads through the cache when one is configured; invalidation
// broadcasts purge the namespace after every mutation.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	load := func(ctx context.Context) (*domain.User, error) {
		return s.store.FindByID(ctx, id, false)
	}
	var (
		u   *domain.User
		err error
	)
	if s.cache != nil {
		u, err = cache.GetOrLoadJSON(s.cache, ctx, domain.CollectionUsers+".id."+id, readCacheTTL, load)
	} else {
		u, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	out := u.Sanitized()
	return &out, nil
}

func (s *UserService) List(ctx context.Context, q domain.Query) ([]domain.User, error) {
	users, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context, q domain.Query) (int64, error) {
	n, err := s.store.Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound("user not found")
	}

	patch := domain.Patch{"updated_at": time.Now()}
	if in.Name != nil {
		patch["name"] = *in.Name
	}
	if in.Email != nil && *in.Email != current.Email {
		dup, err := s.store.FindOne(ctx, domain.Filter{Email: *in.Email})
		if err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		if dup != nil {
			return nil, domain.ErrDuplicate("email already exists")
		}
		patch["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch["password"] = hash
	}
	if in.Address != nil {
		patch["address"] = *in.Address
	}
	if in.Gender != nil {
		patch["gender"] = *in.Gender
	}
	if in.Phone != nil {
		patch["phone"] = *in.Phone
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if store.IsDupKey(err) {
			return nil, domain.ErrDuplicate("email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	s.entityChanged("update")
	out := updated.Sanitized()
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (*domain.User, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if removed == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	s.entityChanged("delete")
	out := removed.Sanitized()
	return &out, nil
}

// SignIn authenticates by email. Unknown email and wrong password surface
// the same error kind; only the field detail differs.
func (s *UserService) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.store.FindOne(ctx, domain.Filter{Email: username})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrCredentials("username")
	}
	if !utils.CheckPassword(password, u.Password) {
		return nil, domain.ErrCredentials("password")
	}

	access, err := s.tokens.Issue(u.ID, u.Email, auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(u.ID, u.Email, auth.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    s.tokens.Type,
		ExpireIn:     int64(s.tokens.Access.TTL.Seconds()),
	}, nil
}

// ResolveToken verifies an access token and loads its subject. A soft
// deleted user is treated as absent: the token stops resolving the moment
// the record is deleted, matching the soft-delete convention everywhere
// else in the service.
func (s *UserService) ResolveToken(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.Verify(accessToken, auth.KindAccess)
	if err != nil {
		return nil, domain.ErrToken("")
	}
	u, err := s.store.FindByID(ctx, claims.UID, false)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrToken("token subject no longer exists")
	}
	out := u.Sanitized()
	return &out, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, domain.ErrToken("")
	}
	u, err := s.store.FindByID(ctx, claims.UID, false)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrToken("token subject no longer exists")
	}
	access, err := s.tokens.Issue(u.ID, u.Email, auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &TokenPair{
		AccessToken: access,
		TokenType:   s.tokens.Type,
		ExpireIn:    int64(s.tokens.Access.TTL.Seconds()),
	}, nil
}
