package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/util"
)

// Registration is the payload of a new account.
type Registration struct {
	Fullname         string `json:"fullname" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	RepeatedPassword string `json:"repeated_password" validate:"required,eqfield=Password"`
}

// Session is a signed-in user with the bearer token to present on later calls.
type Session struct {
	Token string
	User  models.User
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, in Registration) (Session, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = normalizeEmail(in.Email)
	if err := s.checkStruct(in); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.users.CreateUser(ctx, in.Email, in.Fullname, hash)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return s.session(user)
}

// Login checks the credentials and signs the user in. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, util.NewInvalidArgumentErrorf("email and password are required")
	}
	invalid := util.NewInvalidArgumentErrorf("invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, util.ErrNotExist) {
		return Session{}, invalid
	}
	if err != nil {
		return Session{}, err
	}
	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, invalid
	}
	return s.session(user)
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, util.NewUnauthenticatedErrorf("authentication credentials were not provided")
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, util.NewUnauthenticatedErrorf("invalid or expired token")
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, util.ErrNotExist) {
		return models.User{}, util.NewUnauthenticatedErrorf("invalid or expired token")
	}
	if err != nil {
		return models.User{}, err
	}
	return access.RequireAuthenticated(&user)
}

// FindUserByEmail looks up the public view of a user.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (models.UserSummary, error) {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return models.UserSummary{}, err
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

// checkUsersExist fails with ErrInvalidArgument naming the unknown ids.
func (s *Service) checkUsersExist(ctx context.Context, field string, ids []int64) error {
	missing, err := s.users.MissingUsers(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return util.NewInvalidArgumentErrorf("%s: unknown user ids %v", field, missing)
	}
	return nil
}
