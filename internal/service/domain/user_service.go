package domain

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/validation"
)

const (
	confirmationSubject = "Confirmation code"
	confirmationBody    = "Your confirmation code: %s"
)

type SignUpInput struct {
	Username string `json:"username" validate:"required,max=150,username,notreserved"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

type TokenInput struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// ProfilePatch is what an actor may change about itself. It has no role
// field, so a self-service update can never change privileges.
type ProfilePatch struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username,notreserved"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

type UserPatch struct {
	ProfilePatch
	Role *string `json:"role" validate:"omitempty,role"`
}

type CreateUserInput struct {
	Username  string `json:"username" validate:"required,max=150,username,notreserved"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,role"`
}

type UserService interface {
	SignUp(input SignUpInput) (*model.User, error)
	IssueToken(input TokenInput) (string, error)
	GetUserByID(id uint) (*model.User, error)

	GetMe(actor *model.User) (*model.User, error)
	UpdateMe(actor *model.User, patch ProfilePatch) (*model.User, error)

	ListUsers(actor *model.User, search string) ([]model.User, error)
	CreateUser(actor *model.User, input CreateUserInput) (*model.User, error)
	GetUser(actor *model.User, username string) (*model.User, error)
	UpdateUser(actor *model.User, username string, patch UserPatch) (*model.User, error)
	DeleteUser(actor *model.User, username string) error

	EnsureSuperuser(username, email string) (*model.User, error)
}

type userService struct {
	db      repository.TxRunner
	repo    repository.UserRepo
	reviews repository.ReviewRepo
	cache   RatingCache
	codes   ConfirmationCodes
	tokens  TokenMinter
	mailer  Mailer
	logger  *zap.Logger
	now     func() time.Time
}

var _ UserService = (*userService)(nil)

func NewUserService(db repository.TxRunner, userRepo repository.UserRepo, reviewRepo repository.ReviewRepo,
	cache RatingCache, codes ConfirmationCodes, tokens TokenMinter, mailer Mailer, logger *zap.Logger) *userService {
	return &userService{
		db:      db,
		repo:    userRepo,
		reviews: reviewRepo,
		cache:   cache,
		codes:   codes,
		tokens:  tokens,
		mailer:  mailer,
		logger:  logger,
		now:     time.Now,
	}
}

/*
* signup & token exchange
 */

// SignUp gets or creates the actor for the exact (username, email) pair
// and sends it a fresh confirmation code. Repeating the same pair is
// idempotent; reusing either value with a different counterpart is a
// validation error.
func (s *userService) SignUp(input SignUpInput) (*model.User, error) {
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}

	user, err := s.getOrCreate(input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	s.sendConfirmationCode(user)
	return user, nil
}

func (s *userService) getOrCreate(username, email string) (*model.User, error) {
	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := signupOwner(repo, username, email)
		if err != nil {
			return err
		}
		if existing != nil {
			user = existing
			return nil
		}
		user = &model.User{
			Username: username,
			Email:    email,
			Role:     model.RoleUser,
		}
		return repo.Create(user)
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// a concurrent signup committed first; the unique indexes decided
	existing, lookupErr := signupOwner(s.repo, username, email)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, fmt.Errorf("signup %q: %w", username, service.ErrConflict)
	}
	return existing, nil
}

// signupOwner returns the actor holding exactly this pair, nil when
// neither value is taken, or a validation error when either value belongs
// to another actor.
func signupOwner(repo repository.UserRepo, username, email string) (*model.User, error) {
	byName, err := optional(repo.GetByUsername(username))
	if err != nil {
		return nil, err
	}
	byEmail, err := optional(repo.GetByEmail(email))
	if err != nil {
		return nil, err
	}

	verr := &service.ValidationError{}
	if byName != nil && byName.Email != email {
		verr.Add("username", "A user with that username is registered with a different email.")
	}
	if byEmail != nil && byEmail.Username != username {
		verr.Add("email", "This email is registered with a different username.")
	}
	if !verr.Empty() {
		return nil, verr
	}
	return byName, nil
}

func (s *userService) sendConfirmationCode(user *model.User) {
	code := s.codes.Make(user)
	body := fmt.Sprintf(confirmationBody, code)
	if err := s.mailer.Send(user.Email, confirmationSubject, body); err != nil {
		s.logger.Warn("failed to dispatch confirmation code",
			zap.String("username", user.Username),
			zap.Error(err))
	}
}

func (s *userService) IssueToken(input TokenInput) (string, error) {
	if err := validation.ValidateStruct(&input); err != nil {
		return "", err
	}

	user, err := s.repo.GetByUsername(input.Username)
	if err != nil {
		return "", translateErr(err)
	}
	if !s.codes.Check(user, input.ConfirmationCode) {
		return "", service.ErrInvalidConfirmationCode
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		return "", err
	}
	// moving last_login retires every code derived from the old state
	if err := s.repo.UpdateLastLogin(user.ID, s.now()); err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translateErr(err)
	}
	return user, nil
}

/*
* self-service profile
 */

func (s *userService) GetMe(actor *model.User) (*model.User, error) {
	if err := access.CheckCollection(access.Authenticated, actor, access.ActionRetrieve); err != nil {
		return nil, err
	}
	return s.GetUserByID(actor.ID)
}

func (s *userService) UpdateMe(actor *model.User, patch ProfilePatch) (*model.User, error) {
	if err := access.CheckCollection(access.Authenticated, actor, access.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&patch); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(actor.ID)
	if err != nil {
		return nil, err
	}
	applyProfilePatch(user, patch)
	if err := s.save(user); err != nil {
		return nil, err
	}
	return user, nil
}

/*
* administration
 */

func (s *userService) ListUsers(actor *model.User, search string) ([]model.User, error) {
	if err := access.CheckCollection(access.AdminOnly, actor, access.ActionList); err != nil {
		return nil, err
	}
	return s.repo.List(search)
}

func (s *userService) CreateUser(actor *model.User, input CreateUserInput) (*model.User, error) {
	if err := access.CheckCollection(access.AdminOnly, actor, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}

	role := model.RoleUser
	if input.Role != "" {
		role = model.Role(input.Role)
	}
	user := &model.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      role,
	}
	if err := s.checkUnique(user); err != nil {
		return nil, err
	}
	if err := s.repo.Create(user); err != nil {
		return nil, translateErr(err)
	}
	return user, nil
}

func (s *userService) GetUser(actor *model.User, username string) (*model.User, error) {
	return access.Authorize(access.AdminOnly, actor, access.ActionRetrieve, s.loadByUsername(username))
}

func (s *userService) UpdateUser(actor *model.User, username string, patch UserPatch) (*model.User, error) {
	user, err := access.Authorize(access.AdminOnly, actor, access.ActionUpdate, s.loadByUsername(username))
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&patch); err != nil {
		return nil, err
	}

	applyProfilePatch(user, patch.ProfilePatch)
	if patch.Role != nil {
		user.Role = model.Role(*patch.Role)
	}
	if err := s.save(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(actor *model.User, username string) error {
	user, err := access.Authorize(access.AdminOnly, actor, access.ActionDelete, s.loadByUsername(username))
	if err != nil {
		return err
	}

	// the user's reviews go with the row, so their titles' ratings change
	reviewed, err := s.reviews.TitleIDsByAuthor(user.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(user.ID); err != nil {
		return err
	}
	for _, titleID := range reviewed {
		dropRating(s.cache, s.logger, titleID)
	}
	return nil
}

// EnsureSuperuser creates the actor, or promotes an existing one with the
// same username, to admin with superuser rights.
func (s *userService) EnsureSuperuser(username, email string) (*model.User, error) {
	input := SignUpInput{Username: username, Email: email}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := optional(repo.GetByUsername(username))
		if err != nil {
			return err
		}
		if existing == nil {
			user = &model.User{
				Username:    username,
				Email:       email,
				Role:        model.RoleAdmin,
				IsSuperuser: true,
			}
			return repo.Create(user)
		}
		existing.Role = model.RoleAdmin
		existing.IsSuperuser = true
		user = existing
		return repo.Update(existing)
	})
	if err != nil {
		return nil, translateErr(err)
	}
	return user, nil
}

func (s *userService) loadByUsername(username string) func() (*model.User, error) {
	return func() (*model.User, error) {
		user, err := s.repo.GetByUsername(username)
		if err != nil {
			return nil, translateErr(err)
		}
		return user, nil
	}
}

func (s *userService) save(user *model.User) error {
	if err := s.checkUnique(user); err != nil {
		return err
	}
	if err := s.repo.Update(user); err != nil {
		return translateErr(err)
	}
	return nil
}

// checkUnique reports username/email already held by another actor.
func (s *userService) checkUnique(user *model.User) error {
	verr := &service.ValidationError{}

	byName, err := optional(s.repo.GetByUsername(user.Username))
	if err != nil {
		return err
	}
	if byName != nil && byName.ID != user.ID {
		verr.Add("username", "A user with that username already exists.")
	}

	byEmail, err := optional(s.repo.GetByEmail(user.Email))
	if err != nil {
		return err
	}
	if byEmail != nil && byEmail.ID != user.ID {
		verr.Add("email", "A user with that email already exists.")
	}

	if !verr.Empty() {
		return verr
	}
	return nil
}

func applyProfilePatch(user *model.User, patch ProfilePatch) {
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
}
