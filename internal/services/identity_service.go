package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

const (
	studentEmailDomain = "@student.usv.ro"
	staffEmailDomain   = "@usv.ro"
)

type identityService struct {
	repo      repositories.Repository
	verifier  *auth.TokenVerifier
	logger    *slog.Logger
	validator *validator.BusinessValidator
}

func NewIdentityService(repo repositories.Repository, verifier *auth.TokenVerifier, logger *slog.Logger, v *validator.BusinessValidator) IdentityService {
	return &identityService{
		repo:      repo,
		verifier:  verifier,
		logger:    logger,
		validator: v,
	}
}

// ResolveOrCreate maps verified claims onto a local account. A known subject
// is returned as stored, whatever the token says about it now; unknown emails
// from a recognized institutional domain get an account on first sight, so
// externally authenticated users never need manual provisioning.
func (s *identityService) ResolveOrCreate(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims.SubjectID != "" {
		user, err := s.repo.Users().GetByID(ctx, claims.SubjectID)
		if err == nil {
			return user, nil
		}
		if !repositories.IsNotFound(err) {
			return nil, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, ErrEmailDomainUnknown
	}

	// Accounts provisioned by an administrator carry a minted ID, not the
	// provider's subject, so an unknown subject may still own a row.
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, err
	}

	role, err := roleForEmail(email, claims.RoleHint)
	if err != nil {
		s.logger.Warn("login from unrecognized email domain", "email_domain", domainOf(email))
		return nil, err
	}

	user = &models.User{
		ID:       newAccountID(claims.SubjectID),
		Email:    email,
		FullName: displayName(claims, email),
		Role:     role,
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		// Concurrent first login: the other request won the insert, reuse
		// its row.
		if repositories.IsDuplicateKey(err) {
			if existing, readErr := s.repo.Users().GetByID(ctx, user.ID); readErr == nil {
				return existing, nil
			}
			return s.repo.Users().GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.Info("provisioned account on first login",
		"user_id", user.ID,
		"role", user.Role)
	return user, nil
}

func (s *identityService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Accounts provisioned from external tokens have no local password and
	// cannot use this path.
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Local credential login is reserved for administrators; everyone else
	// signs in through the identity provider.
	if user.Role != models.RoleAdmin {
		return nil, NewPermissionError(user.ID, "login", "local login is restricted to administrators")
	}

	token, err := s.verifier.IssuePrimaryToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("local login", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{Token: token, User: user}, nil
}

// roleForEmail derives the role from the institutional email domain. The
// token's role hint is user-writable provider metadata, so it is consulted
// only after the domain check and may only mark a student account as group
// representative, never grant staff or admin roles.
func roleForEmail(email string, hint string) (models.UserRole, error) {
	var role models.UserRole
	switch {
	case strings.HasSuffix(email, studentEmailDomain):
		role = models.RoleStudent
	case strings.HasSuffix(email, staffEmailDomain):
		role = models.RoleTeacher
	default:
		return "", ErrEmailDomainUnknown
	}

	if role == models.RoleStudent && strings.ToUpper(hint) == string(models.RoleGroupRep) {
		role = models.RoleGroupRep
	}
	return role, nil
}

func displayName(claims *auth.Claims, email string) string {
	if name := strings.TrimSpace(claims.FullName); name != "" {
		return name
	}
	return utils.DisplayNameFromEmail(email)
}

// newAccountID keeps the external subject as the account ID when present so
// repeat logins stay stable, otherwise mints a fresh one.
func newAccountID(subject string) string {
	if subject != "" {
		return subject
	}
	return uuid.NewString()
}

func domainOf(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok {
		return domain
	}
	return ""
}
