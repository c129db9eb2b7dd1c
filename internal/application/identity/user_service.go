package identity

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/auth"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmailExists is returned when an account already uses the email
var ErrEmailExists = shared.NewDomainError("EMAIL_EXISTS", "Email already exists")

// UserService manages employee accounts
type UserService struct {
	userRepo   identity.UserRepository
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewUserService creates a new user service. sessionTTL is the lifetime of
// a session token; revocations are kept that long.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Create creates an employee. Explicit permissions replace the role's
// default template.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := user.SetProfile(req.Name, req.Position); err != nil {
		return nil, err
	}
	if len(req.Permissions) > 0 {
		perms, err := identity.ParsePermissionSet(req.Permissions)
		if err != nil {
			return nil, err
		}
		user.SetPermissions(perms)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("employee created",
		zap.String("employee_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Get returns one employee
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns a page of employees
func (s *UserService) List(ctx context.Context, f UserListFilter) (*shared.Paginated[UserResponse], error) {
	filter := identity.UserFilter{Filter: shared.DefaultFilter(), Role: identity.Role(f.Role), Active: f.Active}
	filter.Search = f.Search
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}

	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update changes profile, role, permissions or activation. Deactivating an
// employee revokes every session issued to them.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Position != nil {
		name, position := user.Name, user.Position
		if req.Name != nil {
			name = *req.Name
		}
		if req.Position != nil {
			position = *req.Position
		}
		if err := user.SetProfile(name, position); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		role, err := identity.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if err := user.SetRole(role); err != nil {
			return nil, err
		}
	}
	if req.Permissions != nil {
		perms, err := identity.ParsePermissionSet(*req.Permissions)
		if err != nil {
			return nil, err
		}
		user.SetPermissions(perms)
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	deactivated := false
	if req.Active != nil && *req.Active != user.Active {
		if *req.Active {
			user.Activate()
		} else {
			user.Deactivate()
			deactivated = true
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	log := logger.Enrich(ctx, s.logger)
	if deactivated && s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.sessionTTL); err != nil {
			log.Error("failed to revoke sessions of deactivated employee",
				zap.String("employee_id", user.ID.String()), zap.Error(err))
			return nil, shared.WrapDomainError("INTERNAL_ERROR", "Employee deactivated but sessions could not be revoked", err)
		}
	}
	log.Info("employee updated",
		zap.String("employee_id", user.ID.String()),
		zap.Bool("active", user.Active))

	resp := ToUserResponse(user)
	return &resp, nil
}
