package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// StaffInput creates a back-office account.
type StaffInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Name     string      `json:"name" validate:"required,min=1"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     entity.Role `json:"role" validate:"required,oneof=ADMIN STAFF"`
}

// StaffUpdate renames or changes the role of an account.
type StaffUpdate struct {
	Name *string      `json:"name,omitempty" validate:"omitempty,min=1"`
	Role *entity.Role `json:"role,omitempty" validate:"omitempty,oneof=ADMIN STAFF CUSTOMER"`
}

// StaffStats counts back-office accounts.
type StaffStats struct {
	TotalStaff   int `json:"totalStaff"`
	Admins       int `json:"admins"`
	StaffMembers int `json:"staffMembers"`
}

var staffRoles = []entity.Role{entity.RoleAdmin, entity.RoleStaff}

// StaffService manages ADMIN and STAFF accounts.
type StaffService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewStaffService(users repository.UserRepository, log *zap.Logger) *StaffService {
	return &StaffService{users: users, log: log}
}

func (s *StaffService) List(ctx context.Context) ([]entity.User, StaffStats, error) {
	staff, _, err := s.users.List(ctx, repository.UserFilter{Roles: staffRoles})
	if err != nil {
		return nil, StaffStats{}, err
	}
	stats := StaffStats{TotalStaff: len(staff)}
	for _, u := range staff {
		if u.Role == entity.RoleAdmin {
			stats.Admins++
		} else {
			stats.StaffMembers++
		}
	}
	return staff, stats, nil
}

func (s *StaffService) Create(ctx context.Context, in StaffInput, actorID string) (*entity.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in, "Invalid data"); err != nil {
		return nil, err
	}
	if err := checkPasswordSize(in.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, conflict("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: in.Email, Name: strings.TrimSpace(in.Name), Password: hash, Role: in.Role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, orConflict(err, "User with this email already exists")
	}
	s.log.Info("Staff account created",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("created_by", actorID),
	)
	return u, nil
}

// Update changes an account. Admins cannot demote themselves.
func (s *StaffService) Update(ctx context.Context, id string, in StaffUpdate, actorID string) (*entity.User, error) {
	if err := check(in, "Invalid data"); err != nil {
		return nil, err
	}
	if id == actorID && in.Role != nil && *in.Role != entity.RoleAdmin {
		return nil, invalid("You cannot change your own role")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, orNotFound(err, "User not found")
	}
	return u, nil
}

// Delete removes a back-office account. Admins cannot delete themselves.
func (s *StaffService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return invalid("You cannot delete your own account")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err, "User not found")
	}
	if u.Role != entity.RoleAdmin && u.Role != entity.RoleStaff {
		return invalid("User is not a staff member")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return orNotFound(err, "User not found")
	}
	s.log.Info("Staff account deleted", zap.String("user_id", id), zap.String("deleted_by", actorID))
	return nil
}
