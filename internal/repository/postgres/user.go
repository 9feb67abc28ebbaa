package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by gorm.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Preload("Reward").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).Preload("Reward").
		First(&u, "LOWER(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, f repository.UserFilter) ([]entity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{})
	if len(f.Roles) > 0 {
		q = q.Where("role IN ?", f.Roles)
	}
	if f.Query != "" {
		s := like(strings.ToLower(f.Query))
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []entity.User
	if err := paginate(q.Preload("Reward").Order("created_at DESC"), f.Page).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, u *entity.User) error {
	err := r.db.WithContext(ctx).Model(u).Omit(clause.Associations).
		Select("email", "name", "password", "role", "updated_at").
		Updates(u).Error
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reward entity.CustomerReward
		err := tx.First(&reward, "user_id = ?", id).Error
		if err == nil {
			if err := tx.Delete(&entity.PointTransaction{}, "reward_id = ?", reward.ID).Error; err != nil {
				return fmt.Errorf("failed to delete point transactions: %w", err)
			}
			if err := tx.Delete(&reward).Error; err != nil {
				return fmt.Errorf("failed to delete reward account: %w", err)
			}
		} else if !errors.Is(translate(err), repository.ErrNotFound) {
			return err
		}

		res := tx.Delete(&entity.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *userRepository) PointHistory(ctx context.Context, userID string) ([]entity.PointTransaction, error) {
	var txns []entity.PointTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN customer_rewards ON customer_rewards.id = point_transactions.reward_id").
		Where("customer_rewards.user_id = ?", userID).
		Order("point_transactions.created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query point history: %w", err)
	}
	return txns, nil
}
