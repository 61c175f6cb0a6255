package services

import (
	"context"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/models"
)

type UpdateProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}

type UserService struct {
	db       *gorm.DB
	uploader ImageUploader
	log      *zap.Logger
}

func NewUserService(db *gorm.DB, uploader ImageUploader, log *zap.Logger) *UserService {
	return &UserService{db: db, uploader: uploader, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Tenant.BankAccounts").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in UpdateProfileInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, BadRequest("name must not be empty")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// ChangePassword requires the current password unless the account never had one.
func (s *UserService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.HasPassword() && !CheckPassword(user.Password, current) {
		return BadRequest("current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hashed).Error
}

func (s *UserService) UpdateAvatar(ctx context.Context, id uint, fh *multipart.FileHeader) (*models.User, error) {
	urls, err := UploadImages(ctx, s.uploader, []*multipart.FileHeader{fh}, "avatars")
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar", urls[0]).Error; err != nil {
		return nil, err
	}
	s.log.Info("avatar updated", zap.Uint("user_id", id))
	return s.GetByID(ctx, id)
}
