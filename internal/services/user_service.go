// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
	"github.com/marketlink/backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
}

type ContactRequest struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house" validate:"required"`
	Structure string `json:"structure,omitempty"`
	Building  string `json:"building,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone" validate:"required"`
}

func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Contacts").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Company != "" {
		updates["company"] = req.Company
	}
	if req.Position != "" {
		updates["position"] = req.Position
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return user, nil
}

func (s *UserService) ListContacts(userID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contacts, nil
}

func (s *UserService) CreateContact(userID uuid.UUID, req *ContactRequest) (*models.Contact, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &apperrors.ValidationError{Message: "validation failed", Details: utils.GetValidationErrors(err)}
	}

	contact := &models.Contact{
		UserID:    userID,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Structure: req.Structure,
		Building:  req.Building,
		Apartment: req.Apartment,
		Phone:     req.Phone,
	}
	if err := s.db.Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *UserService) UpdateContact(userID, contactID uuid.UUID, req *ContactRequest) (*models.Contact, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &apperrors.ValidationError{Message: "validation failed", Details: utils.GetValidationErrors(err)}
	}

	var contact models.Contact
	err := s.db.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("contact")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	contact.City = req.City
	contact.Street = req.Street
	contact.House = req.House
	contact.Structure = req.Structure
	contact.Building = req.Building
	contact.Apartment = req.Apartment
	contact.Phone = req.Phone

	if err := s.db.Save(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return &contact, nil
}

func (s *UserService) DeleteContact(userID, contactID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", contactID, userID).Delete(&models.Contact{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("contact")
	}
	return nil
}
