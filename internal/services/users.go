package services

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserView is the single-user response. Email is only populated when the
// requester is the user themself.
type UserView struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
}

// UpdateUserInput carries the patch fields; nil means "keep prior value".
// CurrentPassword must accompany Password.
type UpdateUserInput struct {
	Email           *string
	FirstName       *string
	LastName        *string
	Password        *string
	CurrentPassword *string
}

// RegisterUser creates an account with a bcrypt-hashed password and returns
// the new user id.
func RegisterUser(db *gorm.DB, email, firstName, lastName, password string) (int64, error) {
	if !emailPattern.MatchString(email) {
		return 0, types.Validation("invalid email address")
	}
	if len(password) < minPasswordLength {
		return 0, types.Validation("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, types.Storage(err)
	}

	user := models.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return 0, translateWriteError(err, "email already in use")
	}
	return user.ID, nil
}

// LoginUser verifies the credentials and issues a fresh bearer token.
// A second login supersedes any token issued earlier.
func LoginUser(db *gorm.DB, email, password string) (int64, string, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", types.Authorization("incorrect email or password")
		}
		return 0, "", types.Storage(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return 0, "", types.Authorization("incorrect email or password")
	}

	token := uuid.NewString()
	if err := db.Model(&user).Update("auth_token", token).Error; err != nil {
		return 0, "", types.Storage(err)
	}
	return user.ID, token, nil
}

// LogoutUser invalidates the user's current token.
func LogoutUser(db *gorm.DB, userID int64) error {
	err := db.Model(&models.User{}).Where("id = ?", userID).Update("auth_token", nil).Error
	if err != nil {
		return types.Storage(err)
	}
	return nil
}

// ResolveUserByToken looks up the account holding the bearer token.
// A nil user with a nil error means the token is unknown.
func ResolveUserByToken(db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	var user models.User
	err := db.Where("auth_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, types.Storage(err)
	}
	return &user, nil
}

// GetUser returns the public view of a user. requesterID selects whether
// the email is included; pass 0 for an unauthenticated request.
func GetUser(db *gorm.DB, userID, requesterID int64) (*UserView, error) {
	var user models.User
	err := db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user %d not found", userID)
		}
		return nil, types.Storage(err)
	}

	view := &UserView{FirstName: user.FirstName, LastName: user.LastName}
	if requesterID == userID {
		view.Email = &user.Email
	}
	return view, nil
}

// UpdateUser patches the supplied account fields. Only the account holder
// may change their own record; a password change requires proof of the
// current password.
func UpdateUser(db *gorm.DB, requesterID, userID int64, input UpdateUserInput) error {
	if requesterID != userID {
		return types.Authorization("cannot edit another user's information")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := lockForUpdate(tx).First(&user, userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("user %d not found", userID)
			}
			return types.Storage(err)
		}

		updates := map[string]any{}
		if input.Email != nil && *input.Email != user.Email {
			if !emailPattern.MatchString(*input.Email) {
				return types.Validation("invalid email address")
			}
			updates["email"] = *input.Email
		}
		if input.FirstName != nil {
			updates["first_name"] = *input.FirstName
		}
		if input.LastName != nil {
			updates["last_name"] = *input.LastName
		}
		if input.Password != nil {
			if input.CurrentPassword == nil {
				return types.Validation("currentPassword is required to change the password")
			}
			if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*input.CurrentPassword)) != nil {
				return types.Authorization("incorrect current password")
			}
			if *input.Password == *input.CurrentPassword {
				return types.Validation("new password must differ from the current password")
			}
			if len(*input.Password) < minPasswordLength {
				return types.Validation("password must be at least %d characters", minPasswordLength)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return types.Storage(err)
			}
			updates["password"] = string(hash)
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return translateWriteError(err, "email already in use")
		}
		return nil
	})
}
