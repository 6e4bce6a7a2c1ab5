package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
}

var imageContentTypes = map[string]string{
	".png": "image/png",
	".jpg": "image/jpeg",
	".gif": "image/gif",
}

// ImageExtension maps an accepted image content type to a file extension.
// The second return is false for anything other than png, jpeg or gif.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}

// ReadImage loads a stored image file and reports its content type.
func ReadImage(imageDir, filename string) ([]byte, string, error) {
	data, err := os.ReadFile(filepath.Join(imageDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", types.NotFound("image not found")
		}
		return nil, "", types.Storage(err)
	}
	contentType, ok := imageContentTypes[filepath.Ext(filename)]
	if !ok {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// GetPetitionImage returns the image bytes and content type for a petition.
func GetPetitionImage(db *gorm.DB, imageDir string, petitionID int64) ([]byte, string, error) {
	var petition models.Petition
	err := db.First(&petition, petitionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", types.NotFound("petition %d not found", petitionID)
		}
		return nil, "", types.Storage(err)
	}
	if petition.ImageFilename == nil {
		return nil, "", types.NotFound("petition %d has no image", petitionID)
	}
	return ReadImage(imageDir, *petition.ImageFilename)
}

// SetPetitionImage stores the image for a petition the caller owns. The
// returned bool is true when this is the petition's first image.
func SetPetitionImage(db *gorm.DB, imageDir string, userID, petitionID int64, contentType string, data []byte) (bool, error) {
	ext, ok := ImageExtension(contentType)
	if !ok {
		return false, types.Validation("unsupported image content type %q", contentType)
	}

	var petition models.Petition
	err := db.First(&petition, petitionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, types.NotFound("petition %d not found", petitionID)
		}
		return false, types.Storage(err)
	}
	if petition.OwnerID != userID {
		return false, types.Authorization("only the owner of a petition may change its image")
	}

	filename := fmt.Sprintf("petition_%d.%s", petitionID, ext)
	created := petition.ImageFilename == nil
	if err := writeImage(imageDir, filename, data, petition.ImageFilename); err != nil {
		return false, err
	}
	if err := db.Model(&petition).Update("image_filename", filename).Error; err != nil {
		return false, types.Storage(err)
	}
	return created, nil
}

// GetUserImage returns the image bytes and content type for a user.
func GetUserImage(db *gorm.DB, imageDir string, userID int64) ([]byte, string, error) {
	var user models.User
	err := db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", types.NotFound("user %d not found", userID)
		}
		return nil, "", types.Storage(err)
	}
	if user.ImageFilename == nil {
		return nil, "", types.NotFound("user %d has no image", userID)
	}
	return ReadImage(imageDir, *user.ImageFilename)
}

// SetUserImage stores the caller's own profile image. The returned bool is
// true when this is the user's first image.
func SetUserImage(db *gorm.DB, imageDir string, requesterID, userID int64, contentType string, data []byte) (bool, error) {
	ext, ok := ImageExtension(contentType)
	if !ok {
		return false, types.Validation("unsupported image content type %q", contentType)
	}

	var user models.User
	err := db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, types.NotFound("user %d not found", userID)
		}
		return false, types.Storage(err)
	}
	if requesterID != userID {
		return false, types.Authorization("cannot change another user's image")
	}

	filename := fmt.Sprintf("user_%d.%s", userID, ext)
	created := user.ImageFilename == nil
	if err := writeImage(imageDir, filename, data, user.ImageFilename); err != nil {
		return false, err
	}
	if err := db.Model(&user).Update("image_filename", filename).Error; err != nil {
		return false, types.Storage(err)
	}
	return created, nil
}

// DeleteUserImage removes the caller's own profile image.
func DeleteUserImage(db *gorm.DB, imageDir string, requesterID, userID int64) error {
	var user models.User
	err := db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("user %d not found", userID)
		}
		return types.Storage(err)
	}
	if requesterID != userID {
		return types.Authorization("cannot delete another user's image")
	}
	if user.ImageFilename == nil {
		return types.NotFound("user %d has no image", userID)
	}

	if err := os.Remove(filepath.Join(imageDir, *user.ImageFilename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.Storage(err)
	}
	if err := db.Model(&user).Update("image_filename", nil).Error; err != nil {
		return types.Storage(err)
	}
	return nil
}

// writeImage persists the bytes and removes a superseded file with a
// different extension.
func writeImage(imageDir, filename string, data []byte, previous *string) error {
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return types.Storage(err)
	}
	if err := os.WriteFile(filepath.Join(imageDir, filename), data, 0o644); err != nil {
		return types.Storage(err)
	}
	if previous != nil && *previous != filename {
		if err := os.Remove(filepath.Join(imageDir, *previous)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return types.Storage(err)
		}
	}
	return nil
}
