package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageService keeps submitted photos on disk under
// <base>/photos/<site>/<year>/<month>/, each with a unique name.
type StorageService struct {
	basePath string
}

func NewStorageService(basePath string) *StorageService {
	return &StorageService{basePath: basePath}
}

// SavePhoto writes photo bytes to permanent storage and returns the
// stored path.
func (s *StorageService) SavePhoto(siteID int, photo []byte, filename string) (string, error) {
	now := time.Now().UTC()
	folder := filepath.Join(
		s.basePath,
		"photos",
		strconv.Itoa(siteID),
		strconv.Itoa(now.Year()),
		strconv.Itoa(int(now.Month())),
	)
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}

	uniqueName := fmt.Sprintf("%s_%s",
		strings.ReplaceAll(uuid.New().String(), "-", ""),
		filepath.Base(filename),
	)
	path := filepath.Join(folder, uniqueName)

	if err := os.WriteFile(path, photo, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	return path, nil
}
