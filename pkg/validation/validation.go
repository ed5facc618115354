package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// ChapterTimeRegex accepts MM:SS with seconds below 60.
	ChapterTimeRegex = regexp.MustCompile(`^([0-9]{1,3}):([0-5][0-9])$`)

	// DurationRegex accepts MM:SS or H:MM:SS.
	DurationRegex = regexp.MustCompile(`^(?:([0-9]+):)?([0-5]?[0-9]):([0-5][0-9])$`)

	// ImportURLRegex matches the hosts the import dialog accepts.
	ImportURLRegex = regexp.MustCompile(`^https?://(www\.)?(youtube\.com/watch\?v=[A-Za-z0-9_-]{6,}|youtu\.be/[A-Za-z0-9_-]{6,}|vimeo\.com/[0-9]{5,})`)
)

// MaxUploadBytes is the largest file the upload form accepts (2 GiB).
const MaxUploadBytes int64 = 2 << 30

var uploadExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateName validates a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	return ValidateStringLength(name, 1, 50, "name")
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateTitle validates a video, series or episode title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	return ValidateStringLength(title, 1, 100, "title")
}

// ValidateDescription allows empty descriptions up to 5000 characters.
func ValidateDescription(description string) error {
	return ValidateStringLength(description, 0, 5000, "description")
}

// ValidateTags validates a tag list.
func ValidateTags(tags []string) error {
	if len(tags) > 20 {
		return fmt.Errorf("too many tags (max 20)")
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not be empty")
		}
		if err := ValidateStringLength(tag, 1, 30, "tag"); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme (must be http or https)")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ValidateImportURL validates a YouTube or Vimeo link.
func ValidateImportURL(urlStr string) error {
	if err := ValidateURL(urlStr); err != nil {
		return err
	}
	if !ImportURLRegex.MatchString(urlStr) {
		return fmt.Errorf("only YouTube and Vimeo links can be imported")
	}
	return nil
}

// ValidateChapterTime validates an MM:SS chapter start.
func ValidateChapterTime(t string) error {
	if t == "" {
		return fmt.Errorf("chapter time is required")
	}
	if !ChapterTimeRegex.MatchString(t) {
		return fmt.Errorf("chapter time must be in MM:SS format")
	}
	return nil
}

// ValidateDuration validates an MM:SS or H:MM:SS duration string.
func ValidateDuration(d string) error {
	if !DurationRegex.MatchString(d) {
		return fmt.Errorf("duration must be in MM:SS or H:MM:SS format")
	}
	return nil
}

// ValidateUpload checks the file name extension and size of an upload.
func ValidateUpload(fileName string, sizeBytes int64) error {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("file name is required")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !uploadExtensions[ext] {
		return fmt.Errorf("unsupported file type %q (allowed: mp4, mov, webm, mkv, avi)", ext)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("file is empty")
	}
	if sizeBytes > MaxUploadBytes {
		return fmt.Errorf("file is too large (max 2 GB)")
	}
	return nil
}

// ValidatePrice validates a price in whole currency units.
func ValidatePrice(price float64, max float64) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if price > max {
		return fmt.Errorf("price is too high (max %.2f)", max)
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
