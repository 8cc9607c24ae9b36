package entity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidURL    = errors.New("invalid job url")
	ErrMissingResume = errors.New("resume path is required")
)

type RunRequest struct {
	JobURL     string      `json:"job_url"`
	Profile    UserProfile `json:"profile"`
	ResumePath string      `json:"resume_path"`
	Headless   bool        `json:"headless"`
}

func (r RunRequest) Validate() error {
	if err := ValidateURL(r.JobURL); err != nil {
		return err
	}
	if strings.TrimSpace(r.ResumePath) == "" {
		return ErrMissingResume
	}
	return nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
)
