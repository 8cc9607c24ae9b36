package autoapply

import (
	"context"
	"path/filepath"

	"autoapply-agent/internal/application/port/output"
)

const fileInputSelector = `input[type="file"]`

type uploader struct {
	log *statusLog
}

// upload attaches the resume to the first file input on the page.
func (u *uploader) upload(ctx context.Context, s output.BrowserSession, resumePath string) bool {
	attached, err := s.SetFiles(ctx, fileInputSelector, resumePath)
	if err != nil {
		u.log.addf("Error uploading resume: %v", err)
		return false
	}
	if !attached {
		u.log.add("No file upload field found")
		return false
	}

	u.log.addf("Uploaded resume: %s", filepath.Base(resumePath))
	return true
}
