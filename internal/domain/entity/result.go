package entity

type ResultStatus string

const (
	StatusApplied         ResultStatus = "applied"
	StatusFormFilled      ResultStatus = "form_filled"
	StatusCaptchaDetected ResultStatus = "captcha_detected"
	StatusError           ResultStatus = "error"
)

// AgentResult is produced exactly once per agent run.
type AgentResult struct {
	Success        bool         `json:"success"`
	Status         ResultStatus `json:"status"`
	Log            []string     `json:"log"`
	ScreenshotPath string       `json:"screenshot_path,omitempty"`
	Error          string       `json:"error,omitempty"`
}
