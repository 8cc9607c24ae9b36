package entity

type PageType string

const (
	PageTypeJobListing      PageType = "job_listing"
	PageTypeApplicationForm PageType = "application_form"
	PageTypeThankYou        PageType = "thank_you"
	PageTypeUnknown         PageType = "unknown"
)

func (t PageType) Valid() bool {
	switch t {
	case PageTypeJobListing, PageTypeApplicationForm, PageTypeThankYou, PageTypeUnknown:
		return true
	}
	return false
}

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeFile     FieldType = "file"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeTel, FieldTypeFile,
		FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	}
	return false
}

// Writable reports whether the filler may type a value into a field of this type.
func (t FieldType) Writable() bool {
	return t == FieldTypeText || t == FieldTypeEmail || t == FieldTypeTel
}

type FormField struct {
	Label    string    `json:"label"`
	Selector string    `json:"selector"`
	Type     FieldType `json:"type"`
}

// PageAnalysis is the reasoning service's description of the current page.
// A new value is produced on every analysis; callers replace, never mutate.
type PageAnalysis struct {
	ApplyButtonSelector string      `json:"apply_button_selector,omitempty"`
	FormFields          []FormField `json:"form_fields"`
	CaptchaDetected     bool        `json:"captcha_detected"`
	PageType            PageType    `json:"page_type"`
}

// DefaultPageAnalysis is the degraded result used when the page cannot be described.
func DefaultPageAnalysis() PageAnalysis {
	return PageAnalysis{
		FormFields: []FormField{},
		PageType:   PageTypeUnknown,
	}
}

// Locator addresses an element by CSS selector, optionally narrowed to
// elements whose text matches Text.
type Locator struct {
	CSS  string
	Text string
}

func (l Locator) String() string {
	if l.Text == "" {
		return l.CSS
	}
	return l.CSS + `:has-text("` + l.Text + `")`
}
