package entity

import "strings"

// UserProfile holds candidate contact fields. Empty strings mean "not provided".
type UserProfile struct {
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`
	GitHubURL    string `json:"github_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
}

// NameTokens splits FullName on whitespace.
func (p UserProfile) NameTokens() []string {
	return strings.Fields(p.FullName)
}
