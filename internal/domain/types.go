package domain

// RequestContext carries authenticated caller info when available.
type RequestContext struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}
