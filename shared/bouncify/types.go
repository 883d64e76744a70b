package bouncify

import "encoding/json"

// Analysis is the provider's breakdown of risky addresses in a bulk job
type Analysis struct {
	CommonISP   int `json:"common_isp"`
	RoleBased   int `json:"role_based"`
	Disposable  int `json:"disposable"`
	Spamtrap    int `json:"spamtrap"`
	SyntaxError int `json:"syntax_error"`
}

// Results is the provider's deliverability breakdown for a bulk job
type Results struct {
	Deliverable   int `json:"deliverable"`
	Undeliverable int `json:"undeliverable"`
	AcceptAll     int `json:"accept_all"`
	Unknown       int `json:"unknown"`
}

// StatusResponse is returned by GET /bulk
type StatusResponse struct {
	Success  bool     `json:"success"`
	JobID    string   `json:"job_id"`
	Status   string   `json:"status"`
	Total    int      `json:"total"`
	Verified int      `json:"verified"`
	Pending  int      `json:"pending"`
	Analysis Analysis `json:"analysis"`
	Results  Results  `json:"results"`
	Message  string   `json:"message"`
}

// UploadResponse is returned by POST /bulk
type UploadResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// StartResponse is returned by PATCH /bulk
type StartResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RemoveResponse is returned by DELETE /bulk
type RemoveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SingleResult is the outcome of a single address verification.
// Raw keeps the full provider payload for persistence.
type SingleResult struct {
	Email   string          `json:"email"`
	Result  string          `json:"result"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}
