package domain

// Analysis mirrors the provider's risk breakdown
type Analysis struct {
	CommonISP   int `json:"common_isp"`
	RoleBased   int `json:"role_based"`
	Disposable  int `json:"disposable"`
	Spamtrap    int `json:"spamtrap"`
	SyntaxError int `json:"syntax_error"`
}

// Results mirrors the provider's deliverability breakdown
type Results struct {
	Deliverable   int `json:"deliverable"`
	Undeliverable int `json:"undeliverable"`
	AcceptAll     int `json:"accept_all"`
	Unknown       int `json:"unknown"`
}

// Report is the last known provider snapshot of a job. It is replaced
// wholesale on every reconciliation.
type Report struct {
	Status   string   `json:"status"`
	Total    int      `json:"total"`
	Verified int      `json:"verified"`
	Pending  int      `json:"pending"`
	Analysis Analysis `json:"analysis"`
	Results  Results  `json:"results"`
}

// ResultFilters are the accepted report download filters
var ResultFilters = map[string]bool{
	"deliverable":   true,
	"undeliverable": true,
	"accept_all":    true,
	"unknown":       true,
}
