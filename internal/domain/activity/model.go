package activity

const (
	ActionValidate = "validate"
	ActionCreate   = "create"
	ActionRevoke   = "revoke"
	ActionError    = "error"
)

// Entry is one immutable record from GET /admin/logs. Timestamp stays in its
// wire form; parsing happens at aggregation time.
type Entry struct {
	Action     string `json:"action"`
	LicenseKey string `json:"license_key"`
	Success    bool   `json:"success"`
	Timestamp  string `json:"timestamp"`
	Notes      string `json:"notes,omitempty"`
}
