package domain

// Activity modules
const (
	ModuleEmailList   = "EMAIL_LIST"
	ModuleSingleEmail = "SINGLE_EMAIL"
)

// Activity actions
const (
	ActionUpload       = "UPLOAD"
	ActionStartVerify  = "START_VERIFICATION"
	ActionCompleted    = "COMPLETED"
	ActionVerifySingle = "VERIFY"
	ActionDelete       = "DELETE"
	ActionMoveToFolder = "MOVE_TO_FOLDER"
)

const EventSourceAPI = "api-service"

// Activity is a user-visible event recorded in the activity log
type Activity struct {
	UserID      string
	Module      string
	Action      string
	Description string
	Metadata    map[string]any
}
