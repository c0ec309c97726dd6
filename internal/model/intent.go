package model

// Intent is the conversational goal of one user turn
type Intent string

const (
	IntentSearch Intent = "search"
	IntentRefine Intent = "refine"
	IntentHelp   Intent = "help"
	IntentInfo   Intent = "info"
)

// ParseIntent maps free text to a known intent. Unknown values fall back to help.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentSearch, IntentRefine, IntentHelp, IntentInfo:
		return Intent(s)
	default:
		return IntentHelp
	}
}

// Diagnostics attached to a degraded intent record
const (
	IntentErrTimeout       = "timeout"
	IntentErrAPI           = "api_error"
	IntentErrParse         = "parse_error"
	IntentErrNoChoices     = "no_choices"
	IntentErrNotConfigured = "not_configured"
)

// IntentRecord is the structured reading of a single user message.
// Nil fields mean the user did not mention them.
type IntentRecord struct {
	Intent      Intent   `json:"intent"`
	Location    *string  `json:"location,omitempty"`
	CheckIn     *string  `json:"check_in,omitempty"`  // YYYY-MM-DD
	CheckOut    *string  `json:"check_out,omitempty"` // YYYY-MM-DD
	Guests      *int     `json:"guests,omitempty"`
	BudgetMax   *float64 `json:"budget_max,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// FallbackIntent is the record returned when the model could not be used
func FallbackIntent(reason string) IntentRecord {
	return IntentRecord{Intent: IntentHelp, Error: reason}
}
