package intent

// Request is one intent invocation from the conversational platform. Params
// carries intent parameters; Platform carries arguments the platform itself
// attaches, such as the result of an asynchronous permission prompt.
// UserFlags is the platform-owned per-user storage: it comes in with the
// request and goes back out with the response, never held in process.
type Request struct {
	Intent    string            `json:"intent"`
	Params    map[string]string `json:"params,omitempty"`
	Platform  PlatformArgs      `json:"platform"`
	UserFlags map[string]bool   `json:"userStorage,omitempty"`
}

type PlatformArgs struct {
	Permission    *bool           `json:"permission,omitempty"`
	UpdatesUserID string          `json:"updatesUserId,omitempty"`
	Registered    *RegisterResult `json:"registered,omitempty"`
}

type RegisterResult struct {
	Status string `json:"status"`
}

// Response is the reply descriptor rendered by the platform.
type Response struct {
	Speech          string            `json:"speech"`
	Card            *Card             `json:"card,omitempty"`
	Suggestions     []string          `json:"suggestions,omitempty"`
	EndConversation bool              `json:"endConversation"`
	Permission      *PermissionPrompt `json:"permissionRequest,omitempty"`
	RegisterUpdate  *RegisterUpdate   `json:"registerUpdate,omitempty"`
	UserFlags       map[string]bool   `json:"userStorage,omitempty"`
}

type Card struct {
	Text      string `json:"text"`
	LinkTitle string `json:"linkTitle"`
	LinkURL   string `json:"linkUrl"`
}

// PermissionPrompt asks the platform to run its native permission dialog.
// The answer arrives later as a finish_push_setup invocation.
type PermissionPrompt struct {
	Intent string `json:"intent"`
	Reason string `json:"reason,omitempty"`
}

// RegisterUpdate asks the platform to register the user for recurring
// delivery of the named intent. Resolved synchronously by the platform;
// no state is stored on our side.
type RegisterUpdate struct {
	Intent    string `json:"intent"`
	Category  string `json:"category,omitempty"`
	Frequency string `json:"frequency"`
}
