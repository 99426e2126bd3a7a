package api

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// ChatResponse is the backend reply to POST /chat
type ChatResponse struct {
	ID            string         `json:"id"`
	Response      string         `json:"response"`
	IntentData    map[string]any `json:"intent_data"`
	NeedsApproval bool           `json:"needs_approval"`
	Timestamp     string         `json:"timestamp"`
}

// HistoryMessage is a single stored message from GET /history
type HistoryMessage struct {
	ID            string         `json:"id"`
	Message       string         `json:"message"`
	Response      string         `json:"response"`
	IntentData    map[string]any `json:"intent_data"`
	NeedsApproval bool           `json:"needs_approval"`
	Timestamp     string         `json:"timestamp"`
}

// HistoryResponse is the backend reply to GET /history/{sessionId}
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

// ApproveRequest is the body of POST /approve. EditedData is null unless the
// user engaged edit mode.
type ApproveRequest struct {
	SessionID  string         `json:"session_id"`
	MessageID  string         `json:"message_id"`
	Approved   bool           `json:"approved"`
	EditedData map[string]any `json:"edited_data"`
}

// ApproveResponse is the backend reply to POST /approve
type ApproveResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	N8NResponse map[string]any `json:"n8n_response"`
}

// GmailStatus is the backend reply to GET /gmail/status
type GmailStatus struct {
	Authenticated         bool     `json:"authenticated"`
	CredentialsConfigured bool     `json:"credentials_configured"`
	Error                 string   `json:"error"`
	Success               bool     `json:"success"`
	RequiresAuth          bool     `json:"requires_auth"`
	Scopes                []string `json:"scopes"`
	Service               string   `json:"service"`
	SessionID             string   `json:"session_id"`
}

// GmailAuthResponse is the backend reply to GET /gmail/auth
type GmailAuthResponse struct {
	Success bool   `json:"success"`
	AuthURL string `json:"auth_url"`
	Message string `json:"message"`
}

// GmailCallbackRequest is the body of POST /gmail/callback
type GmailCallbackRequest struct {
	Code string `json:"code"`
}

// GmailCallbackResponse is the backend reply to POST /gmail/callback
type GmailCallbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GmailDebugResponse is the backend reply to GET /gmail/debug
type GmailDebugResponse struct {
	DebugInfo GmailDebugInfo `json:"debug_info"`
}

// GmailDebugInfo is the nested diagnostic object from the debug endpoint
type GmailDebugInfo struct {
	GmailServiceStatus GmailServiceStatus `json:"gmail_service_status"`
	DatabaseStatus     DatabaseStatus     `json:"database_status"`
	Environment        map[string]string  `json:"environment"`
}

// GmailServiceStatus describes backend OAuth credential configuration
type GmailServiceStatus struct {
	CredentialsFileExists bool                `json:"credentials_file_exists"`
	CredentialsFilePath   string              `json:"credentials_file_path"`
	CredentialsContent    *CredentialsContent `json:"credentials_content"`
}

// CredentialsContent summarizes the backend's OAuth client configuration
type CredentialsContent struct {
	ClientIDConfigured    bool `json:"client_id_configured"`
	RedirectURIConfigured bool `json:"redirect_uri_configured"`
}

// DatabaseStatus describes backend token storage health
type DatabaseStatus struct {
	Connection      string `json:"connection"`
	GmailTokenCount int    `json:"gmail_token_count"`
}
