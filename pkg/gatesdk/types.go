package gatesdk

import "time"

// FetchRequest asks the gateway to perform one authenticated exchange.
// Body is base64 encoded on the wire.
type FetchRequest struct {
	URL            string            `json:"url" example:"https://jwfw.fudan.edu.cn/eams/home.action"`
	Method         string            `json:"method,omitempty" example:"GET"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           []byte            `json:"body,omitempty" swaggertype:"string" format:"base64"`
	ManualLoginURL string            `json:"manual_login_url,omitempty" example:"https://jwfw.fudan.edu.cn/eams/login.action"`
}

// SessionInfo is one host's login state.
type SessionInfo struct {
	Host                string    `json:"host" example:"jwfw.fudan.edu.cn"`
	LastAuthenticatedAt time.Time `json:"last_authenticated_at"`
	ExpiresAt           time.Time `json:"expires_at"`
	Valid               bool      `json:"valid"`
	Pending             int       `json:"pending"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// CredentialStatus never carries secrets.
type CredentialStatus struct {
	Configured bool       `json:"configured"`
	Username   string     `json:"username,omitempty"`
	HasTOTP    bool       `json:"has_totp"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type SetCredentialsRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TOTPSecret string `json:"totp_secret,omitempty"`
}

type LoginAttempt struct {
	ID         string    `json:"id"`
	Host       string    `json:"host"`
	Trigger    string    `json:"trigger" enums:"prelogin,redirect"`
	Outcome    string    `json:"outcome" enums:"success,login_failed,credentials_missing,error"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

type LoginAttemptsResponse struct {
	Attempts []LoginAttempt `json:"attempts"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Keys     string `json:"keys,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
