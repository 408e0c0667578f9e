package handler

// errorEnvelope documents the body written by the HTTP error handler.
type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type entryResponse struct {
	View    string   `json:"view"`
	Notices []notice `json:"notices,omitempty"`
}

type usersResponse struct {
	Users []usersItem `json:"users"`
}

type usersItem struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
}
