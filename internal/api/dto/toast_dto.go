package dto

// Toast icons.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastWarning = "warning"
	ToastInfo    = "info"
)

// Toast is a transient notification rendered by the page layout. Timer is in
// milliseconds; zero keeps the toast until dismissed.
type Toast struct {
	Icon            string `json:"icon"`
	Title           string `json:"title"`
	Text            string `json:"text,omitempty"`
	Timer           int    `json:"timer,omitempty"`
	ShowCloseButton bool   `json:"showCloseButton"`
}
