package domain

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastInfo    ToastLevel = "info"
)

// Toast is a transient notification the dashboard shows after an action.
type Toast struct {
	Level   ToastLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message,omitempty"`
}

func SuccessToast(title, message string) Toast {
	return Toast{Level: ToastSuccess, Title: title, Message: message}
}

func ErrorToast(title, message string) Toast {
	return Toast{Level: ToastError, Title: title, Message: message}
}

func InfoToast(title, message string) Toast {
	return Toast{Level: ToastInfo, Title: title, Message: message}
}
