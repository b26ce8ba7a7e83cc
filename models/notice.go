// File: /models/notice.go
package models

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// DefaultNoticeDismissMS is how long a notice stays up unless dismissed.
const DefaultNoticeDismissMS = 5000

// Notice is the toast an admin screen shows after a write.
type Notice struct {
	Message        string     `json:"message"`
	Kind           NoticeKind `json:"kind"`
	DismissAfterMS int        `json:"dismiss_after_ms"`
	Dismissible    bool       `json:"dismissible"`
}

func NewNotice(kind NoticeKind, message string) Notice {
	return Notice{
		Message:        message,
		Kind:           kind,
		DismissAfterMS: DefaultNoticeDismissMS,
		Dismissible:    true,
	}
}

func SuccessNotice(message string) Notice { return NewNotice(NoticeSuccess, message) }
func ErrorNotice(message string) Notice   { return NewNotice(NoticeError, message) }
func InfoNotice(message string) Notice    { return NewNotice(NoticeInfo, message) }
