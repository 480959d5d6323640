package models

import "errors"

// NoticeLevel mirrors the toast styles the UI renders.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// SignupPath is where a "user not found" response sends the user.
const SignupPath = "/signup"

// Notice is a user-facing toast message.
type Notice struct {
	Kind     ErrorKind   `json:"kind,omitempty"`
	Level    NoticeLevel `json:"level"`
	Message  string      `json:"message"`
	Field    string      `json:"field,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// SuccessNotice builds a success toast.
func SuccessNotice(message string) Notice {
	return Notice{Level: NoticeSuccess, Message: message}
}

// InfoNotice builds an informational toast.
func InfoNotice(message string) Notice {
	return Notice{Level: NoticeInfo, Message: message}
}

// NoticeFor converts an error into the toast shown to the user.
func NoticeFor(err error) Notice {
	kind := KindOf(err)
	n := Notice{Kind: kind, Level: NoticeError}

	switch kind {
	case KindValidation:
		n.Level = NoticeWarning
		n.Message = capitalize(err.Error())
		var fe *FieldError
		if errors.As(err, &fe) {
			n.Field = fe.Field
			n.Message = capitalize(fe.Err.Error())
		}
	case KindUserNotFound:
		n.Message = "We could not find your account. Please sign up to continue."
		n.Redirect = SignupPath
	case KindRecipientNotFound:
		n.Message = "Recipient not found. Check the details and try again."
	case KindInsufficientBalance:
		n.Message = "Insufficient wallet balance for this transaction."
	case KindNotFound:
		n.Message = "The requested item could not be found."
	case KindUnauthorized:
		n.Message = "Your session has expired. Please log in again."
		n.Redirect = "/login"
	case KindCancelled:
		n.Level = NoticeInfo
		n.Message = "Payment cancelled. No money was taken from your account."
	case KindVerificationPending:
		n.Level = NoticeInfo
		n.Message = "We are still confirming your payment. Your wallet will update once it is confirmed."
	case KindCooldown:
		n.Level = NoticeWarning
		n.Message = capitalize(err.Error())
	case KindConflict:
		n.Level = NoticeWarning
		n.Message = "This action is not available right now."
	default:
		n.Message = "Something went wrong. Please try again."
	}

	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
