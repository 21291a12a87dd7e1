package gateway

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindUnauthorized
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

const (
	genericServerMessage  = "something went wrong, please try again"
	genericNetworkMessage = "unable to reach the server"
	genericTimeoutMessage = "the server took too long to respond"
	genericAuthMessage    = "session expired, please log in again"
)

// Error 是网关返回的唯一错误类型，Message 可以直接展示给用户
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (%d): %s", e.Method, e.Path, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsKind(err error, kind Kind) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// StatusCode 返回服务端的 HTTP 状态码，不是网关错误时返回 0
func StatusCode(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// UserMessage 返回适合直接展示的错误信息
func UserMessage(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
