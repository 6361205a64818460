package response

import (
	"errors"

	"go-user-service/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New guarantees data is never null in the envelope.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; customMsg overrides the default.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError maps service errors into the envelope. Field details of a
// validation failure ride in data; anything that is not a *domain.Error
// stays an opaque 500 so storage and hashing internals never leak.
func FromError(err error) Resp {
	var de *domain.Error
	if errors.As(err, &de) {
		r := Error(de.Code, de.Msg)
		if len(de.Fields) > 0 {
			r.Data = map[string]any{"fields": de.Fields}
		}
		return r
	}
	return Error(CodeServerError, "")
}
