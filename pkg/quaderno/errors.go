package quaderno

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// IdentityProviderError is returned for every Quaderno response with an
// HTTP status of 400 or above.
type IdentityProviderError struct {
	Message    string
	StatusCode int
	Body       []byte
}

func (e *IdentityProviderError) Error() string {
	return fmt.Sprintf("quaderno: %s (status %d)", e.Message, e.StatusCode)
}

// AsIdentityProviderError unwraps err into an *IdentityProviderError.
func AsIdentityProviderError(err error) (*IdentityProviderError, bool) {
	var ipErr *IdentityProviderError
	if errors.As(err, &ipErr) {
		return ipErr, true
	}
	return nil, false
}

// ValidateResponse returns an *IdentityProviderError when statusCode is 400
// or above. The body is only read on that path.
func (p *Provider) ValidateResponse(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}
	return newIdentityProviderError(statusCode, statusReason(statusCode, ""), body)
}

// ValidateHTTPResponse is ValidateResponse with the reason phrase taken from
// the response's status line.
func (p *Provider) ValidateHTTPResponse(resp *http.Response, body []byte) error {
	if resp == nil || resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	return newIdentityProviderError(resp.StatusCode, reasonPhrase(resp), body)
}

// reasonPhrase extracts the reason phrase from resp.Status ("403 Forbidden").
func reasonPhrase(resp *http.Response) string {
	return statusReason(resp.StatusCode, resp.Status)
}

// statusReason never returns "": unregistered codes become "status code N".
func statusReason(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	if reason == "" {
		reason = fmt.Sprintf("status code %d", code)
	}
	return reason
}

func newIdentityProviderError(statusCode int, reason string, body []byte) *IdentityProviderError {
	var message string
	if gjson.ValidBytes(body) {
		if errs := gjson.GetBytes(body, "errors"); present(errs) {
			message = fieldErrors(errs)
		} else {
			message = scalarMessage(gjson.GetBytes(body, "error"))
		}
	}
	if message == "" {
		message = reason
	}

	return &IdentityProviderError{
		Message:    message,
		StatusCode: statusCode,
		Body:       body,
	}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// fieldErrors renders {"field": "msg" | ["a", "b"]} as "field: a, b. other: msg"
// in document order.
func fieldErrors(errs gjson.Result) string {
	var parts []string
	add := func(field string, v gjson.Result) {
		if v.IsArray() {
			items := v.Array()
			values := make([]string, 0, len(items))
			for _, item := range items {
				values = append(values, scalarString(item))
			}
			parts = append(parts, field+": "+strings.Join(values, ", "))
			return
		}
		parts = append(parts, field+": "+scalarString(v))
	}

	switch {
	case errs.IsObject():
		errs.ForEach(func(key, value gjson.Result) bool {
			add(key.String(), value)
			return true
		})
	case errs.IsArray():
		for i, value := range errs.Array() {
			add(strconv.Itoa(i), value)
		}
	}

	return strings.Join(parts, ". ")
}

// scalarString renders a JSON value the way Quaderno's messages are built:
// true is "1", false and null are empty.
func scalarString(r gjson.Result) string {
	switch r.Type {
	case gjson.Null, gjson.False:
		return ""
	case gjson.True:
		return "1"
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

// scalarMessage returns the message carried by an "error" value, or "" when
// the value is absent or falsy.
func scalarMessage(r gjson.Result) string {
	switch {
	case r.Type == gjson.Number && r.Num == 0:
		return ""
	case r.Type == gjson.String && r.Str == "0":
		return ""
	}
	return scalarString(r)
}
