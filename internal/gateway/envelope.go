package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/tidwall/gjson"
)

// decodeEnvelope checks raw against the backend envelope
//
//	{statusCode, success, message, data?, errors?}
//
// and decodes data into out on success. Anything that does not carry a
// boolean success field is rejected.
func decodeEnvelope(status int, raw []byte, out any) *apperrors.HTTPError {
	ok2xx := status >= 200 && status < 300

	if ok2xx && status == http.StatusNoContent {
		return nil
	}

	if !gjson.ValidBytes(raw) {
		return envelopeMismatch(status, raw)
	}

	root := gjson.ParseBytes(raw)
	success := root.Get("success")

	if !root.IsObject() || !success.IsBool() {
		return envelopeMismatch(status, raw)
	}

	if ok2xx && success.Bool() {
		data := root.Get("data")
		if out == nil || !data.Exists() || data.Type == gjson.Null {
			return nil
		}

		if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
			return &apperrors.HTTPError{
				Status:  status,
				Message: "could not decode response data",
				Err:     fmt.Errorf("%w: %w", apperrors.ErrMalformedEnvelope, err),
			}
		}

		return nil
	}

	he := &apperrors.HTTPError{
		Status:  failureStatus(status, root),
		Message: root.Get("message").String(),
		Err:     apperrors.ErrAPIRequest,
	}

	if he.Message == "" {
		he.Message = statusMessage(he.Status)
	}

	he.FieldErrors, he.Details = normalizeErrors(root.Get("errors"))

	return he
}

// failureStatus prefers the transport status. A 2xx response with
// success:false takes the envelope's statusCode, or 400 without one.
func failureStatus(status int, root gjson.Result) int {
	if status < 200 || status >= 300 {
		return status
	}

	if code := root.Get("statusCode"); code.Type == gjson.Number && code.Int() >= 400 {
		return int(code.Int())
	}

	return http.StatusBadRequest
}

func envelopeMismatch(status int, raw []byte) *apperrors.HTTPError {
	if status >= 200 && status < 300 {
		return &apperrors.HTTPError{
			Status:  status,
			Message: "unexpected API response",
			Err:     apperrors.ErrMalformedEnvelope,
		}
	}

	msg := sanitizeResponseBody(raw)
	if msg == "" {
		msg = statusMessage(status)
	}

	return &apperrors.HTTPError{
		Status:  status,
		Message: msg,
		Err:     apperrors.ErrAPIRequest,
	}
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}

	return "request failed"
}

// normalizeErrors accepts the shapes the backend uses for errors:
//
//	{"email": "taken"} or {"email": ["taken", "invalid"]}
//	["general problem", ...]
//	[{"field": "email", "message": "taken"}, ...]
func normalizeErrors(v gjson.Result) (map[string][]string, []string) {
	var (
		fields  map[string][]string
		details []string
	)

	addField := func(name, msg string) {
		if name == "" || msg == "" {
			return
		}

		if fields == nil {
			fields = make(map[string][]string)
		}

		fields[name] = append(fields[name], msg)
	}

	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				for _, m := range value.Array() {
					addField(key.String(), m.String())
				}
			} else {
				addField(key.String(), value.String())
			}

			return true
		})

	case v.IsArray():
		for _, item := range v.Array() {
			if !item.IsObject() {
				if s := item.String(); s != "" {
					details = append(details, s)
				}

				continue
			}

			name := firstString(item, "field", "path", "param")
			msg := firstString(item, "message", "msg")

			if name == "" {
				if msg != "" {
					details = append(details, msg)
				}

				continue
			}

			addField(name, msg)
		}
	}

	return fields, details
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k).String(); s != "" {
			return s
		}
	}

	return ""
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}
