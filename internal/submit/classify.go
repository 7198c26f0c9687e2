package submit

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// successCode is the collector's success sentinel inside the JSON body,
// independent of the HTTP status line.
const successCode = 200

// collectorResponse is the response shape consumed from the collector.
// The message candidates beyond "message" cover the field names common
// collectors use.
type collectorResponse struct {
	Code        *int            `json:"code"`
	Message     string          `json:"message"`
	Error       string          `json:"error"`
	Detail      string          `json:"detail"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

// classify maps a response body to the assigned report id or an error
// from the submission taxonomy.
func classify(body []byte) (string, error) {
	var resp collectorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &NetworkError{Message: "invalid response"}
	}

	if resp.Code != nil {
		switch *resp.Code {
		case successCode:
			return successID(resp.Data), nil
		case http.StatusUnauthorized:
			// 401 wins regardless of any message body.
			return "", ErrAuthenticationFailed
		}
	}

	code := 0
	if resp.Code != nil {
		code = *resp.Code
	}
	if code <= 0 {
		code = http.StatusInternalServerError
	}
	return "", &ServerError{Code: code, Message: bestMessage(resp)}
}

// successID extracts the server-assigned id from the data field. A
// plain string is the id; an object may carry it under "id" or
// "report_id"; anything else synthesizes a fresh local id, still a
// success.
func successID(data json.RawMessage) string {
	var s string
	if json.Unmarshal(data, &s) == nil && s != "" {
		return s
	}

	var obj struct {
		ID       string `json:"id"`
		ReportID string `json:"report_id"`
	}
	if json.Unmarshal(data, &obj) == nil {
		if obj.ID != "" {
			return obj.ID
		}
		if obj.ReportID != "" {
			return obj.ReportID
		}
	}

	return uuid.NewString()
}

// bestMessage picks the most specific human-readable message the body
// offers.
func bestMessage(r collectorResponse) string {
	for _, m := range []string{r.Error, r.Message, r.Detail, r.Description} {
		if m != "" {
			return m
		}
	}
	return "request failed"
}
