package tab

import (
	"encoding/json"

	"github.com/entrhq/pagepilot/pkg/page"
)

// Action names a content action.
type Action string

const (
	ActionPing        Action = "ping"
	ActionGetPageText Action = "getPageText"
	ActionFillForm    Action = "fillForm"
)

// StatusReady is the status reported by a successful ping.
const StatusReady = "ready"

// Request is one message sent to the tab.
type Request struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// FillPayload is the payload of a fillForm request.
type FillPayload struct {
	Fields page.FieldSet `json:"fields"`
	Submit bool          `json:"submit"`
}

// NewFillRequest builds a fillForm request.
func NewFillRequest(fields page.FieldSet, submit bool) (Request, error) {
	if fields == nil {
		fields = page.FieldSet{}
	}
	payload, err := json.Marshal(FillPayload{Fields: fields, Submit: submit})
	if err != nil {
		return Request{}, err
	}
	return Request{Action: ActionFillForm, Payload: payload}, nil
}

// Response is the answer to a Request. Only the members relevant to the
// action are set.
type Response struct {
	OK     bool         `json:"ok"`
	Status string       `json:"status,omitempty"`
	Text   *string      `json:"text,omitempty"`
	URL    *string      `json:"url,omitempty"`
	Result *page.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func failure(msg string) Response {
	return Response{OK: false, Error: msg}
}
