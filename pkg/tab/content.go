package tab

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagepilot/pkg/page"
)

// ContentHandler answers content actions against one tab's document.
type ContentHandler struct {
	conn Conn
}

// NewContentHandler creates a handler bound to conn.
func NewContentHandler(conn Conn) *ContentHandler {
	return &ContentHandler{conn: conn}
}

// fillRequest mirrors FillPayload with script-style coercion of submit.
type fillRequest struct {
	Fields page.FieldSet   `json:"fields"`
	Submit json.RawMessage `json:"submit"`
}

// Handle answers req. Failures are reported in the response.
func (h *ContentHandler) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = failure(fmt.Sprint(r))
		}
	}()

	switch req.Action {
	case ActionPing:
		return Response{OK: true, Status: StatusReady}

	case ActionGetPageText:
		snap, err := h.conn.Snapshot(ctx)
		if err != nil {
			return failure(err.Error())
		}
		doc, err := page.ParseSnapshot(snap.HTML)
		if err != nil {
			return failure(err.Error())
		}
		text := page.ExtractText(doc)
		return Response{OK: true, Text: &text, URL: &snap.URL}

	case ActionFillForm:
		var payload fillRequest
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &payload); err != nil {
				return failure(err.Error())
			}
		}
		if payload.Fields == nil {
			payload.Fields = page.FieldSet{}
		}

		snap, err := h.conn.Snapshot(ctx)
		if err != nil {
			return failure(err.Error())
		}
		doc, err := page.ParseSnapshot(snap.HTML)
		if err != nil {
			return failure(err.Error())
		}
		result := page.Fill(ctx, doc, h.conn, payload.Fields, page.Truthy(payload.Submit))
		return Response{OK: true, Result: &result}

	default:
		return failure("Unknown action")
	}
}
