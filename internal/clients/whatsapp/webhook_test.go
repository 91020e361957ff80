package whatsapp

import (
	"encoding/json"
	"testing"
)

func TestFirstInbound(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantFrom string
		wantText string
		wantOK   bool
	}{
		{
			name: "plain text",
			payload: `{"object":"whatsapp_business_account","entry":[{"changes":[{"field":"messages","value":{
				"messages":[{"from":"254700000001","id":"wamid.1","type":"text","text":{"body":"hi"}}]}}]}]}`,
			wantFrom: "254700000001",
			wantText: "hi",
			wantOK:   true,
		},
		{
			name: "button reply uses id",
			payload: `{"entry":[{"changes":[{"value":{"messages":[{"from":"254700000002","id":"wamid.2","type":"interactive",
				"interactive":{"type":"button_reply","button_reply":{"id":"confirm","title":"Confirm Order"}}}]}}]}]}`,
			wantFrom: "254700000002",
			wantText: "confirm",
			wantOK:   true,
		},
		{
			name: "button reply falls back to title",
			payload: `{"entry":[{"changes":[{"value":{"messages":[{"from":"254700000003","id":"wamid.3","type":"interactive",
				"interactive":{"type":"button_reply","button_reply":{"id":"","title":"See Prices"}}}]}}]}]}`,
			wantFrom: "254700000003",
			wantText: "See Prices",
			wantOK:   true,
		},
		{
			name: "list reply uses id",
			payload: `{"entry":[{"changes":[{"value":{"messages":[{"from":"254700000004","id":"wamid.4","type":"interactive",
				"interactive":{"type":"list_reply","list_reply":{"id":"edit","title":"Edit"}}}]}}]}]}`,
			wantFrom: "254700000004",
			wantText: "edit",
			wantOK:   true,
		},
		{
			name: "status only delivery",
			payload: `{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.5","status":"delivered"}]}}]}]}`,
			wantOK:  false,
		},
		{
			name: "unsupported media type",
			payload: `{"entry":[{"changes":[{"value":{"messages":[{"from":"254700000005","id":"wamid.6","type":"image"}]}}]}]}`,
			wantOK:  false,
		},
		{
			name:    "empty envelope",
			payload: `{}`,
			wantOK:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p WebhookPayload
			if err := json.Unmarshal([]byte(tc.payload), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			in, ok := FirstInbound(p)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if in.From != tc.wantFrom {
				t.Fatalf("From = %q, want %q", in.From, tc.wantFrom)
			}
			if in.Text != tc.wantText {
				t.Fatalf("Text = %q, want %q", in.Text, tc.wantText)
			}
		})
	}
}
