package whatsapp

import "strings"

// WebhookPayload is the Cloud API webhook envelope. Delivery receipts
// and read statuses arrive on the same hook with an empty messages
// array, so extraction has to tolerate every level being absent.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string     `json:"type"`
	ButtonReply *ReplyInfo `json:"button_reply,omitempty"`
	ListReply   *ReplyInfo `json:"list_reply,omitempty"`
}

type ReplyInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Inbound is one customer turn distilled from the webhook payload.
// Button and list taps surface their reply ID as Text so the dialogue
// layer treats them exactly like typed keywords.
type Inbound struct {
	From      string
	Text      string
	MessageID string
}

// FirstInbound pulls the first customer message out of the payload.
// ok is false for status-only deliveries and unsupported media types.
func FirstInbound(p WebhookPayload) (Inbound, bool) {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				text, ok := messageText(msg)
				if !ok {
					continue
				}
				from := strings.TrimSpace(msg.From)
				if from == "" {
					continue
				}
				return Inbound{From: from, Text: text, MessageID: msg.ID}, true
			}
		}
	}
	return Inbound{}, false
}

func messageText(msg Message) (string, bool) {
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return "", false
		}
		return msg.Text.Body, true
	case "interactive":
		if msg.Interactive == nil {
			return "", false
		}
		var reply *ReplyInfo
		switch msg.Interactive.Type {
		case "button_reply":
			reply = msg.Interactive.ButtonReply
		case "list_reply":
			reply = msg.Interactive.ListReply
		}
		if reply == nil {
			return "", false
		}
		if id := strings.TrimSpace(reply.ID); id != "" {
			return id, true
		}
		if title := strings.TrimSpace(reply.Title); title != "" {
			return title, true
		}
		return "", false
	default:
		return "", false
	}
}
