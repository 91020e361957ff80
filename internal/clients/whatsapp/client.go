package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/hatchbot-backend/internal/platform/ctxutil"
	"github.com/yungbote/hatchbot-backend/internal/platform/envutil"
	"github.com/yungbote/hatchbot-backend/internal/platform/httpx"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

const (
	maxButtons     = 3
	maxButtonTitle = 20
)

type Client interface {
	SendText(ctx context.Context, to string, body string) (*SendResponse, error)
	SendButtons(ctx context.Context, to string, body string, buttons []Button) (*SendResponse, error)
	SendImage(ctx context.Context, to string, link string, caption string) (*SendResponse, error)
	SendDocumentByID(ctx context.Context, to string, mediaID string, filename string, caption string) (*SendResponse, error)
	SendDocumentByLink(ctx context.Context, to string, link string, filename string, caption string) (*SendResponse, error)
	UploadMedia(ctx context.Context, filename string, contentType string, data []byte) (*Media, error)
}

type Config struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("WHATSAPP_TIMEOUT_SECONDS", 30)
	maxRetries := envutil.Int("WHATSAPP_MAX_RETRIES", 4)

	return Config{
		Token:         strings.TrimSpace(os.Getenv("WHATSAPP_TOKEN")),
		PhoneNumberID: strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID")),
		BaseURL:       strings.TrimSpace(os.Getenv("GRAPH_BASE_URL")),
		Timeout:       time.Duration(timeoutSec) * time.Second,
		MaxRetries:    maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, fmt.Errorf("missing WHATSAPP_TOKEN")
	}
	cfg.PhoneNumberID = strings.TrimSpace(cfg.PhoneNumberID)
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("missing WHATSAPP_PHONE_NUMBER_ID")
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://graph.facebook.com/v20.0"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	}

	return &client{
		log:        log.With("client", "WhatsAppClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

// Button is one quick-reply choice. The Cloud API caps a message at
// three buttons and titles at twenty characters; both are clamped here
// rather than rejected.
type Button struct {
	ID    string
	Title string
}

type SendResponse struct {
	MessagingProduct string `json:"messaging_product,omitempty"`
	Contacts         []struct {
		Input string `json:"input,omitempty"`
		WaID  string `json:"wa_id,omitempty"`
	} `json:"contacts,omitempty"`
	Messages []struct {
		ID string `json:"id,omitempty"`
	} `json:"messages,omitempty"`
}

type Media struct {
	ID string `json:"id,omitempty"`
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type interactivePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Interactive      interactiveBody `json:"interactive"`
}

type interactiveBody struct {
	Type   string            `json:"type"`
	Body   textBody          `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveAction struct {
	Buttons []replyButton `json:"buttons"`
}

type replyButton struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type imagePayload struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Image            mediaBody `json:"image"`
}

type documentPayload struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Document         mediaBody `json:"document"`
}

type mediaBody struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func (c *client) SendText(ctx context.Context, to string, body string) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, fmt.Errorf("whatsapp: to required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("whatsapp: body required")
	}

	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	return doJSON[SendResponse](c, ctx, c.messagesURL(), payload)
}

func (c *client) SendButtons(ctx context.Context, to string, body string, buttons []Button) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, fmt.Errorf("whatsapp: to required")
	}
	if len(buttons) == 0 {
		return c.SendText(ctx, to, body)
	}
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}

	action := interactiveAction{Buttons: make([]replyButton, 0, len(buttons))}
	for _, b := range buttons {
		title := strings.TrimSpace(b.Title)
		if title == "" {
			continue
		}
		if runes := []rune(title); len(runes) > maxButtonTitle {
			title = string(runes[:maxButtonTitle])
		}
		id := strings.TrimSpace(b.ID)
		if id == "" {
			id = strings.ToLower(title)
		}
		action.Buttons = append(action.Buttons, replyButton{
			Type:  "reply",
			Reply: buttonReply{ID: id, Title: title},
		})
	}
	if len(action.Buttons) == 0 {
		return c.SendText(ctx, to, body)
	}

	payload := interactivePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactiveBody{
			Type:   "button",
			Body:   textBody{Body: body},
			Action: action,
		},
	}
	return doJSON[SendResponse](c, ctx, c.messagesURL(), payload)
}

func (c *client) SendImage(ctx context.Context, to string, link string, caption string) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	to = strings.TrimSpace(to)
	link = strings.TrimSpace(link)
	if to == "" {
		return nil, fmt.Errorf("whatsapp: to required")
	}
	if link == "" {
		return nil, fmt.Errorf("whatsapp: image link required")
	}

	payload := imagePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            mediaBody{Link: link, Caption: caption},
	}
	return doJSON[SendResponse](c, ctx, c.messagesURL(), payload)
}

func (c *client) SendDocumentByID(ctx context.Context, to string, mediaID string, filename string, caption string) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	to = strings.TrimSpace(to)
	mediaID = strings.TrimSpace(mediaID)
	if to == "" {
		return nil, fmt.Errorf("whatsapp: to required")
	}
	if mediaID == "" {
		return nil, fmt.Errorf("whatsapp: media id required")
	}

	payload := documentPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "document",
		Document:         mediaBody{ID: mediaID, Filename: filename, Caption: caption},
	}
	return doJSON[SendResponse](c, ctx, c.messagesURL(), payload)
}

func (c *client) SendDocumentByLink(ctx context.Context, to string, link string, filename string, caption string) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	to = strings.TrimSpace(to)
	link = strings.TrimSpace(link)
	if to == "" {
		return nil, fmt.Errorf("whatsapp: to required")
	}
	if link == "" {
		return nil, fmt.Errorf("whatsapp: document link required")
	}

	payload := documentPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "document",
		Document:         mediaBody{Link: link, Filename: filename, Caption: caption},
	}
	return doJSON[SendResponse](c, ctx, c.messagesURL(), payload)
}

func (c *client) UploadMedia(ctx context.Context, filename string, contentType string, data []byte) (*Media, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("whatsapp client unavailable")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("whatsapp: media data required")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "upload.bin"
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("messaging_product", "whatsapp"); err != nil {
		return nil, err
	}
	if err := mw.WriteField("type", contentType); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/media", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	return doRaw[Media](c, ctx, "POST", endpoint, buf.Bytes(), mw.FormDataContentType())
}

func (c *client) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
}

// ---------- HTTP / retry helpers ----------

type apiError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	FBTraceID string `json:"fbtrace_id"`
}

type apiErrorEnvelope struct {
	Error *apiError `json:"error"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "whatsapp: <nil error>"
	}
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		if e.APIError.Code != 0 {
			return fmt.Sprintf("whatsapp http %d: %s (code=%d)", e.StatusCode, e.APIError.Message, e.APIError.Code)
		}
		return fmt.Sprintf("whatsapp http %d: %s", e.StatusCode, e.APIError.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("whatsapp http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func doJSON[T any](c *client, ctx context.Context, urlStr string, payload any) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return doRaw[T](c, ctx, "POST", urlStr, body, "application/json")
}

func doRaw[T any](c *client, ctx context.Context, method, urlStr string, body []byte, contentType string) (*T, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, resp, err := doOnce[T](c, ctx, method, urlStr, body, contentType)
		if err == nil {
			return out, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("WhatsApp request retrying",
			"url", urlStr,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if err := httpx.SleepCtx(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func doOnce[T any](c *client, ctx context.Context, method, urlStr string, body []byte, contentType string) (*T, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, urlStr, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env apiErrorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Error != nil && strings.TrimSpace(env.Error.Message) != "" {
			return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw), APIError: env.Error}
		}
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if len(raw) == 0 {
		return &out, resp, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("whatsapp decode error: %w; raw=%s", err, string(raw))
	}
	return &out, resp, nil
}
