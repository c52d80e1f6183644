// Package relay forwards chat turns to an OpenAI-compatible gateway and
// streams the gateway's event stream back to the caller untouched.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"safespace.app/backend/internal/logger"
)

const (
	msgRateLimited = "Rate limits exceeded, please try again later."
	msgUnavailable = "Service temporarily unavailable."
	msgUpstream    = "AI service error"

	maxRequestBytes = 1 << 20
	copyBufferSize  = 32 << 10
)

// Turn is one message of the conversation supplied by the caller.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the relay's request body.
type Request struct {
	Messages []Turn `json:"messages"`
	Type     string `json:"type"`
}

// upstreamRequest is the gateway body. Messages are Turns rather than
// openai.ChatCompletionMessage so an empty content is sent as "" instead of
// being dropped.
type upstreamRequest struct {
	Model    string `json:"model"`
	Messages []Turn `json:"messages"`
	Stream   bool   `json:"stream"`
}

// requestError is a caller mistake answered with 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

type Options struct {
	GatewayURL string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Handler is the relay endpoint. It keeps no state between requests.
type Handler struct {
	gatewayURL string
	apiKey     string
	model      string
	client     *http.Client
	log        *logger.Logger
}

func NewHandler(opts Options) *Handler {
	client := opts.HTTPClient
	if client == nil {
		// No client timeout: a stream lasts as long as the upstream keeps sending.
		client = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		gatewayURL: opts.GatewayURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		client:     client,
		log:        log,
	}
}

// SetCORSHeaders applies the permissive headers carried by every relay response.
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// WriteError writes a JSON {"error": msg} body with CORS headers.
func WriteError(w http.ResponseWriter, status int, msg string) {
	SetCORSHeaders(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		SetCORSHeaders(w.Header())
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp, err := h.forward(w, r)
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		WriteError(w, http.StatusBadRequest, reqErr.Error())
		return
	}
	if err != nil {
		h.log.Error("chat relay error", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.writeUpstreamError(w, resp)
		return
	}

	SetCORSHeaders(w.Header())
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	if err := pipe(w, resp.Body); err != nil {
		// Headers are gone already; the caller sees a truncated stream.
		h.log.Warn("chat relay stream interrupted", "error", err)
	}
}

// forward validates the request and opens the upstream stream. The upstream
// call is bound to the inbound request context so a caller disconnect
// cancels it.
func (h *Handler) forward(w http.ResponseWriter, r *http.Request) (*http.Response, error) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	for i, m := range req.Messages {
		if m.Role != openai.ChatMessageRoleUser && m.Role != openai.ChatMessageRoleAssistant {
			return nil, &requestError{msg: fmt.Sprintf("message %d: role must be %q or %q", i, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant)}
		}
	}
	if h.apiKey == "" {
		return nil, errors.New("AI gateway credential is not configured")
	}

	messages := make([]Turn, 0, len(req.Messages)+1)
	messages = append(messages, Turn{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(req.Type)})
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(upstreamRequest{
		Model:    h.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	upstreamReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	upstreamReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(upstreamReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	return resp, nil
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, resp *http.Response) {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		WriteError(w, http.StatusTooManyRequests, msgRateLimited)
	case http.StatusPaymentRequired:
		WriteError(w, http.StatusPaymentRequired, msgUnavailable)
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		h.log.Error("AI gateway error", "status", resp.StatusCode, "body", string(raw))
		WriteError(w, http.StatusInternalServerError, msgUpstream)
	}
}

// pipe copies src to w chunk by chunk, flushing after every write so the
// caller sees fragments as they arrive.
func pipe(w http.ResponseWriter, src io.Reader) error {
	rc := http.NewResponseController(w)
	buf := make([]byte, copyBufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return err
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
