package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const telegramAPI = "https://api.telegram.org"

// Telegram is a minimal Bot API client. Delivery over Telegram needs no paid
// provider, which is why the dispatcher prefers it.
type Telegram struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

func NewTelegram(token string) *Telegram {
	return &Telegram{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    telegramAPI,
	}
}

type telegramResponse struct {
	Ok     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

func (t *Telegram) call(ctx context.Context, method string, payload interface{}) (*telegramResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling telegram payload")
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling telegram api")
	}
	defer resp.Body.Close()

	var decoded telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decoding telegram response")
	}
	if !decoded.Ok {
		return nil, errors.Errorf("telegram api error: %s", decoded.Description)
	}

	return &decoded, nil
}

func (t *Telegram) Send(ctx context.Context, to, body string) (string, error) {
	resp, err := t.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id": to,
		"text":    body,
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(resp.Result.MessageID, 10), nil
}

// AnswerCallbackQuery acknowledges an inline button press so the client stops
// showing a spinner. Fire-and-forget: callers ignore the error beyond logging.
func (t *Telegram) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := t.call(ctx, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": callbackID,
	})
	return err
}
