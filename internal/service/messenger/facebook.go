package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const graphAPI = "https://graph.facebook.com/v19.0"

// Facebook sends Messenger replies through the Graph Send API.
type Facebook struct {
	pageToken  string
	httpClient *http.Client
	baseURL    string
}

func NewFacebook(pageToken string) *Facebook {
	return &Facebook{
		pageToken:  pageToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    graphAPI,
	}
}

func (f *Facebook) Send(ctx context.Context, to, body string) (string, error) {
	payload := map[string]interface{}{
		"recipient": map[string]string{"id": to},
		"message":   map[string]string{"text": body},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshaling messenger payload")
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", f.baseURL, url.QueryEscape(f.pageToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", errors.Wrap(err, "building messenger request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling graph api")
	}
	defer resp.Body.Close()

	var decoded struct {
		MessageID string `json:"message_id"`
		Error     *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decoding graph response")
	}
	if decoded.Error != nil {
		return "", errors.Errorf("graph api error: %s", decoded.Error.Message)
	}

	return decoded.MessageID, nil
}
