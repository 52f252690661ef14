package api

import (
	"encoding/json"
)

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseReply extracts choices[0].message.content from a successful response body.
func ParseReply(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedResponseError{Reason: "decode body", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices in response"}
	}
	msg := resp.Choices[0].Message
	if msg == nil {
		return "", &MalformedResponseError{Reason: "choices[0] has no message"}
	}
	if msg.Content == nil {
		return "", &MalformedResponseError{Reason: "choices[0].message has no content"}
	}
	return *msg.Content, nil
}
