// Package client implement console chat client.
package client

//
// requester.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/config"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxResponseSize       = 1 << 20
)

// RequestErrorTag mark errors of communication with server.
const RequestErrorTag = "request error"

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	StatusCode int
	Message    string
}

func (s *StatusError) Error() string {
	if s.Message == "" {
		return fmt.Sprintf("HTTP error response %d", s.StatusCode)
	}

	return fmt.Sprintf("HTTP error response %d: %s", s.StatusCode, s.Message)
}

// IsStatus check is err StatusError with given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}

	return false
}

//-------------------------------------------------------------

// Requester send requests to chat server located at base url.
type Requester struct {
	baseURL string
	client  *http.Client
}

func NewRequester(baseURL string) (*Requester, error) {
	baseURL = strings.TrimSpace(baseURL)

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, aerr.ErrInvalidConf.WithUserMsg("invalid server url %q", baseURL)
	}

	return &Requester{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

// Do send request with params and return response body. Parameters are passed in
// query for GET and DELETE, otherwise as form body. Non-200 responses end with
// StatusError.
func (r *Requester) Do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	logger := log.Ctx(ctx)

	reqURL := r.baseURL + "/" + strings.TrimLeft(path, "/")

	var body io.Reader

	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
	default:
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, aerr.Wrapf(err, "create request failed").WithTag(RequestErrorTag)
	}

	req.Header.Set("User-Agent", config.UserAgent())

	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logger.Debug().Str("method", method).Str("path", path).Msg("Requester: sending request")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, aerr.Wrapf(err, "send request failed").WithTag(RequestErrorTag)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, aerr.Wrapf(err, "read response failed").WithTag(RequestErrorTag)
	}

	logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Msg("Requester: response received")

	if resp.StatusCode != http.StatusOK {
		return data, &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	return data, nil
}

// DoJSON send request and decode response into dst.
func (r *Requester) DoJSON(ctx context.Context, method, path string, params url.Values, dst any) error {
	data, err := r.Do(ctx, method, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return aerr.Wrapf(err, "decode response failed").WithTag(RequestErrorTag)
	}

	return nil
}
