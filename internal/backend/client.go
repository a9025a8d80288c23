// Package backend talks to the exam REST API. Client implements both
// exam.QuestionSource and exam.ReportSink.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/logging"
)

// Config configures the REST client.
type Config struct {
	BaseURL   string
	Token     string        // optional bearer token
	Timeout   time.Duration // per request; zero means none
	UserAgent string
}

// Client is the REST backend client.
type Client struct {
	baseURL   string
	token     string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	logger    logging.Logger
}

var (
	_ exam.QuestionSource = (*Client)(nil)
	_ exam.ReportSink     = (*Client)(nil)
)

// New creates a client. A nil httpClient uses http.DefaultClient.
func New(cfg Config, httpClient *http.Client, logger logging.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Nop()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "studyhall"
	}
	return &Client{
		baseURL:   base,
		token:     cfg.Token,
		timeout:   cfg.Timeout,
		userAgent: ua,
		http:      httpClient,
		logger:    logger.With("component", "backend"),
	}, nil
}

// FetchQuestions loads the question set for q. Records that fail schema
// validation or normalization are dropped with a warning.
func (c *Client) FetchQuestions(ctx context.Context, q exam.Query) ([]exam.Question, error) {
	params := url.Values{}
	params.Set("type", string(q.Kind))
	setIf(params, "class", q.Class)
	setIf(params, "subject", q.Subject)
	setIf(params, "topic", q.Topic)
	setIf(params, "subtopic", q.Subtopic)
	if len(q.Subjects) > 0 {
		params.Set("subjects", strings.Join(q.Subjects, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/questions?"+params.Encode(), nil, &raw); err != nil {
		return nil, err
	}

	questions := make([]exam.Question, 0, len(raw))
	for i, item := range raw {
		if err := validateRecord(item); err != nil {
			c.logger.WarnContext(ctx, "dropping invalid question record", "index", i, "error", err)
			continue
		}
		var rec questionRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.WarnContext(ctx, "dropping undecodable question record", "index", i, "error", err)
			continue
		}
		qq, err := rec.toQuestion()
		if err != nil {
			c.logger.WarnContext(ctx, "dropping question record", "index", i, "error", err)
			continue
		}
		questions = append(questions, qq)
	}
	c.logger.DebugContext(ctx, "fetched questions", "kind", q.Kind, "received", len(raw), "kept", len(questions))
	return questions, nil
}

// UpdateStreak bumps the user's daily streak and returns the new value.
func (c *Client) UpdateStreak(ctx context.Context, username string) (int, error) {
	var out streakResponse
	if err := c.do(ctx, http.MethodPost, "/streak", streakRequest{Username: username}, &out); err != nil {
		return 0, err
	}
	return out.Streak, nil
}

// FetchNarration returns the explanation blocks for a question. A 404 means
// the question has none and yields an empty result.
func (c *Client) FetchNarration(ctx context.Context, questionID string) ([]exam.NarrationBlock, error) {
	var blocks []exam.NarrationBlock
	err := c.do(ctx, http.MethodGet, "/narrations/"+url.PathEscape(questionID), nil, &blocks)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// SubmitReport posts the final exam report.
func (c *Client) SubmitReport(ctx context.Context, r exam.Report) error {
	return c.do(ctx, http.MethodPost, "/reports", toReportRequest(r), nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var eb errorBody
	if json.Unmarshal(b, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(b))
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
