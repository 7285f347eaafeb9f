package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codecamp/internal/platform/logger"

	"go.uber.org/zap"
)

// Judge0 status ids.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
	StatusAccepted   = 3
)

// State is the client-side view of a submission's lifecycle.
type State int

const (
	StateQueued State = iota
	StateRunning
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// StateOf classifies a Judge0 status id. Anything but 1 and 2 is terminal.
func StateOf(statusID int) State {
	switch statusID {
	case StatusInQueue:
		return StateQueued
	case StatusProcessing:
		return StateRunning
	default:
		return StateTerminal
	}
}

type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type Request struct {
	SourceCode   string
	Language     string
	Stdin        string
	CPUTimeLimit float64 // seconds, zero means client default
	MemoryLimit  int     // KB, zero means client default
}

type Result struct {
	Token         string `json:"token"`
	Status        Status `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compileOutput"`
	Time          string `json:"time"`
	Memory        int    `json:"memory"`
}

func (r *Result) State() State { return StateOf(r.Status.ID) }

// Succeeded reports whether the program ran to completion without a
// compile, runtime or time-limit failure.
func (r *Result) Succeeded() bool { return r.Status.ID == StatusAccepted }

type Options struct {
	BaseURL         string
	APIKey          string
	APIHost         string
	PollInterval    time.Duration
	DefaultDeadline time.Duration // applied only when the caller's context has no deadline
	CPUTimeLimit    float64
	MemoryLimit     int
	HTTPClient      *http.Client
}

type Client struct {
	baseURL         string
	apiKey          string
	apiHost         string
	pollInterval    time.Duration
	defaultDeadline time.Duration
	cpuTimeLimit    float64
	memoryLimit     int
	httpClient      *http.Client
}

func NewClient(opts Options) *Client {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		apiKey:          opts.APIKey,
		apiHost:         opts.APIHost,
		pollInterval:    opts.PollInterval,
		defaultDeadline: opts.DefaultDeadline,
		cpuTimeLimit:    opts.CPUTimeLimit,
		memoryLimit:     opts.MemoryLimit,
		httpClient:      opts.HTTPClient,
	}
}

// Configured returns a *ConfigurationError when the client has no credential or endpoint.
func (c *Client) Configured() error {
	if c.apiKey == "" {
		return &ConfigurationError{Reason: "JUDGE0_API_KEY is not set"}
	}
	if c.baseURL == "" {
		return &ConfigurationError{Reason: "JUDGE0_URL is not set"}
	}
	return nil
}

// Execute submits one program and drives it Queued -> Running -> Terminal.
// The poll loop ends when a terminal status arrives, when ctx is cancelled,
// or when ctx's deadline passes (*PollTimeoutError).
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}
	languageID, ok := LanguageID(req.Language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.defaultDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.defaultDeadline)
		defer cancel()
	}

	token, err := c.Submit(ctx, languageID, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, interrupted(ctx, "", StateQueued, 0)
		}
		return nil, err
	}

	state := StateQueued
	polls := 0
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, interrupted(ctx, token, state, polls)
		case <-timer.C:
		}

		res, err := c.Fetch(ctx, token)
		polls++
		if err != nil {
			if ctx.Err() != nil {
				return nil, interrupted(ctx, token, state, polls)
			}
			return nil, err
		}

		next := res.State()
		if next != state {
			logger.Debug(ctx, "judge0 state change",
				zap.String("token", token),
				zap.Stringer("from", state),
				zap.Stringer("to", next),
				zap.Int("status_id", res.Status.ID))
			state = next
		}
		if state == StateTerminal {
			return res, nil
		}
		timer.Reset(c.pollInterval)
	}
}

func interrupted(ctx context.Context, token string, state State, polls int) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &PollTimeoutError{Token: token, LastState: state, Polls: polls}
	}
	return fmt.Errorf("judge0 submission %q: %w", token, ctx.Err())
}

type createPayload struct {
	SourceCode   string  `json:"source_code"`
	LanguageID   int     `json:"language_id"`
	Stdin        string  `json:"stdin"`
	CPUTimeLimit float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimit  int     `json:"memory_limit,omitempty"`
}

type submissionBody struct {
	Token         string  `json:"token"`
	Status        *Status `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
}

// Submit creates a submission and returns its opaque token.
func (c *Client) Submit(ctx context.Context, languageID int, req Request) (string, error) {
	payload := createPayload{
		SourceCode:   req.SourceCode,
		LanguageID:   languageID,
		Stdin:        req.Stdin,
		CPUTimeLimit: req.CPUTimeLimit,
		MemoryLimit:  req.MemoryLimit,
	}
	if payload.CPUTimeLimit <= 0 {
		payload.CPUTimeLimit = c.cpuTimeLimit
	}
	if payload.MemoryLimit <= 0 {
		payload.MemoryLimit = c.memoryLimit
	}

	var body submissionBody
	endpoint := c.baseURL + "/submissions?base64_encoded=false&wait=false"
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", errors.New("judge0 create submission: response has no token")
	}
	return body.Token, nil
}

// Fetch reads the current state of a submission once.
func (c *Client) Fetch(ctx context.Context, token string) (*Result, error) {
	endpoint := c.baseURL + "/submissions/" + url.PathEscape(token) +
		"?base64_encoded=false&fields=token,status,stdout,stderr,compile_output,time,memory"

	var body submissionBody
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &body); err != nil {
		return nil, err
	}
	if body.Status == nil {
		return nil, fmt.Errorf("judge0 submission %s: response has no status", token)
	}

	res := &Result{Token: token, Status: *body.Status}
	if body.Stdout != nil {
		res.Stdout = *body.Stdout
	}
	if body.Stderr != nil {
		res.Stderr = *body.Stderr
	}
	if body.CompileOutput != nil {
		res.CompileOutput = *body.CompileOutput
	}
	if body.Time != nil {
		res.Time = *body.Time
	}
	if body.Memory != nil {
		res.Memory = *body.Memory
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal judge0 request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build judge0 request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	if c.apiHost != "" {
		httpReq.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("judge0 %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode judge0 response: %w", err)
	}
	return nil
}
