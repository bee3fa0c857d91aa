package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls a traffic run. RPS is a global target shared across all
// workers; Seed makes the request mix reproducible.
type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	StatusClasses map[string]int64
}

type request struct {
	method string
	path   string
	body   string
}

// Run generates API traffic against a running server until cfg.Duration
// elapses or ctx is cancelled. It registers one throwaway account up front so
// the auth profile has valid credentials to replay.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	profile := normalizeProfile(cfg.Profile)

	client := &http.Client{Timeout: 10 * time.Second}
	username := fmt.Sprintf("loadgen%d", time.Now().UnixNano()%1_000_000)
	password := "Loadgen-Pass1"
	if err := registerAccount(ctx, client, cfg.BaseURL, username, password); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var (
		total    atomic.Int64
		failures atomic.Int64
		mu       sync.Mutex
		classes  = map[string]int64{}
	)
	interval := time.Second / time.Duration(cfg.RPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	work := make(chan request)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range work {
				status, err := send(ctx, client, cfg.BaseURL, req)
				total.Add(1)
				if err != nil || status >= 500 {
					failures.Add(1)
				}
				mu.Lock()
				classes[classifyStatusClass(status)]++
				mu.Unlock()
			}
		}()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
feed:
	for {
		select {
		case <-ctx.Done():
			break feed
		case <-ticker.C:
			select {
			case work <- pick(rng, profile, username, password):
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(work)
	wg.Wait()

	return Result{
		TotalRequests: total.Load(),
		Failures:      failures.Load(),
		StatusClasses: classes,
	}, nil
}

func pick(rng *rand.Rand, profile, username, password string) request {
	login := request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   fmt.Sprintf(`{"username":%q,"password":%q}`, username, password),
	}
	badLogin := request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   fmt.Sprintf(`{"username":%q,"password":"wrong-pass"}`, username),
	}
	browse := []request{
		{method: http.MethodGet, path: "/api/tags"},
		{method: http.MethodGet, path: "/health/live"},
	}

	switch profile {
	case "auth":
		if rng.Intn(4) == 0 {
			return badLogin
		}
		return login
	case "content":
		return browse[rng.Intn(len(browse))]
	default: // mixed
		switch rng.Intn(3) {
		case 0:
			return login
		case 1:
			return badLogin
		default:
			return browse[rng.Intn(len(browse))]
		}
	}
}

func send(ctx context.Context, client *http.Client, baseURL string, r request) (int, error) {
	var body *bytes.Reader
	if r.body != "" {
		body = bytes.NewReader([]byte(r.body))
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, strings.TrimRight(baseURL, "/")+r.path, body)
	if err != nil {
		return 0, err
	}
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func registerAccount(ctx context.Context, client *http.Client, baseURL, username, password string) error {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@loadgen.local",
		"password": password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/accounts", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("register loadgen account: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("register loadgen account: status %d", resp.StatusCode)
	}
	return nil
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}

func normalizeProfile(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	switch p {
	case "auth", "content", "mixed":
		return p
	default:
		return "mixed"
	}
}
