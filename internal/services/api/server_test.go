package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tyemirov/treeforge/internal/services/api"
)

func startServer(t *testing.T, config api.Config) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	addressCh := make(chan string, 1)
	errorCh := make(chan error, 1)
	config.Address = "127.0.0.1:0"
	server := api.NewServer(config)
	go func() {
		errorCh <- server.Run(ctx, func(address string) {
			addressCh <- address
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-errorCh; err != nil {
			t.Errorf("server error: %v", err)
		}
	})
	select {
	case address := <-addressCh:
		return address
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
		return ""
	}
}

func TestServerExposesCapabilities(t *testing.T) {
	t.Parallel()

	capabilities := []api.Capability{
		{Name: "preview", Description: "Render a tree"},
		{Name: "create", Description: "Create a tree"},
	}
	address := startServer(t, api.Config{Capabilities: capabilities})

	client := http.Client{Timeout: 2 * time.Second}
	response, err := client.Get("http://" + address + "/capabilities")
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", response.StatusCode)
	}
	var body struct {
		Capabilities []api.Capability `json:"capabilities"`
	}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Capabilities) != len(capabilities) {
		t.Fatalf("expected %d capabilities, got %d", len(capabilities), len(body.Capabilities))
	}
	for index, capability := range body.Capabilities {
		if capability != capabilities[index] {
			t.Fatalf("capability %d mismatch: got %+v, want %+v", index, capability, capabilities[index])
		}
	}
}

func TestServerExecutesCommands(t *testing.T) {
	t.Parallel()

	executors := map[string]api.CommandExecutor{
		"echo": api.CommandExecutorFunc(func(_ context.Context, request api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{Output: string(request.Payload), Format: "raw"}, nil
		}),
		"reject": api.CommandExecutorFunc(func(context.Context, api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{}, api.Reject(http.StatusBadRequest, errors.New("bad payload"))
		}),
		"crash": api.CommandExecutorFunc(func(context.Context, api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{}, errors.New("boom")
		}),
		"slow": api.CommandExecutorFunc(func(context.Context, api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{}, fmt.Errorf("materialize: %w", context.DeadlineExceeded)
		}),
	}
	address := startServer(t, api.Config{Executors: executors, MaxRequestBytes: 64})

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedOutput string
		expectedError  string
	}{
		{name: "echo", method: http.MethodPost, path: "/commands/echo", body: `{"a":1}`, expectedStatus: http.StatusOK, expectedOutput: `{"a":1}`},
		{name: "execution error", method: http.MethodPost, path: "/commands/reject", body: "{}", expectedStatus: http.StatusBadRequest, expectedError: "bad payload"},
		{name: "internal error", method: http.MethodPost, path: "/commands/crash", body: "{}", expectedStatus: http.StatusInternalServerError, expectedError: "boom"},
		{name: "deadline", method: http.MethodPost, path: "/commands/slow", body: "{}", expectedStatus: http.StatusGatewayTimeout, expectedError: "materialize: context deadline exceeded"},
		{name: "nested command path", method: http.MethodPost, path: "/commands/echo/extra", body: "{}", expectedStatus: http.StatusNotFound, expectedError: "command not found"},
		{name: "unknown command", method: http.MethodPost, path: "/commands/missing", body: "{}", expectedStatus: http.StatusNotFound, expectedError: "command not found"},
		{name: "wrong method", method: http.MethodGet, path: "/commands/echo", expectedStatus: http.StatusMethodNotAllowed},
		{name: "body too large", method: http.MethodPost, path: "/commands/echo", body: strings.Repeat("x", 128), expectedStatus: http.StatusRequestEntityTooLarge},
	}

	client := http.Client{Timeout: 2 * time.Second}
	for _, testCase := range testCases {
		request, err := http.NewRequest(testCase.method, "http://"+address+testCase.path, strings.NewReader(testCase.body))
		if err != nil {
			t.Fatalf("%s: new request: %v", testCase.name, err)
		}
		response, err := client.Do(request)
		if err != nil {
			t.Fatalf("%s: perform request: %v", testCase.name, err)
		}
		if response.StatusCode != testCase.expectedStatus {
			response.Body.Close()
			t.Fatalf("%s: expected status %d, got %d", testCase.name, testCase.expectedStatus, response.StatusCode)
		}
		if testCase.expectedOutput != "" {
			var payload api.CommandResponse
			if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
				t.Fatalf("%s: decode response: %v", testCase.name, err)
			}
			if payload.Output != testCase.expectedOutput {
				t.Fatalf("%s: unexpected output %q", testCase.name, payload.Output)
			}
		}
		if testCase.expectedError != "" {
			var payload map[string]string
			if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
				t.Fatalf("%s: decode error response: %v", testCase.name, err)
			}
			if payload["error"] != testCase.expectedError {
				t.Fatalf("%s: unexpected error %q", testCase.name, payload["error"])
			}
		}
		response.Body.Close()
	}
}

func TestServerLimitsRequestRateAndEchoesRequestID(t *testing.T) {
	t.Parallel()

	executors := map[string]api.CommandExecutor{
		"noop": api.CommandExecutorFunc(func(context.Context, api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{Format: "raw"}, nil
		}),
	}
	address := startServer(t, api.Config{Executors: executors, RequestsPerSecond: 0.001, Burst: 1})
	client := http.Client{Timeout: 2 * time.Second}

	request, err := http.NewRequest(http.MethodPost, "http://"+address+"/commands/noop", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	request.Header.Set("X-Request-Id", "fixed-id")
	first, err := client.Do(request)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.StatusCode)
	}
	if first.Header.Get("X-Request-Id") != "fixed-id" {
		t.Fatalf("request id not echoed: %q", first.Header.Get("X-Request-Id"))
	}

	second, err := client.Post("http://"+address+"/commands/noop", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiting, got %d", second.StatusCode)
	}
	if second.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestHandlerPassesRequestIDToExecutors(t *testing.T) {
	t.Parallel()

	server := api.NewServer(api.Config{Executors: map[string]api.CommandExecutor{
		"whoami": api.CommandExecutorFunc(func(ctx context.Context, _ api.CommandRequest) (api.CommandResponse, error) {
			return api.CommandResponse{Output: api.RequestID(ctx)}, nil
		}),
	}})
	handler := server.Handler()

	testCases := []struct {
		name      string
		requestID string
	}{
		{name: "client supplied", requestID: "build-42"},
		{name: "generated", requestID: ""},
	}
	for _, testCase := range testCases {
		request := httptest.NewRequest(http.MethodPost, "/commands/whoami", strings.NewReader("{}"))
		if testCase.requestID != "" {
			request.Header.Set(api.RequestIDHeader, testCase.requestID)
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		if recorder.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", testCase.name, recorder.Code)
		}
		var payload api.CommandResponse
		if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
			t.Fatalf("%s: decode response: %v", testCase.name, err)
		}
		echoed := recorder.Header().Get(api.RequestIDHeader)
		if echoed == "" || payload.Output != echoed {
			t.Fatalf("%s: executor saw %q, header carried %q", testCase.name, payload.Output, echoed)
		}
		if testCase.requestID != "" && echoed != testCase.requestID {
			t.Fatalf("%s: expected %q, got %q", testCase.name, testCase.requestID, echoed)
		}
	}
	if api.RequestID(context.Background()) != "" {
		t.Fatalf("expected no request ID outside a request")
	}
}
