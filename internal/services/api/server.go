// Package api serves the treeforge commands as JSON over HTTP.
//
// Every command request passes through the same chain: a request ID is
// assigned, the rate limiter is consulted, the body is read under a size cap,
// and the named executor runs. One access record is logged per request.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultListenAddress    = "127.0.0.1:8787"
	defaultShutdownDuration = 5 * time.Second
	defaultMaxRequestBytes  = 1 << 20
	readHeaderTimeout       = 10 * time.Second

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-Id"

	headerContentType = "Content-Type"
	mimeTypeJSON      = "application/json"
	capabilitiesPath  = "/capabilities"
	commandsPrefix    = "/commands/"

	errorCommandNotFound = "command not found"
	errorRateLimited     = "too many requests"
	errorReadBodyFormat  = "read request body: %w"
	errorListenFormat    = "listen on %s: %w"
	errorServeFormat     = "serve: %w"
	errorShutdownFormat  = "shutdown: %w"

	logMessageRequest = "request"
)

// Capability describes a command exposed by the server.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CommandRequest holds the raw JSON body supplied by clients.
type CommandRequest struct {
	Payload json.RawMessage
}

// CommandResponse contains the outcome of a command execution.
type CommandResponse struct {
	Output   string   `json:"output"`
	Format   string   `json:"format"`
	Warnings []string `json:"warnings,omitempty"`
}

// CommandExecutor executes a command based on an incoming request.
type CommandExecutor interface {
	Execute(ctx context.Context, request CommandRequest) (CommandResponse, error)
}

// CommandExecutorFunc adapts a function into a CommandExecutor.
type CommandExecutorFunc func(context.Context, CommandRequest) (CommandResponse, error)

// Execute invokes the underlying function.
func (executor CommandExecutorFunc) Execute(ctx context.Context, request CommandRequest) (CommandResponse, error) {
	return executor(ctx, request)
}

// RequestError is an executor failure answered with a specific HTTP status.
type RequestError struct {
	Status int
	Err    error
}

func (requestError *RequestError) Error() string {
	return requestError.Err.Error()
}

func (requestError *RequestError) Unwrap() error {
	return requestError.Err
}

// Reject wraps err so the server answers with status. A nil err stays nil.
func Reject(status int, err error) error {
	if err == nil {
		return nil
	}
	return &RequestError{Status: status, Err: err}
}

// statusOf maps an executor error onto an HTTP status.
func statusOf(err error) int {
	var requestError *RequestError
	switch {
	case errors.As(err, &requestError):
		return requestError.Status
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request that ctx belongs to, or an
// empty string outside a request.
func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// Config defines runtime options for the server.
type Config struct {
	Address         string
	Capabilities    []Capability
	Executors       map[string]CommandExecutor
	ShutdownTimeout time.Duration
	MaxRequestBytes int64
	Logger          *zap.Logger

	// RequestsPerSecond limits command requests across all clients. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once; values below one become one.
	Burst             int
}

// Server serves capability metadata and executes commands over HTTP.
type Server struct {
	config  Config
	limiter *rate.Limiter
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	if config.Address == "" {
		config.Address = DefaultListenAddress
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownDuration
	}
	if config.MaxRequestBytes <= 0 {
		config.MaxRequestBytes = defaultMaxRequestBytes
	}
	if config.Capabilities == nil {
		config.Capabilities = []Capability{}
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	server := Server{config: config}
	if config.RequestsPerSecond > 0 {
		server.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), max(config.Burst, 1))
	}
	return server
}

// Handler returns the routing table wrapped in the request middleware.
func (server Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(capabilitiesPath, server.serveCapabilities)
	router.Handle(commandsPrefix, server.limit(http.HandlerFunc(server.serveCommand)))
	return server.identify(router)
}

// Run starts the server and blocks until ctx is canceled.
// The notify callback receives the bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenError := net.Listen("tcp", server.config.Address)
	if listenError != nil {
		return fmt.Errorf(errorListenFormat, server.config.Address, listenError)
	}
	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: readHeaderTimeout}
	if notify != nil {
		notify(listener.Addr().String())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if serveError := httpServer.Serve(listener); !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(errorServeFormat, serveError)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		if shutdownError := httpServer.Shutdown(shutdownCtx); shutdownError != nil {
			return fmt.Errorf(errorShutdownFormat, shutdownError)
		}
		return nil
	})
	return group.Wait()
}

// statusRecorder remembers the status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}

// identify assigns the request ID, echoes it and logs one access record.
func (server Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := request.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		writer.Header().Set(RequestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, request.WithContext(context.WithValue(request.Context(), requestIDKey{}, requestID)))

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("elapsed", time.Since(started)),
		}
		if recorder.status >= http.StatusBadRequest {
			server.config.Logger.Warn(logMessageRequest, fields...)
			return
		}
		server.config.Logger.Info(logMessageRequest, fields...)
	})
}

// limit rejects requests beyond the configured rate.
func (server Server) limit(next http.Handler) http.Handler {
	if server.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !server.limiter.Allow() {
			writeError(writer, http.StatusTooManyRequests, errors.New(errorRateLimited))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (server Server) serveCapabilities(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(writer, http.StatusOK, struct {
		Capabilities []Capability `json:"capabilities"`
	}{Capabilities: server.config.Capabilities})
}

func (server Server) serveCommand(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	executor, found := server.executorFor(request.URL.Path)
	if !found {
		writeError(writer, http.StatusNotFound, errors.New(errorCommandNotFound))
		return
	}
	body, readError := io.ReadAll(http.MaxBytesReader(writer, request.Body, server.config.MaxRequestBytes))
	if readError != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(readError, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(writer, status, fmt.Errorf(errorReadBodyFormat, readError))
		return
	}

	response, executeError := executor.Execute(request.Context(), CommandRequest{Payload: body})
	if executeError != nil {
		writeError(writer, statusOf(executeError), executeError)
		return
	}
	writeJSON(writer, http.StatusOK, response)
}

// executorFor resolves /commands/{name}; nested paths never match.
func (server Server) executorFor(path string) (CommandExecutor, bool) {
	name := strings.TrimPrefix(path, commandsPrefix)
	if name == "" || strings.Contains(name, "/") {
		return nil, false
	}
	executor, found := server.config.Executors[name]
	return executor, found
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(writer http.ResponseWriter, status int, err error) {
	writeJSON(writer, status, errorBody{Error: err.Error()})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	encoded, encodeError := json.Marshal(payload)
	if encodeError != nil {
		status = http.StatusInternalServerError
		encoded, _ = json.Marshal(errorBody{Error: encodeError.Error()})
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(status)
	_, _ = writer.Write(append(encoded, '\n'))
}
