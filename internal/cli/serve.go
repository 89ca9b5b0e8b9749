package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/treeforge/internal/materialize"
	"github.com/tyemirov/treeforge/internal/output"
	"github.com/tyemirov/treeforge/internal/parser"
	"github.com/tyemirov/treeforge/internal/services/api"
	"github.com/tyemirov/treeforge/internal/types"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	serveUse              = types.CommandServe
	serveShortDescription = "serve preview and create as JSON commands over HTTP"
	serveLongDescription  = `Start an HTTP server exposing GET /capabilities and POST /commands/{preview,create}.
Create requests are confined to destinations below --root.`
	serveUsageExample = `  # Serve on the default address, creating trees below ./workspace
  treeforge serve --root ./workspace

  # Preview a tree through the server
  curl -s localhost:8787/commands/preview -d '{"text":"app/\n└── main.go"}'`

	addressFlagName            = "address"
	rootFlagName               = "root"
	rateFlagName               = "rate"
	burstFlagName              = "burst"
	rateFlagDescription        = "maximum command requests per second across all clients; 0 disables limiting"
	burstFlagDescription       = "number of command requests allowed in a single burst"
	defaultServeBurst          = 1
	addressFlagDescription     = "address to listen on"
	rootFlagDescription        = "directory that create requests are confined to"
	defaultServeRoot           = "."
	serveListeningFormat       = "treeforge server listening on %s\n"
	logMessageServerListening  = "server listening"
	previewCapabilityText      = "Parse tree text and render it as raw, json, xml or yaml"
	createCapabilityText       = "Parse tree text and create its directories and files below the server root"
	errorDecodeRequestFormat   = "decode %s request: %w"
	errorResolveRootFormat     = "resolve server root %s: %w"
	errorRequestDestination    = "destination %q: %w"
	errorMaterializationFormat = "create: %w"
)

type previewRequest struct {
	Text    string `json:"text"`
	Format  string `json:"format"`
	Summary *bool  `json:"summary"`
}

type createRequest struct {
	Text        string `json:"text"`
	Destination string `json:"destination"`
	Format      string `json:"format"`
	Headers     *bool  `json:"headers"`
	Workers     *int   `json:"workers"`
	DryRun      *bool  `json:"dryRun"`
}

// createServeCommand returns the serve subcommand.
func (app *application) createServeCommand() *cobra.Command {
	var address string
	var root string
	var requestsPerSecond float64
	var burst int

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			serveConfiguration := app.configuration.Serve
			listenAddress := resolveString(command, addressFlagName, address, serveConfiguration.Address)
			serveRoot, rootError := resolveServeRoot(resolveString(command, rootFlagName, root, serveConfiguration.Root))
			if rootError != nil {
				return rootError
			}

			logger := app.dependencies.Logger
			server := api.NewServer(api.Config{
				Address:           listenAddress,
				Capabilities:      serveCapabilities(),
				Executors:         app.serveExecutors(serveRoot),
				Logger:            logger,
				RequestsPerSecond: resolveFloat(command, rateFlagName, requestsPerSecond, serveConfiguration.Rate),
				Burst:             resolveInt(command, burstFlagName, burst, serveConfiguration.Burst),
			})
			writer := command.OutOrStdout()
			return server.Run(command.Context(), func(boundAddress string) {
				fmt.Fprintf(writer, serveListeningFormat, boundAddress)
				logger.Info(logMessageServerListening, zap.String("address", boundAddress), zap.String("root", serveRoot))
			})
		},
	}
	serveCommand.Flags().StringVar(&address, addressFlagName, api.DefaultListenAddress, addressFlagDescription)
	serveCommand.Flags().StringVar(&root, rootFlagName, defaultServeRoot, rootFlagDescription)
	serveCommand.Flags().Float64Var(&requestsPerSecond, rateFlagName, 0, rateFlagDescription)
	serveCommand.Flags().IntVar(&burst, burstFlagName, defaultServeBurst, burstFlagDescription)
	return serveCommand
}

func resolveServeRoot(root string) (string, error) {
	expanded, expandError := utils.ExpandHomeDirectory(root)
	if expandError != nil {
		return "", expandError
	}
	absolute, absoluteError := filepath.Abs(expanded)
	if absoluteError != nil {
		return "", fmt.Errorf(errorResolveRootFormat, root, absoluteError)
	}
	return absolute, nil
}

func serveCapabilities() []api.Capability {
	return []api.Capability{
		{Name: types.CommandPreview, Description: previewCapabilityText},
		{Name: types.CommandCreate, Description: createCapabilityText},
	}
}

func (app *application) serveExecutors(root string) map[string]api.CommandExecutor {
	return map[string]api.CommandExecutor{
		types.CommandPreview: api.CommandExecutorFunc(app.executePreviewRequest),
		types.CommandCreate: api.CommandExecutorFunc(func(ctx context.Context, request api.CommandRequest) (api.CommandResponse, error) {
			return app.executeCreateRequest(ctx, root, request)
		}),
	}
}

func (app *application) executePreviewRequest(_ context.Context, request api.CommandRequest) (api.CommandResponse, error) {
	var payload previewRequest
	if decodeError := decodeRequest(request.Payload, &payload); decodeError != nil {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(errorDecodeRequestFormat, types.CommandPreview, decodeError))
	}
	previewConfiguration := app.configuration.Preview
	format := strings.ToLower(firstNonEmpty(payload.Format, previewConfiguration.Format, types.FormatRaw))
	if !isSupportedFormat(format) {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(invalidFormatMessage, format))
	}
	withSummary := firstBool(payload.Summary, previewConfiguration.Summary, true)

	parsed := parser.Parse(payload.Text)
	if parsed.IsEmpty() {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, errNoTreeEntries)
	}
	rendered, renderError := renderForest(parsed, format, withSummary)
	if renderError != nil {
		return api.CommandResponse{}, renderError
	}
	return api.CommandResponse{Output: rendered, Format: format}, nil
}

// executeCreateRequest materializes a tree below root. Entries that fail are
// returned as warnings with a successful response; only request problems and
// an unusable destination are errors.
func (app *application) executeCreateRequest(ctx context.Context, root string, request api.CommandRequest) (api.CommandResponse, error) {
	var payload createRequest
	if decodeError := decodeRequest(request.Payload, &payload); decodeError != nil {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(errorDecodeRequestFormat, types.CommandCreate, decodeError))
	}
	createConfiguration := app.configuration.Create
	format := strings.ToLower(firstNonEmpty(payload.Format, createConfiguration.Format, types.FormatRaw))
	if !isSupportedFormat(format) {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(invalidFormatMessage, format))
	}
	workers := defaultWorkers
	if payload.Workers != nil {
		workers = *payload.Workers
	} else if createConfiguration.Workers != nil {
		workers = *createConfiguration.Workers
	}
	if workers < 1 {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(errorInvalidWorkers, workers))
	}
	destination, joinError := materialize.SafeJoin(root, firstNonEmpty(payload.Destination, defaultDestination))
	if joinError != nil {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, fmt.Errorf(errorRequestDestination, payload.Destination, joinError))
	}

	parsed := parser.Parse(payload.Text)
	if parsed.IsEmpty() {
		return api.CommandResponse{}, api.Reject(http.StatusBadRequest, errNoTreeEntries)
	}

	var warnings []string
	report, materializeError := materialize.Materialize(ctx, parsed, destination, materialize.Options{
		Headers: firstBool(payload.Headers, createConfiguration.Headers, true),
		Workers: workers,
		DryRun:  firstBool(payload.DryRun, createConfiguration.DryRun, false),
		Logger:  app.dependencies.Logger.With(zap.String("request_id", api.RequestID(ctx))),
		Observer: func(entry materialize.Entry) {
			if entry.Status == materialize.StatusFailed {
				warnings = append(warnings, output.FormatProgressLine(entry))
			}
		},
	})
	if materializeError != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(materializeError, materialize.ErrDestinationUnavailable) {
			statusCode = http.StatusUnprocessableEntity
		}
		return api.CommandResponse{}, api.Reject(statusCode, fmt.Errorf(errorMaterializationFormat, materializeError))
	}

	if format == types.FormatRaw {
		return api.CommandResponse{Output: output.FormatReportSummary(report) + "\n", Format: format, Warnings: warnings}, nil
	}
	rendered, renderError := output.RenderDocument(output.BuildReportDocument(report), format)
	if renderError != nil {
		return api.CommandResponse{}, renderError
	}
	return api.CommandResponse{Output: rendered, Format: format, Warnings: warnings}, nil
}

func decodeRequest(payload []byte, target interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func firstBool(requested *bool, configured *bool, fallback bool) bool {
	if requested != nil {
		return *requested
	}
	if configured != nil {
		return *configured
	}
	return fallback
}
