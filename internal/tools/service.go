package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/datasaur/datasaur-mcp/internal/models"
	"github.com/datasaur/datasaur-mcp/internal/relay"
	"github.com/datasaur/datasaur-mcp/internal/tabular"
	"go.uber.org/zap"
)

// Relayer is the model relay used by the tool service
type Relayer interface {
	Invoke(ctx context.Context, ep models.EndpointConfig, payload string, mode relay.Mode) relay.Result
}

// UsageRecorder counts relayed calls per endpoint
type UsageRecorder interface {
	RecordCall(endpoint, failureKind string, latency time.Duration) error
}

// Service implements the tool operations. It holds no mutable state of its own.
type Service struct {
	relay  Relayer
	cfg    *config.Config
	logger *zap.Logger
	usage  UsageRecorder
}

// NewService creates a tool service over the resolved configuration
func NewService(r Relayer, cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{relay: r, cfg: cfg, logger: logger}
}

// WithUsage records every relayed call into u
func (s *Service) WithUsage(u UsageRecorder) *Service {
	s.usage = u
	return s
}

// ConvertTabularToJSON reads a CSV file into typed rows
func (s *Service) ConvertTabularToJSON(path string) (*tabular.Table, *relay.Error) {
	s.logger.Debug("Reading CSV file", zap.String("path", path))

	table, err := tabular.Read(path)
	if err != nil {
		inputErr := classifyInputError(path, err)
		s.logger.Error("CSV conversion failed",
			zap.String("path", path),
			zap.String("kind", inputErr.Kind.String()),
			zap.Error(err))
		return nil, inputErr
	}

	s.logger.Debug("CSV converted to JSON",
		zap.String("path", path),
		zap.Int("rows", len(table.Rows)))
	return table, nil
}

// ConvertTabularToJSONText returns the rows as a JSON array, or a single-element
// array {"error": "..."} when the file cannot be read
func (s *Service) ConvertTabularToJSONText(path string) string {
	table, inputErr := s.ConvertTabularToJSON(path)
	if inputErr != nil {
		return errorRows(inputErr.Detail)
	}

	out, err := table.JSON()
	if err != nil {
		s.logger.Error("Failed to encode CSV rows", zap.String("path", path), zap.Error(err))
		return errorRows("Error encoding rows: " + err.Error())
	}
	return out
}

// RelayTabularData converts the file and forwards the rows to the CSV endpoint
func (s *Service) RelayTabularData(ctx context.Context, path string) relay.Result {
	s.logger.Debug("Processing CSV file", zap.String("path", path))

	table, inputErr := s.ConvertTabularToJSON(path)
	if inputErr != nil {
		return relay.Fail(inputErr)
	}

	payload, err := table.JSON()
	if err != nil {
		s.logger.Error("Failed to encode CSV rows", zap.String("path", path), zap.Error(err))
		return relay.Fail(&relay.Error{Kind: relay.KindInputUnreadable, Detail: "Error encoding rows: " + err.Error(), Err: err})
	}

	return s.invoke(ctx, config.CSVEndpoint, payload, relay.ModeJSON)
}

// RelayPrompt forwards prompt verbatim to the named endpoint
func (s *Service) RelayPrompt(ctx context.Context, endpoint, prompt string) relay.Result {
	s.logger.Debug("Received prompt",
		zap.String("endpoint", endpoint),
		zap.String("prompt", preview(prompt, 100)))

	return s.invoke(ctx, endpoint, prompt, relay.ModeText)
}

func (s *Service) invoke(ctx context.Context, endpoint, payload string, mode relay.Mode) relay.Result {
	start := time.Now()
	res := s.relay.Invoke(ctx, s.cfg.Endpoint(endpoint), payload, mode)

	if s.usage != nil {
		failure := ""
		if res.Err != nil {
			failure = res.Err.Kind.String()
		}
		if err := s.usage.RecordCall(endpoint, failure, time.Since(start)); err != nil {
			s.logger.Warn("Failed to record usage", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}
	return res
}

func classifyInputError(path string, err error) *relay.Error {
	switch {
	case errors.Is(err, tabular.ErrNotFound):
		return &relay.Error{Kind: relay.KindInputNotFound, Detail: "File not found at path: " + path, Err: err}
	case errors.Is(err, tabular.ErrNotAFile):
		return &relay.Error{Kind: relay.KindInputNotAFile, Detail: "Path is not a file: " + path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &relay.Error{Kind: relay.KindInputUnreadable, Detail: "Permission denied: " + path, Err: err}
	}

	cause := err
	var pathErr *tabular.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		cause = pathErr.Err
	}
	return &relay.Error{Kind: relay.KindInputUnreadable, Detail: "Error reading file: " + cause.Error(), Err: err}
}

func errorRows(detail string) string {
	data, err := json.Marshal([]map[string]string{{"error": detail}})
	if err != nil {
		return `[{"error":"unknown error"}]`
	}
	return string(data)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
