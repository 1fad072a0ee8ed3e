package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ConvertToolName is the standalone CSV conversion tool
const ConvertToolName = "convert_csv_to_json"

const convertDescription = "Reads a CSV file from the specified file path and converts it to a JSON-like list of dicts. Provide the full path to the CSV file as a string."

type filePathArgs struct {
	FilePath *string `json:"file_path"`
}

type promptArgs struct {
	Prompt *string `json:"prompt"`
}

// Register adds the conversion tool, the CSV relay tool and one call_* tool per
// prompt endpoint to server
func (s *Service) Register(server *mcp.Server) {
	server.AddTool(&mcp.Tool{
		Name:        ConvertToolName,
		Description: convertDescription,
		InputSchema: stringArgSchema("file_path", "Full path to the CSV file."),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := decodeFilePath(req)
		if err != nil {
			return nil, err
		}
		return textResult(s.ConvertTabularToJSONText(path)), nil
	})

	csv := config.CSVSpec()
	server.AddTool(&mcp.Tool{
		Name:        csv.Tool,
		Description: csv.Description,
		InputSchema: stringArgSchema("file_path", csv.ArgHelp),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := decodeFilePath(req)
		if err != nil {
			return nil, err
		}
		return textResult(s.RelayTabularData(ctx, path).String()), nil
	})

	for _, spec := range config.PromptSpecs() {
		name := spec.Name
		server.AddTool(&mcp.Tool{
			Name:        spec.Tool,
			Description: spec.Description,
			InputSchema: stringArgSchema("prompt", spec.ArgHelp),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			prompt, err := decodePrompt(req)
			if err != nil {
				return nil, err
			}
			return textResult(s.RelayPrompt(ctx, name, prompt).String()), nil
		})
	}

	s.logger.Debug("Registered tools", zap.Int("count", len(config.PromptSpecs())+2))
}

func stringArgSchema(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []any{name},
	}
}

func decodeFilePath(req *mcp.CallToolRequest) (string, error) {
	var args filePathArgs
	if err := decodeArgs(req, &args); err != nil {
		return "", err
	}
	if args.FilePath == nil {
		return "", fmt.Errorf("missing required argument: file_path")
	}
	return *args.FilePath, nil
}

func decodePrompt(req *mcp.CallToolRequest) (string, error) {
	var args promptArgs
	if err := decodeArgs(req, &args); err != nil {
		return "", err
	}
	if args.Prompt == nil {
		return "", fmt.Errorf("missing required argument: prompt")
	}
	return *args.Prompt, nil
}

func decodeArgs(req *mcp.CallToolRequest, dest any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dest); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
