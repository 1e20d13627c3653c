package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
	"github.com/ironsheep/math-ocr-mcp/internal/capture"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/export"
	"github.com/ironsheep/math-ocr-mcp/internal/imaging"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
	"github.com/ironsheep/math-ocr-mcp/internal/ocr"
	"github.com/ironsheep/math-ocr-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "math_process_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error kind.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"tool":  params.Name,
			"kind":  apperr.KindOf(err),
			"error": err.Error(),
		}).Warn("tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolErrorData{
			Kind:    apperr.KindOf(err),
			Details: err.Error(),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// toolErrorData is the data member of a failed tool call.
type toolErrorData struct {
	Kind    apperr.Kind `json:"kind"`
	Details string      `json:"details"`
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Full pipeline
	case "math_process_image":
		return s.handleProcessImage(ctx, args)
	case "math_process_screen":
		return s.handleProcessScreen(ctx, args)

	// Individual stages
	case "math_normalize_image":
		return s.handleNormalizeImage(ctx, args)
	case "math_recognize_text":
		return s.handleRecognizeText(ctx, args)
	case "math_extract_expressions":
		return s.handleExtractExpressions(args)
	case "math_convert_expression":
		return s.handleConvertExpression(ctx, args)

	// Output and diagnostics
	case "math_export":
		return s.handleExport(args)
	case "math_image_info":
		return s.handleImageInfo(args)
	case "math_ocr_info":
		return s.handleOCRInfo()

	default:
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown tool: %s", name), nil)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperr.InvalidArgument("invalid arguments", err)
	}
	return nil
}

// === Shared argument types ===

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type sourceArgs struct {
	Region    *regionArgs `json:"region"`
	Scale     float64     `json:"scale"`
	Languages string      `json:"languages"`
}

type outputArgs struct {
	ExportFormat string `json:"export_format"`
	OutputPath   string `json:"output_path"`
}

// crop narrows img to the requested region, if any.
func (a sourceArgs) crop(img image.Image) (image.Image, error) {
	if a.Region == nil {
		if a.Scale == 0 || a.Scale == 1 {
			return img, nil
		}
		b := img.Bounds()
		return imaging.Crop(img, imaging.Region{X1: b.Min.X, Y1: b.Min.Y, X2: b.Max.X, Y2: b.Max.Y}, a.Scale)
	}
	r := imaging.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	return imaging.Crop(img, r, a.Scale)
}

func (a sourceArgs) pipeline(p *pipeline.Pipeline) *pipeline.Pipeline {
	return p.WithLanguages(config.ParseLanguages(a.Languages))
}

func (s *Server) loadSource(path string, a sourceArgs) (image.Image, error) {
	if path == "" {
		return nil, apperr.InvalidArgument("path is required", nil)
	}
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	return a.crop(img)
}

// === Pipeline Handlers ===

type expressionResult struct {
	Text     string `json:"text"`
	Rule     string `json:"rule"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	LaTeX    string `json:"latex"`
	Fallback bool   `json:"fallback"`
}

type artifactInfo struct {
	Path      string `json:"path,omitempty"`
	Filename  string `json:"filename"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int    `json:"size_bytes"`
	// DataBase64 is set only when no output path was given.
	DataBase64 string `json:"data_base64,omitempty"`
}

type processResult struct {
	Text        string             `json:"text"`
	Expressions []expressionResult `json:"expressions"`
	LaTeX       string             `json:"latex"`
	Artifact    *artifactInfo      `json:"artifact,omitempty"`
}

func newProcessResult(res *pipeline.Result) *processResult {
	out := &processResult{
		Text:        res.Text,
		Expressions: make([]expressionResult, len(res.Candidates)),
		LaTeX:       res.JoinedLaTeX(),
	}
	for i, c := range res.Candidates {
		out.Expressions[i] = expressionResult{
			Text:     c.Text,
			Rule:     c.Rule,
			Start:    c.Start,
			End:      c.End,
			LaTeX:    res.Results[i].LaTeX,
			Fallback: res.Results[i].Fallback,
		}
	}
	return out
}

// packageOutput builds the artifact when a format or output path was
// requested.
func (s *Server) packageOutput(o outputArgs, text, latex string) (*artifactInfo, error) {
	if o.ExportFormat == "" && o.OutputPath == "" {
		return nil, nil
	}
	format := o.ExportFormat
	if format == "" {
		format = s.cfg.ExportFormat
	}

	artifact, err := export.PackageDocument(format, export.Document{
		Text:     text,
		LaTeX:    latex,
		Headings: s.cfg.Headings,
	})
	if err != nil {
		return nil, err
	}
	info := &artifactInfo{
		Path:      o.OutputPath,
		Filename:  artifact.Filename,
		MIMEType:  artifact.MIMEType,
		SizeBytes: len(artifact.Data),
	}
	if o.OutputPath == "" {
		info.DataBase64 = base64.StdEncoding.EncodeToString(artifact.Data)
		return info, nil
	}
	if err := artifact.WriteFile(o.OutputPath); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Server) process(ctx context.Context, img image.Image, a sourceArgs, o outputArgs) (interface{}, error) {
	res, err := a.pipeline(s.pipeline).ProcessImage(ctx, img)
	if err != nil {
		return nil, err
	}
	out := newProcessResult(res)
	if out.Artifact, err = s.packageOutput(o, res.Text, out.LaTeX); err != nil {
		return nil, err
	}
	return out, nil
}

type processImageArgs struct {
	Path string `json:"path"`
	sourceArgs
	outputArgs
}

func (s *Server) handleProcessImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadSource(a.Path, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, img, a.sourceArgs, a.outputArgs)
}

type processScreenArgs struct {
	sourceArgs
	outputArgs
}

func (s *Server) handleProcessScreen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processScreenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	shot, err := s.screen.Capture(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrUnsupportedPlatform) {
			return nil, apperr.InvalidArgument("screen capture unavailable", err)
		}
		return nil, err
	}
	img, err := a.crop(shot)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, img, a.sourceArgs, a.outputArgs)
}

// === Stage Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
	sourceArgs
}

func (s *Server) handleNormalizeImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadSource(a.Path, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	normalized, err := s.pipeline.Normalize(ctx, img)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBase64(normalized)
}

type recognizeResult struct {
	Text      string   `json:"text"`
	Languages []string `json:"languages"`
}

func (s *Server) handleRecognizeText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadSource(a.Path, a.sourceArgs)
	if err != nil {
		return nil, err
	}

	p := a.pipeline(s.pipeline)
	normalized, err := p.Normalize(ctx, img)
	if err != nil {
		return nil, err
	}
	text, err := p.Recognizer.Recognize(ctx, normalized, p.Languages)
	if err != nil {
		return nil, err
	}
	return &recognizeResult{Text: text, Languages: p.Languages}, nil
}

type extractArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleExtractExpressions(args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	candidates := s.pipeline.Extractor.Extract(a.Text)
	return map[string]interface{}{
		"count":      len(candidates),
		"candidates": candidates,
	}, nil
}

type convertArgs struct {
	Expression  string   `json:"expression"`
	Expressions []string `json:"expressions"`
}

func (s *Server) handleConvertExpression(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a convertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Expressions == nil {
		if a.Expression == "" {
			return nil, apperr.InvalidArgument("expression or expressions is required", nil)
		}
		a.Expressions = []string{a.Expression}
	}
	return map[string]interface{}{
		"results": s.pipeline.Converter.ConvertAll(ctx, a.Expressions),
	}, nil
}

type exportArgs struct {
	Text  string `json:"text"`
	LaTeX string `json:"latex"`
	outputArgs
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ExportFormat == "" {
		a.ExportFormat = s.cfg.ExportFormat
	}
	return s.packageOutput(a.outputArgs, a.Text, a.LaTeX)
}

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, apperr.InvalidArgument("path is required", nil)
	}
	return imaging.InfoFile(a.Path)
}

// engineReporter is implemented by recognizers that can describe their engine.
type engineReporter interface {
	Info() ocr.EngineInfo
}

type ocrInfoResult struct {
	Engine         *ocr.EngineInfo `json:"engine,omitempty"`
	Languages      []string        `json:"languages"`
	ScreenCapture  bool            `json:"screen_capture"`
	ExtractorRules []string        `json:"extractor_rules"`
	ExportFormat   string          `json:"export_format"`
	Version        string          `json:"version"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	out := &ocrInfoResult{
		Languages:      s.pipeline.Languages,
		ScreenCapture:  s.screen.Supported(),
		ExtractorRules: s.pipeline.Extractor.Rules(),
		ExportFormat:   s.cfg.ExportFormat,
		Version:        Version,
	}
	if r, ok := s.pipeline.Recognizer.(engineReporter); ok {
		info := r.Info()
		out.Engine = &info
	}
	return out, nil
}
