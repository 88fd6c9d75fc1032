package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/ironsheep/patch-features-mcp/internal/pipeline"
	"github.com/ironsheep/patch-features-mcp/internal/scan"
	"github.com/pkg/errors"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "feature_extract").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Info("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Images
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Streams
	case "stream_open":
		return s.handleStreamOpen(args)
	case "stream_push":
		return s.handleStreamPush(args)
	case "stream_close":
		return s.handleStreamClose(args)

	// Features
	case "feature_kinds":
		return s.handleFeatureKinds()
	case "feature_extract":
		return s.handleFeatureExtract(args)
	case "feature_scan":
		return s.handleFeatureScan(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// unmarshalArgs decodes tool arguments; absent arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload,omitempty"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		if _, err := s.cache.Reload(a.Path); err != nil {
			return nil, err
		}
		s.resetFileStream(a.Path)
	}
	return imaging.Describe(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.Dimensions(s.cache, a.Path)
}

// === Stream Handlers ===

type streamArgs struct {
	StreamID string `json:"stream_id"`
	Path     string `json:"path,omitempty"`
}

type streamResult struct {
	StreamID string `json:"stream_id"`
	Version  uint64 `json:"version"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (s *Server) handleStreamOpen(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	st := s.openStream()
	if a.Path == "" {
		return &streamResult{StreamID: st.id}, nil
	}
	res, err := s.push(st, a.Path)
	if err != nil {
		_ = s.closeStream(st.id)
		return nil, err
	}
	return res, nil
}

func (s *Server) handleStreamPush(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	st, err := s.lookupStream(a.StreamID)
	if err != nil {
		return nil, err
	}
	return s.push(st, a.Path)
}

// push decodes path afresh and publishes it as the next frame of st.
func (s *Server) push(st *stream, path string) (*streamResult, error) {
	img, err := s.cache.Reload(path)
	if err != nil {
		return nil, err
	}
	version := st.image.SetImage(img)
	s.log.WithField("stream", st.id).WithField("version", version).Debug("frame pushed")
	b := img.Bounds()
	return &streamResult{StreamID: st.id, Version: version, Width: b.Dx(), Height: b.Dy()}, nil
}

func (s *Server) handleStreamClose(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.closeStream(a.StreamID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"stream_id": a.StreamID, "closed": true}, nil
}

// === Feature Handlers ===

func (s *Server) handleFeatureKinds() (interface{}, error) {
	return map[string]interface{}{"kinds": pipeline.Kinds()}, nil
}

type window struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type featureExtractArgs struct {
	StreamID  string                   `json:"stream_id,omitempty"`
	Path      string                   `json:"path,omitempty"`
	Extractor pipeline.ExtractorConfig `json:"extractor"`
	Patches   []window                 `json:"patches"`
}

type extractedPatch struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Available bool      `json:"available"`
	Features  []float64 `json:"features,omitempty"`
}

type featureExtractResult struct {
	Version uint64           `json:"version"`
	Patches []extractedPatch `json:"patches"`
}

func (s *Server) handleFeatureExtract(args json.RawMessage) (interface{}, error) {
	var a featureExtractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Patches) == 0 {
		return nil, errors.New("at least one patch is required")
	}
	st, err := s.resolve(a.StreamID, a.Path)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	e, version, err := s.extractor(st, a.Extractor)
	if err != nil {
		return nil, err
	}

	res := &featureExtractResult{
		Version: version,
		Patches: make([]extractedPatch, len(a.Patches)),
	}
	for i, w := range a.Patches {
		out := extractedPatch{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
		if p, ok := e.Extract(w.X, w.Y, w.Width, w.Height); ok {
			out.Available = true
			out.Features = p.Vector()
		}
		res.Patches[i] = out
	}
	return res, nil
}

type featureScanArgs struct {
	StreamID  string                   `json:"stream_id,omitempty"`
	Path      string                   `json:"path,omitempty"`
	Extractor pipeline.ExtractorConfig `json:"extractor"`
	Sizes     []scan.Size              `json:"sizes"`
	Step      int                      `json:"step"`
	Workers   int                      `json:"workers,omitempty"`
	Limit     int                      `json:"limit,omitempty"`
}

func (s *Server) handleFeatureScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a featureScanArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Workers <= 0 {
		a.Workers = s.cfg.ScanWorkers
	}
	if a.Limit <= 0 || a.Limit > s.cfg.MaxScanResults {
		a.Limit = s.cfg.MaxScanResults
	}
	if a.Step <= 0 && len(a.Sizes) > 0 {
		a.Step = defaultStep(a.Sizes)
	}

	st, err := s.resolve(a.StreamID, a.Path)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sn, err := s.scanner(st, a.Extractor, scan.Config{
		Sizes:   a.Sizes,
		Step:    a.Step,
		Workers: a.Workers,
		Limit:   a.Limit,
	})
	if err != nil {
		return nil, err
	}
	return sn.Scan(ctx, st.image)
}

// defaultStep is a quarter of the smallest window side, at least 1.
func defaultStep(sizes []scan.Size) int {
	step := 0
	for _, sz := range sizes {
		for _, v := range []int{sz.Width, sz.Height} {
			if v > 0 && (step == 0 || v < step) {
				step = v
			}
		}
	}
	if step < 4 {
		return 1
	}
	return step / 4
}
