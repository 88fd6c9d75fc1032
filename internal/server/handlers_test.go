package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ironsheep/patch-features-mcp/internal/scan"
)

// createTestImageFile writes a PNG whose pixels come from fill and returns
// its path.
func createTestImageFile(t *testing.T, name string, width, height int, fill func(x, y int) color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func solid(c color.Color) func(x, y int) color.Color {
	return func(int, int) color.Color { return c }
}

func ramp(x, y int) color.Color {
	v := uint8((x*3 + y*2) % 256)
	return color.RGBA{R: v, G: 255 - v, B: uint8(x % 256), A: 255}
}

// callTool runs a tools/call request and returns the raw response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// mustCallTool runs a tool that must succeed and decodes its result into v.
func mustCallTool(t *testing.T, s *Server, name string, args, v interface{}) {
	t.Helper()
	resp := callTool(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %+v", name, resp.Error)
	}
	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("%s: unexpected content %v", name, content)
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("%s: decode result: %v", name, err)
	}
}

// toolError runs a tool that must fail and returns the error.
func toolError(t *testing.T, s *Server, name string, args interface{}) *MCPError {
	t.Helper()
	resp := callTool(t, s, name, args)
	if resp.Error == nil {
		t.Fatalf("%s: expected an error, got %v", name, resp.Result)
	}
	return resp.Error
}

type extractResult struct {
	Version uint64 `json:"version"`
	Patches []struct {
		X         int       `json:"x"`
		Y         int       `json:"y"`
		Available bool      `json:"available"`
		Features  []float64 `json:"features"`
	} `json:"patches"`
}

type scanResult struct {
	Patches []struct {
		X        int       `json:"x"`
		Y        int       `json:"y"`
		Width    int       `json:"width"`
		Features []float64 `json:"features"`
	} `json:"patches"`
	Windows   int    `json:"windows"`
	Truncated bool   `json:"truncated"`
	Version   uint64 `json:"version"`
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "red.png", 100, 80, solid(color.RGBA{255, 0, 0, 255}))

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": path}, &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "green.png", 200, 150, solid(color.RGBA{0, 255, 0, 255}))

	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	mustCallTool(t, s, "image_dimensions", map[string]interface{}{"path": path}, &size)

	if size.Width != 200 || size.Height != 150 {
		t.Errorf("size: got %dx%d, want 200x150", size.Width, size.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	err := toolError(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	if err.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", err.Code)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	err := toolError(t, s, "image_crop", map[string]interface{}{})
	if err.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", err.Code)
	}
	if !strings.Contains(err.Data.(string), "unknown tool") {
		t.Errorf("Data: got %v", err.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := newTestServer(t)
	// No arguments decode as {}, so the path is empty and loading fails.
	err := toolError(t, s, "image_load", nil)
	if err.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", err.Code)
	}
}

func TestHandleToolsCall_FeatureKinds(t *testing.T) {
	s := newTestServer(t)
	var res struct {
		Kinds []struct {
			Kind string `json:"kind"`
		} `json:"kinds"`
	}
	mustCallTool(t, s, "feature_kinds", nil, &res)
	if len(res.Kinds) != 10 {
		t.Errorf("got %d kinds, want 10", len(res.Kinds))
	}
}

func TestHandleToolsCall_StreamLifecycle(t *testing.T) {
	s := newTestServer(t)
	first := createTestImageFile(t, "a.png", 64, 64, ramp)
	second := createTestImageFile(t, "b.png", 64, 64, solid(color.Gray{Y: 90}))

	var opened struct {
		StreamID string `json:"stream_id"`
		Version  uint64 `json:"version"`
	}
	mustCallTool(t, s, "stream_open", nil, &opened)
	if _, err := uuid.Parse(opened.StreamID); err != nil {
		t.Fatalf("stream_id %q is not a UUID: %v", opened.StreamID, err)
	}
	if opened.Version != 0 {
		t.Errorf("new stream version: got %d, want 0", opened.Version)
	}

	extractor := map[string]interface{}{"kind": "direct", "width": 4, "height": 4}
	query := map[string]interface{}{
		"stream_id": opened.StreamID,
		"extractor": extractor,
		"patches":   []map[string]int{{"x": 32, "y": 32, "width": 16, "height": 16}},
	}

	// No frame yet: nothing is extractable.
	var empty extractResult
	mustCallTool(t, s, "feature_extract", query, &empty)
	if empty.Patches[0].Available {
		t.Error("patch should be unavailable before the first frame")
	}

	var pushed struct {
		Version uint64 `json:"version"`
		Width   int    `json:"width"`
	}
	mustCallTool(t, s, "stream_push", map[string]interface{}{"stream_id": opened.StreamID, "path": first}, &pushed)
	if pushed.Version != 1 || pushed.Width != 64 {
		t.Errorf("push: got version %d width %d", pushed.Version, pushed.Width)
	}

	var a extractResult
	mustCallTool(t, s, "feature_extract", query, &a)
	if a.Version != 1 || !a.Patches[0].Available || len(a.Patches[0].Features) != 16 {
		t.Fatalf("extract after first frame: %+v", a)
	}

	mustCallTool(t, s, "stream_push", map[string]interface{}{"stream_id": opened.StreamID, "path": second}, &pushed)
	if pushed.Version != 2 {
		t.Errorf("second push: got version %d, want 2", pushed.Version)
	}

	var b extractResult
	mustCallTool(t, s, "feature_extract", query, &b)
	if b.Version != 2 {
		t.Errorf("extract version: got %d, want 2", b.Version)
	}
	for i, v := range b.Patches[0].Features {
		if diff := v - 90.0/255; diff > 1.5/255 || diff < -1.5/255 {
			t.Fatalf("feature %d: got %v, want %v (stale frame?)", i, v, 90.0/255)
		}
	}

	st, err := s.lookupStream(opened.StreamID)
	if err != nil {
		t.Fatal(err)
	}
	if st.extractors.Len() != 1 {
		t.Errorf("extractor trees: got %d, want 1 (reused across calls)", st.extractors.Len())
	}

	mustCallTool(t, s, "stream_close", map[string]interface{}{"stream_id": opened.StreamID}, nil)
	toolError(t, s, "stream_push", map[string]interface{}{"stream_id": opened.StreamID, "path": first})
	toolError(t, s, "stream_close", map[string]interface{}{"stream_id": opened.StreamID})
}

func TestHandleToolsCall_StreamOpenWithPath(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "a.png", 40, 30, ramp)

	var opened struct {
		StreamID string `json:"stream_id"`
		Version  uint64 `json:"version"`
		Height   int    `json:"height"`
	}
	mustCallTool(t, s, "stream_open", map[string]interface{}{"path": path}, &opened)
	if opened.Version != 1 || opened.Height != 30 {
		t.Errorf("open: got %+v", opened)
	}

	toolError(t, s, "stream_open", map[string]interface{}{"path": "/nonexistent.png"})
	if n := len(s.streams); n != 1 {
		t.Errorf("failed open should not leave a stream behind, have %d", n)
	}
}

func TestHandleToolsCall_StreamPushRequiresPath(t *testing.T) {
	s := newTestServer(t)
	var opened struct {
		StreamID string `json:"stream_id"`
	}
	mustCallTool(t, s, "stream_open", nil, &opened)
	toolError(t, s, "stream_push", map[string]interface{}{"stream_id": opened.StreamID})
}

func TestHandleToolsCall_FeatureExtractByPath(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "ramp.png", 64, 48, ramp)

	var res extractResult
	mustCallTool(t, s, "feature_extract", map[string]interface{}{
		"path": path,
		"extractor": map[string]interface{}{
			"kind":           "filter",
			"vector_filters": []map[string]interface{}{{"kind": "l2"}},
			"base":           map[string]interface{}{"kind": "gradient", "cells_x": 2, "cells_y": 2, "bins": 9},
		},
		"patches": []map[string]int{
			{"x": 32, "y": 24, "width": 16, "height": 16},
			{"x": 2, "y": 2, "width": 16, "height": 16},
			{"x": 32, "y": 24, "width": 0, "height": 16},
		},
	}, &res)

	if len(res.Patches) != 3 {
		t.Fatalf("got %d patches, want 3", len(res.Patches))
	}
	if !res.Patches[0].Available || len(res.Patches[0].Features) != 36 {
		t.Errorf("inside patch: %+v", res.Patches[0])
	}
	if res.Patches[1].Available || res.Patches[1].Features != nil {
		t.Errorf("patch crossing the border should be unavailable: %+v", res.Patches[1])
	}
	if res.Patches[2].Available {
		t.Error("zero-width patch should be unavailable")
	}
	if res.Version != 1 {
		t.Errorf("file stream version: got %d, want 1", res.Version)
	}
}

func TestHandleToolsCall_FeatureExtractFollowsReload(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	src := createTestImageFile(t, "src.png", 32, 32, solid(color.Gray{Y: 10}))
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	query := map[string]interface{}{
		"path":      path,
		"extractor": map[string]interface{}{"kind": "direct", "width": 1, "height": 1},
		"patches":   []map[string]int{{"x": 16, "y": 16, "width": 8, "height": 8}},
	}
	var before extractResult
	mustCallTool(t, s, "feature_extract", query, &before)

	// Overwrite the file and reload it through the cache.
	next := createTestImageFile(t, "next.png", 32, 32, solid(color.Gray{Y: 200}))
	data, err = os.ReadFile(next)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": path, "reload": true}, nil)

	var after extractResult
	mustCallTool(t, s, "feature_extract", query, &after)

	if after.Version != before.Version+1 {
		t.Errorf("version: got %d, want %d", after.Version, before.Version+1)
	}
	if after.Patches[0].Features[0] <= before.Patches[0].Features[0] {
		t.Errorf("features should follow the new frame: before %v after %v", before.Patches[0].Features, after.Patches[0].Features)
	}
}

func TestHandleToolsCall_FeatureExtractErrors(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "a.png", 32, 32, ramp)
	patches := []map[string]int{{"x": 16, "y": 16, "width": 8, "height": 8}}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no source", map[string]interface{}{"extractor": map[string]interface{}{"kind": "direct", "width": 2, "height": 2}, "patches": patches}},
		{"unknown stream", map[string]interface{}{"stream_id": "nope", "extractor": map[string]interface{}{"kind": "direct", "width": 2, "height": 2}, "patches": patches}},
		{"unknown kind", map[string]interface{}{"path": path, "extractor": map[string]interface{}{"kind": "sift"}, "patches": patches}},
		{"invalid extractor", map[string]interface{}{"path": path, "extractor": map[string]interface{}{"kind": "hash", "hash_size": 5}, "patches": patches}},
		{"no patches", map[string]interface{}{"path": path, "extractor": map[string]interface{}{"kind": "direct", "width": 2, "height": 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toolError(t, s, "feature_extract", tt.args)
		})
	}
}

func TestHandleToolsCall_FeatureScan(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "ramp.png", 64, 64, ramp)

	var res scanResult
	mustCallTool(t, s, "feature_scan", map[string]interface{}{
		"path":      path,
		"extractor": map[string]interface{}{"kind": "color", "hue_bins": 6},
		"sizes":     []map[string]int{{"width": 16, "height": 16}},
		"step":      8,
	}, &res)

	if res.Windows != 49 || len(res.Patches) != 49 {
		t.Fatalf("got %d windows and %d patches, want 49", res.Windows, len(res.Patches))
	}
	if res.Truncated {
		t.Error("scan should not be truncated")
	}
	if res.Patches[0].X != 8 || res.Patches[0].Y != 8 || res.Patches[48].X != 56 || res.Patches[48].Y != 56 {
		t.Errorf("scan order: first (%d,%d) last (%d,%d)", res.Patches[0].X, res.Patches[0].Y, res.Patches[48].X, res.Patches[48].Y)
	}
	if len(res.Patches[0].Features) != 6 {
		t.Errorf("feature length: got %d, want 6", len(res.Patches[0].Features))
	}
}

func TestHandleToolsCall_FeatureScanLimitAndDefaultStep(t *testing.T) {
	s := newTestServer(t)
	s.cfg.MaxScanResults = 5
	path := createTestImageFile(t, "ramp.png", 32, 32, ramp)

	var res scanResult
	mustCallTool(t, s, "feature_scan", map[string]interface{}{
		"path":      path,
		"extractor": map[string]interface{}{"kind": "direct", "width": 2, "height": 2},
		"sizes":     []map[string]int{{"width": 16, "height": 16}},
		"limit":     100,
	}, &res)

	// Default step 4: centers 8, 12, ..., 24 on both axes.
	if res.Windows != 25 {
		t.Errorf("windows: got %d, want 25", res.Windows)
	}
	if len(res.Patches) != 5 || !res.Truncated {
		t.Errorf("limit: got %d patches, truncated=%v", len(res.Patches), res.Truncated)
	}
}

func TestHandleToolsCall_FeatureScanErrors(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "a.png", 32, 32, ramp)

	toolError(t, s, "feature_scan", map[string]interface{}{
		"path":      path,
		"extractor": map[string]interface{}{"kind": "direct", "width": 2, "height": 2},
	})
	toolError(t, s, "feature_scan", map[string]interface{}{
		"path":      path,
		"extractor": map[string]interface{}{"kind": "pyramid", "width": 4, "height": 4},
		"sizes":     []map[string]int{{"width": 8, "height": 8}},
	})
}

func TestDefaultStep(t *testing.T) {
	tests := []struct {
		sizes []struct{ w, h int }
		want  int
	}{
		{[]struct{ w, h int }{{16, 16}}, 4},
		{[]struct{ w, h int }{{32, 24}, {64, 64}}, 6},
		{[]struct{ w, h int }{{3, 3}}, 1},
	}
	for _, tt := range tests {
		var sizes []scan.Size
		for _, s := range tt.sizes {
			sizes = append(sizes, scan.Size{Width: s.w, Height: s.h})
		}
		if got := defaultStep(sizes); got != tt.want {
			t.Errorf("defaultStep(%v) = %d, want %d", tt.sizes, got, tt.want)
		}
	}
}
