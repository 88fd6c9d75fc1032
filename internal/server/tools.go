package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Images
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and depth. The decoded image stays cached for later feature queries by path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Decode the file again even if it is cached (default false)",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Streams
		{
			Name:        "stream_open",
			Description: "Open a frame stream and return its handle. Extractor trees queried against a stream keep their caches until the next frame is pushed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional first frame",
					},
				},
			},
		},
		{
			Name:        "stream_push",
			Description: "Decode an image file and publish it as the next frame of a stream. Returns the new frame version.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream_id": streamIDProperty(),
					"path":      pathProperty(),
				},
				"required": []string{"stream_id", "path"},
			},
		},
		{
			Name:        "stream_close",
			Description: "Close a stream and drop its frames and extractor trees.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream_id": streamIDProperty(),
				},
				"required": []string{"stream_id"},
			},
		},

		// Features
		{
			Name:        "feature_kinds",
			Description: "List the extractor kinds, with their parameters, that feature_extract and feature_scan accept.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "feature_extract",
			Description: "Compute feature vectors for patches of a stream's current frame or of an image file. Patches are given by center and size; a patch that cannot be extracted (outside the image, no matching scale) is reported with available=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream_id": streamIDProperty(),
					"path":      imageSourcePathProperty(),
					"extractor": extractorProperty(),
					"patches": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":      map[string]interface{}{"type": "integer", "description": "Center X"},
								"y":      map[string]interface{}{"type": "integer", "description": "Center Y"},
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y", "width", "height"},
						},
						"description": "Patches to extract",
					},
				},
				"required": []string{"extractor", "patches"},
			},
		},
		{
			Name:        "feature_scan",
			Description: "Slide windows of the given sizes over the whole image and extract a patch at every position. Results come back in scan order: size by size, rows top to bottom, left to right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream_id": streamIDProperty(),
					"path":      imageSourcePathProperty(),
					"extractor": extractorProperty(),
					"sizes": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"width", "height"},
						},
						"description": "Window sizes to scan",
					},
					"step": map[string]interface{}{
						"type":        "integer",
						"description": "Distance between window centers in pixels (default a quarter of the smallest window side)",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Parallel extractor trees (default from server configuration)",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum patches returned (capped by server configuration)",
					},
				},
				"required": []string{"extractor", "sizes"},
			},
		},
	}
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func imageSourcePathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file, used when stream_id is not given",
	}
}

func streamIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Handle returned by stream_open",
	}
}

func extractorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": `Extractor tree, e.g. {"kind":"direct","width":8,"height":8} or {"kind":"filter","vector_filters":[{"kind":"l2"}],"base":{"kind":"gradient","cells_x":4,"cells_y":4,"bins":9}}. See feature_kinds.`,
		"properties": map[string]interface{}{
			"kind": map[string]interface{}{
				"type": "string",
				"enum": []string{"direct", "pyramid", "gradient", "color", "hash", "text", "chain", "filter", "combined", "memo"},
			},
		},
		"required": []string{"kind"},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
