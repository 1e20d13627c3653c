package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (PNG, JPEG, GIF, HEIC or the first page of a PDF)",
	}
}

func languagesProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "OCR languages joined with '+', e.g. 'vie+eng'. Defaults to the configured languages",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional rectangle to process instead of the whole image (x2/y2 exclusive)",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor applied after cropping (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}
}

func exportFormatProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Document format for the packaged result",
		"enum":        []string{"docx", "pdf", "html"},
		"default":     "docx",
	}
}

func outputPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Where to write the document. Without it the document is returned base64-encoded",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Full pipeline
		{
			Name:        "math_process_image",
			Description: "Recognize the math in an image file: normalize it, run OCR, extract expression candidates and convert each to inline LaTeX. Optionally package the text and LaTeX as a document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty(),
					"languages":     languagesProperty(),
					"region":        regionProperty(),
					"scale":         scaleProperty(),
					"export_format": exportFormatProperty(),
					"output_path":   outputPathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "math_process_screen",
			Description: "Capture the primary display and recognize the math on it, exactly like math_process_image. Fails on platforms without screen capture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"languages":     languagesProperty(),
					"region":        regionProperty(),
					"scale":         scaleProperty(),
					"export_format": exportFormatProperty(),
					"output_path":   outputPathProperty(),
				},
			},
		},

		// Individual stages
		{
			Name:        "math_normalize_image",
			Description: "Return the black/white image handed to OCR (grayscale, CLAHE, non-local means denoise, Otsu threshold) as base64-encoded PNG. Useful to see why recognition went wrong.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
					"scale":  scaleProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "math_recognize_text",
			Description: "Normalize an image and return the raw OCR text without extracting expressions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"languages": languagesProperty(),
					"region":    regionProperty(),
					"scale":     scaleProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "math_extract_expressions",
			Description: "Find substrings of text that look like math. Every rule runs over the whole text; matches are listed in rule order and may overlap or repeat.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized text to scan",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "math_convert_expression",
			Description: "Convert one or more expressions to inline LaTeX without evaluating them. Input that cannot be parsed comes back wrapped in $...$ unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expression": map[string]interface{}{
						"type":        "string",
						"description": "A single expression, e.g. 'y = 2x + 3'",
					},
					"expressions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Several expressions; results keep their order",
					},
				},
			},
		},

		// Output and diagnostics
		{
			Name:        "math_export",
			Description: "Package recognized text and newline-separated LaTeX as a DOCX, PDF or HTML document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Original recognized text",
					},
					"latex": map[string]interface{}{
						"type":        "string",
						"description": "LaTeX results, one per line",
					},
					"export_format": exportFormatProperty(),
					"output_path":   outputPathProperty(),
				},
				"required": []string{"text", "latex"},
			},
		},
		{
			Name:        "math_image_info",
			Description: "Report an image file's dimensions, detected format, alpha channel and encoded size without processing it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "math_ocr_info",
			Description: "Report the OCR engine version, configured languages, extraction rules and whether screen capture works on this machine.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
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
