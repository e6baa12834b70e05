// Package mcp hosts the documentation tools behind the Model Context Protocol.
package mcp

import (
	"fmt"

	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

// ToolsSettings captures runtime configuration for enabling or disabling individual MCP tools.
type ToolsSettings struct {
	ReadDocumentationEnabled    bool
	SearchDocumentationEnabled  bool
	RecommendEnabled            bool
	GetAvailableServicesEnabled bool
}

// AllToolsEnabled returns settings with every tool switched on.
func AllToolsEnabled() ToolsSettings {
	return ToolsSettings{
		ReadDocumentationEnabled:    true,
		SearchDocumentationEnabled:  true,
		RecommendEnabled:            true,
		GetAvailableServicesEnabled: true,
	}
}

// ToolEnabledKey is the configuration key toggling tool.
func ToolEnabledKey(tool string) string {
	return fmt.Sprintf("settings.mcp.tools.%s.enabled", tool)
}

// LoadToolsSettingsFromConfig reads the MCP tools configuration.
// Tools are enabled unless explicitly disabled.
func LoadToolsSettingsFromConfig() ToolsSettings {
	return ToolsSettings{
		ReadDocumentationEnabled:    boolFromConfig(ToolEnabledKey(docs.ToolReadDocumentation), true),
		SearchDocumentationEnabled:  boolFromConfig(ToolEnabledKey(docs.ToolSearchDocumentation), true),
		RecommendEnabled:            boolFromConfig(ToolEnabledKey(docs.ToolRecommend), true),
		GetAvailableServicesEnabled: boolFromConfig(ToolEnabledKey(docs.ToolGetAvailableServices), true),
	}
}

// Enabled reports whether tool is switched on.
func (s ToolsSettings) Enabled(tool string) bool {
	switch tool {
	case docs.ToolReadDocumentation:
		return s.ReadDocumentationEnabled
	case docs.ToolSearchDocumentation:
		return s.SearchDocumentationEnabled
	case docs.ToolRecommend:
		return s.RecommendEnabled
	case docs.ToolGetAvailableServices:
		return s.GetAvailableServicesEnabled
	default:
		return false
	}
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
