package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

var bashStyleRegex = regexp.MustCompile(`\$\{?[A-Z_][A-Z0-9_]*\}?`)

// ValidateFile validates a config file structure without requiring env vars
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ValidateBytes(data), nil
}

// ValidateBytes validates raw config JSON without resolving env vars
func ValidateBytes(data []byte) *ValidationResult {
	result := &ValidationResult{}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
		})
		return result
	}

	checkBashStyleSyntax(rawConfig, "", result)

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("version field is required. Hint: Add \"version\": %q", SupportedVersion),
		})
	} else if version != SupportedVersion {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("unsupported version '%s' - use '%s'", version, SupportedVersion),
		})
	}

	validateServerStructure(rawConfig, result)
	validateAuthStructure(rawConfig, result)
	validateStorageStructure(rawConfig, result)

	return result
}

func validateServerStructure(rawConfig map[string]any, result *ValidationResult) {
	server, ok := rawConfig["server"].(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server",
			Message: "server field is required and must be an object",
		})
		return
	}

	if _, ok := server["baseURL"]; !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server.baseURL",
			Message: "baseURL is required. Example: \"https://admin.shop.example\"",
		})
	}
}

func validateAuthStructure(rawConfig map[string]any, result *ValidationResult) {
	auth, ok := rawConfig["auth"].(map[string]any)
	if !ok {
		result.Warnings = append(result.Warnings, ValidationError{
			Path:    "auth",
			Message: "no auth section: every protected route will answer 401",
		})
		return
	}

	for _, name := range secretFields {
		value, exists := auth[name]
		if !exists {
			continue
		}
		refMap, isMap := value.(map[string]any)
		if !isMap {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth." + name,
				Message: fmt.Sprintf("%s must use {\"$env\": \"VAR_NAME\"} format", name),
			})
			continue
		}
		if _, hasEnv := refMap["$env"]; !hasEnv {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth." + name,
				Message: fmt.Sprintf("%s must use {\"$env\": \"VAR_NAME\"} format", name),
			})
		}
	}

	for _, name := range []string{"googleClientId", "googleClientSecret", "googleRedirectUri", "sessionSecret"} {
		if _, exists := auth[name]; !exists {
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    "auth." + name,
				Message: fmt.Sprintf("%s is not set: Google login will be unavailable", name),
			})
		}
	}

	for _, name := range []string{"sessionTtl", "upstreamTimeout"} {
		value, exists := auth[name]
		if !exists {
			continue
		}
		str, isString := value.(string)
		if !isString {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth." + name,
				Message: "must be a duration string. Example: \"168h\"",
			})
			continue
		}
		if _, err := time.ParseDuration(str); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth." + name,
				Message: fmt.Sprintf("invalid duration %q: %v", str, err),
			})
		}
	}

	if mode, ok := auth["identityVerification"].(string); ok {
		if mode != string(IdentityVerificationTokenInfo) && mode != string(IdentityVerificationJWKS) {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth.identityVerification",
				Message: fmt.Sprintf("unknown mode '%s' - use 'tokeninfo' or 'jwks'", mode),
			})
		}
	}

	if landing, ok := auth["landingPath"].(string); ok {
		if !strings.HasPrefix(landing, "/") || strings.HasPrefix(landing, "//") {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "auth.landingPath",
				Message: "landingPath must start with a single '/'",
			})
		}
	}
}

func validateStorageStructure(rawConfig map[string]any, result *ValidationResult) {
	storage, ok := rawConfig["storage"].(map[string]any)
	if !ok {
		return
	}

	kind, _ := storage["kind"].(string)
	switch StorageKind(kind) {
	case "", StorageKindMemory:
	case StorageKindFirestore:
		if _, ok := storage["gcpProject"]; !ok {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "storage.gcpProject",
				Message: "gcpProject is required when using firestore storage",
			})
		}
	default:
		result.Errors = append(result.Errors, ValidationError{
			Path:    "storage.kind",
			Message: fmt.Sprintf("unknown storage kind '%s' - use 'memory' or 'firestore'", kind),
		})
	}
}

func checkBashStyleSyntax(value any, path string, result *ValidationResult) {
	switch v := value.(type) {
	case string:
		for _, match := range bashStyleRegex.FindAllString(v, -1) {
			varName := strings.Trim(match, "${}")
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead", match, varName),
			})
		}
	case map[string]any:
		// Skip if this is already an env ref
		if _, hasEnv := v["$env"]; hasEnv {
			return
		}
		for key, val := range v {
			newPath := key
			if path != "" {
				newPath = path + "." + key
			}
			checkBashStyleSyntax(val, newPath, result)
		}
	case []any:
		for i, item := range v {
			checkBashStyleSyntax(item, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}
