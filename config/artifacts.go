package config

import "fmt"

// ArtifactsConfig locates the trained model bundle.
type ArtifactsConfig struct {
	// Dir is the directory holding metadata.json, models.json and
	// scalers.json.
	Dir string `json:"dir"`
	// AllowPartialFeatures opts into NaN substitution for feature columns
	// the builder cannot populate, instead of failing the prediction.
	AllowPartialFeatures bool `json:"allow_partial_features"`
}

// Validate checks mandatory fields.
func (c ArtifactsConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("artifacts dir is required")
	}
	return nil
}
