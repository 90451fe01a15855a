package predict

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Artifact file names within the bundle directory, produced by the offline
// training pipeline.
const (
	metadataFile = "metadata.json"
	modelsFile   = "models.json"
	scalersFile  = "scalers.json"
)

// Meta describes one pollutant's trained model: the exact ordered feature
// schema it expects and whether its target was log-transformed.
type Meta struct {
	FeatureCols      []string `json:"feature_cols"`
	IsLogTransformed bool     `json:"is_log_transformed"`
}

type artifactError struct {
	pollutant string
	msg       string
}

func (e *artifactError) Error() string {
	return fmt.Sprintf("artifact for %s: %s", e.pollutant, e.msg)
}

// Bundle is the immutable set of trained artifacts: one model, one metadata
// entry and one fitted scaler per pollutant, plus the feature plans resolved
// from the metadata. A loaded bundle is read-only and safe for concurrent
// use.
type Bundle struct {
	meta    map[string]Meta
	models  map[string]*LinearModel
	scalers map[string]*MinMaxScaler
	plans   map[string][]featureSpec
}

// LoadBundle reads metadata.json, models.json and scalers.json from dir and
// validates their mutual consistency. Any absent or malformed file, or any
// shape mismatch between a model and its declared feature schema, is a fatal
// startup error.
func LoadBundle(dir string) (*Bundle, error) {
	b := &Bundle{plans: make(map[string][]featureSpec)}
	if err := readJSON(filepath.Join(dir, metadataFile), &b.meta); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, modelsFile), &b.models); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, scalersFile), &b.scalers); err != nil {
		return nil, err
	}

	for pollutant, meta := range b.meta {
		m, ok := b.models[pollutant]
		if !ok {
			return nil, &artifactError{pollutant, "no model entry"}
		}
		if len(m.Coefficients) != len(meta.FeatureCols) {
			return nil, &artifactError{pollutant, fmt.Sprintf(
				"model has %d coefficients, metadata declares %d feature columns",
				len(m.Coefficients), len(meta.FeatureCols))}
		}
		s, ok := b.scalers[pollutant]
		if !ok {
			return nil, &artifactError{pollutant, "no scaler entry"}
		}
		if err := s.validate(pollutant); err != nil {
			return nil, err
		}
		plan := make([]featureSpec, len(meta.FeatureCols))
		for i, col := range meta.FeatureCols {
			spec, err := classifyFeature(col)
			if err != nil {
				return nil, &artifactError{pollutant, err.Error()}
			}
			plan[i] = spec
		}
		b.plans[pollutant] = plan
	}
	return b, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Pollutants returns the pollutant names covered by the bundle, sorted.
func (b *Bundle) Pollutants() []string {
	out := make([]string, 0, len(b.meta))
	for p := range b.meta {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FeatureColumns returns the ordered feature schema of a pollutant's model,
// or nil if the pollutant is not in the bundle.
func (b *Bundle) FeatureColumns(pollutant string) []string {
	meta, ok := b.meta[pollutant]
	if !ok {
		return nil
	}
	out := make([]string, len(meta.FeatureCols))
	copy(out, meta.FeatureCols)
	return out
}
