package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/tvaroska/teval/rubric"
)

// Loader parses, validates, and compiles rubric definition files,
// caching compiled rubrics by content hash so repeated loads of the
// same definition are free.
type Loader struct {
	// validator performs struct field validation plus the custom
	// criterion-id rule for rubric definitions.
	validator *validator.Validate
	// cache stores compiled rubrics indexed by SHA256 hash of the
	// normalized definition. Cached rubrics are immutable and shared.
	cache   map[string]*rubric.Rubric
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines
	// request the same definition simultaneously.
	sf singleflight.Group
}

// NewLoader creates a loader with an empty cache and the custom
// validators registered.
func NewLoader() (*Loader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Loader{
		validator: v,
		cache:     make(map[string]*rubric.Rubric),
	}, nil
}

// LoadFromFile loads and compiles a rubric definition from a YAML
// file. Identical definitions are served from the cache.
func (l *Loader) LoadFromFile(path string) (*rubric.Rubric, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.load(data)
}

// LoadFromReader loads and compiles a rubric definition from any
// reader, applying the same validation and caching as LoadFromFile.
func (l *Loader) LoadFromReader(r io.Reader) (*rubric.Rubric, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return l.load(data)
}

// load is the common implementation behind the Load entry points.
func (l *Loader) load(data []byte) (*rubric.Rubric, error) {
	// Parse first so the hash covers the normalized definition, not
	// whitespace or key ordering.
	file, err := l.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := l.definitionHash(file)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		// Re-check inside singleflight to close the race between the
		// cache lookup and group execution.
		if r, ok := l.cachedRubric(hash); ok {
			return r, nil
		}

		if err := l.validateFile(file); err != nil {
			return nil, err
		}

		r, err := Build(file.Rubric)
		if err != nil {
			return nil, err
		}

		l.cacheRubric(hash, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*rubric.Rubric), nil
}

// Build compiles a parsed rubric definition into a rubric value. The
// rubric constructor re-validates the complete invariant set, so Build
// is safe to call on definitions from any source.
func Build(cfg RubricConfig) (*rubric.Rubric, error) {
	criteria := make([]rubric.Criterion, 0, len(cfg.Criteria))
	for i, c := range cfg.Criteria {
		criterion, err := rubric.NewCriterion(c.ID, c.Description, c.Mandatory)
		if err != nil {
			return nil, fmt.Errorf("criterion %d: %w", i, err)
		}
		criteria = append(criteria, criterion)
	}

	return rubric.NewRubric(cfg.RubricID, criteria, cfg.PassingThreshold)
}

// parseYAML decodes a definition in strict mode so unknown fields,
// typically typos, are surfaced instead of silently dropped.
func (l *Loader) parseYAML(data []byte) (*RubricFile, error) {
	var file RubricFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &file, nil
}

// validateFile runs struct validation and translates field failures
// into a single aggregated validation error naming every bad field.
func (l *Loader) validateFile(file *RubricFile) error {
	err := l.validator.Struct(file)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	vErr := rubric.NewValidationError("rubric definition")
	for _, fe := range fieldErrs {
		vErr.AddError(fmt.Sprintf("%s: failed %q validation (value: %v)",
			fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return vErr
}

// definitionHash computes the SHA256 of the re-encoded definition so
// semantically identical files share a cache entry.
func (l *Loader) definitionHash(file *RubricFile) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(file); err != nil {
		return "", fmt.Errorf("failed to encode definition for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (l *Loader) cachedRubric(hash string) (*rubric.Rubric, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	r, ok := l.cache[hash]
	return r, ok
}

func (l *Loader) cacheRubric(hash string, r *rubric.Rubric) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache[hash] = r
}

// ClearCache drops all cached rubrics, forcing subsequent loads to
// recompile from source.
func (l *Loader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache = make(map[string]*rubric.Rubric)
}

// registerCustomValidators wires the domain-specific validation rules
// into the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("criterionid", validateCriterionID); err != nil {
		return fmt.Errorf("failed to register criterionid validator: %w", err)
	}
	return nil
}

// validateSemver checks the X.Y.Z version format.
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3
}

// validateCriterionID applies the full criterion identifier rule set:
// identifier syntax, length, reserved names, and the justification
// suffix restriction.
func validateCriterionID(fl validator.FieldLevel) bool {
	return rubric.ValidateCriterionID(fl.Field().String()) == nil
}
