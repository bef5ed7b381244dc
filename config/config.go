// Package config loads rubric definitions from declarative YAML files
// and compiles them into validated rubric values.
package config

// RubricFile is the top-level schema of a rubric definition file and
// the primary configuration entry point for file-driven evaluation.
type RubricFile struct {
	// Version specifies the configuration schema version using semantic
	// versioning so files can be checked for compatibility.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata carries descriptive information about the definition for
	// organization and discovery. It never affects scoring.
	Metadata Metadata `yaml:"metadata"`
	// Rubric is the rubric definition itself.
	Rubric RubricConfig `yaml:"rubric" validate:"required"`
}

// Metadata provides descriptive information about a rubric definition
// for documentation and operational tooling.
type Metadata struct {
	// Name is a human-readable identifier for the definition file.
	Name string `yaml:"name" validate:"omitempty,min=1,max=255"`
	// Description explains the rubric's purpose and intended use.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for filtering and grouping.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for external integrations.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// RubricConfig defines a single rubric: its identifier, its ordered
// criteria, and the cumulative passing threshold.
type RubricConfig struct {
	// RubricID identifies the rubric in reports, prompts, and metrics.
	RubricID string `yaml:"rubric_id" validate:"required,min=1,max=255"`
	// PassingThreshold is the number of cumulative criteria that must
	// pass. It may not exceed the count of cumulative criteria.
	PassingThreshold int `yaml:"passing_threshold" validate:"min=0"`
	// Criteria lists the criteria in evaluation and report order.
	Criteria []CriterionConfig `yaml:"criteria" validate:"required,min=1,max=100,dive"`
}

// CriterionConfig defines one criterion within a rubric definition.
type CriterionConfig struct {
	// ID is the criterion identifier and must be a valid identifier
	// that avoids reserved names and the justification suffix.
	ID string `yaml:"id" validate:"required,criterionid"`
	// Description is the human-readable statement of what is judged.
	Description string `yaml:"description" validate:"required,min=1,max=1000"`
	// Mandatory marks the criterion as a hard gate. A false mandatory
	// criterion fails the whole evaluation regardless of the score.
	Mandatory bool `yaml:"mandatory"`
}
