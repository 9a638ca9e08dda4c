package catalog

// CatalogSchema is the top-level YAML catalog structure.
type CatalogSchema struct {
	Version         int                       `yaml:"version"`
	Conditions      []ConditionConfig         `yaml:"conditions"`
	Steps           []StepConfig              `yaml:"steps"`
	Treatments      map[string][]OptionConfig `yaml:"treatments"`
	Exclusivity     []ExclusivityConfig       `yaml:"exclusivity,omitempty"`
	GenerationOrder []string                  `yaml:"generation_order,omitempty"`
}

type ConditionConfig struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol,omitempty"`
	DiseaseCode string `yaml:"disease_code,omitempty"`
	Acute       bool   `yaml:"acute,omitempty"`
}

type StepConfig struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ProcedureCode string `yaml:"procedure_code,omitempty"`
	Points        int    `yaml:"points,omitempty"`
}

// OptionConfig lists step ids in treatment order. A step id may repeat.
type OptionConfig struct {
	Name    string   `yaml:"name"`
	StepIDs []string `yaml:"steps"`
}

type ExclusivityConfig struct {
	Name   string     `yaml:"name"`
	Groups [][]string `yaml:"groups"`
}
