package manifest

// Document is the top-level structure of search-index.json. Only modules
// is required; version, generated and stats are informational.
type Document struct {
	Version   string                 `json:"version" yaml:"version"`
	Generated string                 `json:"generated" yaml:"generated"`
	Stats     map[string]interface{} `json:"stats,omitempty" yaml:"stats,omitempty"`
	Modules   []ModuleProps          `json:"modules" yaml:"modules"`
}

// ModuleProps is one entry as emitted by the index generator.
type ModuleProps struct {
	Name            string   `json:"name" yaml:"name"`
	Type            string   `json:"type" yaml:"type"`
	DisplayCategory string   `json:"displayCategory" yaml:"displayCategory"`
	Emoji           string   `json:"emoji" yaml:"emoji"`
	Color           string   `json:"color,omitempty" yaml:"color,omitempty"`
	Description     string   `json:"description" yaml:"description"`
	Keywords        []string `json:"keywords" yaml:"keywords"`
	Category        string   `json:"category" yaml:"category"`
	SwaggerURL      string   `json:"swaggerUrl,omitempty" yaml:"swaggerUrl,omitempty"`
	YangTreeURL     string   `json:"yangTreeUrl,omitempty" yaml:"yangTreeUrl,omitempty"`
}
