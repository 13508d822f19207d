package chatbot

import "encoding/json"

// GenerationRequest asks the factory to generate one chatbot project
type GenerationRequest struct {
	Config       Config `json:"config" yaml:"config" toml:"config"`
	OutputName   string `json:"output_name" yaml:"output_name" toml:"output_name"`
	IncludeTests bool   `json:"include_tests" yaml:"include_tests" toml:"include_tests"`
	IncludeDocs  bool   `json:"include_docs" yaml:"include_docs" toml:"include_docs"`
}

// NewRequest builds a request that includes tests and docs
func NewRequest(cfg Config, outputName string) *GenerationRequest {
	return &GenerationRequest{
		Config:       cfg,
		OutputName:   outputName,
		IncludeTests: true,
		IncludeDocs:  true,
	}
}

// UnmarshalJSON decodes a request, defaulting IncludeTests and IncludeDocs to true.
func (r *GenerationRequest) UnmarshalJSON(data []byte) error {
	type plain GenerationRequest
	p := plain{IncludeTests: true, IncludeDocs: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = GenerationRequest(p)
	return nil
}

// UnmarshalJSON decodes a config on top of DefaultConfig.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	p := plain(DefaultConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// GenerationResponse is the outcome of one generation run
type GenerationResponse struct {
	Success        bool     `json:"success"`
	OutputPath     string   `json:"output_path"`
	Message        string   `json:"message"`
	FilesGenerated []string `json:"files_generated"`
	DockerImage    string   `json:"docker_image,omitempty"`
	Errors         []string `json:"errors"`
}
