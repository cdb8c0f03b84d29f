package types

// CatalogEntry describes one launchable model family from the catalog.
// Field names follow the serving backend's registration schema.
type CatalogEntry struct {
	// Model family name.
	// example: llama-2-chat
	Name string `json:"model_name" yaml:"model_name" example:"llama-2-chat"`
	// Human-readable description.
	// example: Llama 2 fine-tuned for chat.
	Description string `json:"model_description,omitempty" yaml:"model_description" example:"Llama 2 fine-tuned for chat."`
	// Ability tags (e.g. generate, chat, embed).
	Abilities []string `json:"model_ability,omitempty" yaml:"model_ability"`
	// Context window length in tokens.
	// example: 4096
	ContextLength int `json:"context_length,omitempty" yaml:"context_length" example:"4096"`
	// Whether the family ships with the backend or was user-registered.
	// example: true
	IsBuiltin bool `json:"is_builtin,omitempty" yaml:"is_builtin" example:"true"`
	// Concrete variants of this family.
	Variants []VariantSpec `json:"model_specs" yaml:"model_specs"`
}

// VariantSpec is one concrete (format, size, quantizations) combination.
// Multiple variants may share format and size with different quantization lists.
type VariantSpec struct {
	// Weight format (e.g. pytorch, ggmlv3, gptq).
	// example: pytorch
	Format string `json:"model_format" yaml:"model_format" example:"pytorch"`
	// Parameter count in billions.
	// example: 7
	Size float64 `json:"model_size_in_billions" yaml:"model_size_in_billions" example:"7"`
	// Supported quantization schemes, in catalog order.
	Quantizations []string `json:"quantizations" yaml:"quantizations"`
}

// Selection is the user's (possibly partial) variant choice for a catalog
// entry. Size is kept as a string because it arrives from a text control;
// it is compared numerically against catalog sizes.
type Selection struct {
	Format       string `json:"model_format"`
	Size         string `json:"model_size_in_billions"`
	Quantization string `json:"quantization"`
}
