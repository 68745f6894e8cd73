package diagram

// Format is an artifact format.
type Format string

// Theme is a renderer color theme.
type Theme string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

const (
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
	ThemeNeutral Theme = "neutral"
)

// Preset is a named output resolution.
type Preset struct {
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	Width       int     `json:"width" yaml:"width" mapstructure:"width" validate:"gt=0"`
	Height      int     `json:"height" yaml:"height" mapstructure:"height" validate:"gt=0"`
	Scale       float64 `json:"scale" yaml:"scale" mapstructure:"scale" validate:"gt=0"`
	Description string  `json:"description" yaml:"description" mapstructure:"description"`
}

// Options are the render parameters of one request. Zero fields take the
// catalog defaults.
type Options struct {
	Format Format  `json:"format,omitempty"`
	Theme  Theme   `json:"theme,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}
