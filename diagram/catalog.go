package diagram

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/validation"
)

// Catalog is the process-wide table of supported formats, themes, quality
// presets and render defaults. Accessors return copies; a Catalog never
// changes after NewCatalog.
type Catalog struct {
	formats      []Format
	themes       []Theme
	presets      []Preset
	contentTypes map[Format]string
	defaults     Options
}

var defaultContentTypes = map[Format]string{
	FormatSVG: "image/svg+xml",
	FormatPNG: "image/png",
	FormatPDF: "application/pdf",
}

// DefaultPresets returns the built-in quality presets, lowest first.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "low", Width: 800, Height: 600, Scale: 1, Description: "Small file size, good for web preview"},
		{Name: "medium", Width: 1200, Height: 800, Scale: 1.5, Description: "Balanced size and quality"},
		{Name: "high", Width: 1920, Height: 1080, Scale: 2, Description: "High quality for presentations"},
		{Name: "ultra", Width: 3840, Height: 2160, Scale: 3, Description: "4K quality for print and detailed viewing"},
	}
}

// DefaultCatalog returns the catalog used when nothing is configured.
func DefaultCatalog() *Catalog {
	var cfg CatalogConfig
	cfg.ApplyDefaults()
	c, _ := NewCatalog(cfg)
	return c
}

// NewCatalog builds a Catalog from cfg. cfg must have defaults applied.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		contentTypes: make(map[Format]string, len(cfg.Formats)),
		defaults: Options{
			Format: Format(cfg.DefaultFormat),
			Theme:  Theme(cfg.DefaultTheme),
			Width:  cfg.DefaultWidth,
			Height: cfg.DefaultHeight,
			Scale:  cfg.DefaultScale,
		},
	}
	for _, f := range cfg.Formats {
		c.formats = append(c.formats, Format(f))
		c.contentTypes[Format(f)] = defaultContentTypes[Format(f)]
	}
	for _, t := range cfg.Themes {
		c.themes = append(c.themes, Theme(t))
	}
	c.presets = append(c.presets, cfg.Presets...)
	return c, nil
}

// Formats returns the supported formats in configured order.
func (c *Catalog) Formats() []Format { return append([]Format(nil), c.formats...) }

// Themes returns the supported themes in configured order.
func (c *Catalog) Themes() []Theme { return append([]Theme(nil), c.themes...) }

// Presets returns the quality presets in configured order.
func (c *Catalog) Presets() []Preset { return append([]Preset(nil), c.presets...) }

// Defaults returns the render defaults.
func (c *Catalog) Defaults() Options { return c.defaults }

// HasFormat reports whether f is supported.
func (c *Catalog) HasFormat(f Format) bool {
	for _, v := range c.formats {
		if v == f {
			return true
		}
	}
	return false
}

// HasTheme reports whether t is supported.
func (c *Catalog) HasTheme(t Theme) bool {
	for _, v := range c.themes {
		if v == t {
			return true
		}
	}
	return false
}

// Preset looks up a quality preset by name.
func (c *Catalog) Preset(name string) (Preset, bool) {
	for _, p := range c.presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ContentType returns the MIME type for f, or "" if f is unsupported.
func (c *Catalog) ContentType(f Format) string {
	return c.contentTypes[f]
}

// FormatNames returns the formats as strings, for messages.
func (c *Catalog) FormatNames() []string {
	out := make([]string, len(c.formats))
	for i, f := range c.formats {
		out[i] = string(f)
	}
	return out
}

// ThemeNames returns the themes as strings, for messages.
func (c *Catalog) ThemeNames() []string {
	out := make([]string, len(c.themes))
	for i, t := range c.themes {
		out[i] = string(t)
	}
	return out
}

// PresetNames returns the preset names in configured order.
func (c *Catalog) PresetNames() []string {
	out := make([]string, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.Name
	}
	return out
}

// Resolve fills zero fields of opts with the catalog defaults.
func (c *Catalog) Resolve(opts Options) Options {
	if opts.Format == "" {
		opts.Format = c.defaults.Format
	}
	if opts.Theme == "" {
		opts.Theme = c.defaults.Theme
	}
	if opts.Width == 0 {
		opts.Width = c.defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = c.defaults.Height
	}
	if opts.Scale == 0 {
		opts.Scale = c.defaults.Scale
	}
	return opts
}

// Check returns an INVALID_INPUT error naming the first unsupported value
// of resolved options, or nil.
func (c *Catalog) Check(opts Options) *apperrors.AppError {
	if !c.HasFormat(opts.Format) {
		return apperrors.Unsupported("format", string(opts.Format), c.FormatNames())
	}
	if !c.HasTheme(opts.Theme) {
		return apperrors.Unsupported("theme", string(opts.Theme), c.ThemeNames())
	}
	return validation.New().
		Positive("width", float64(opts.Width)).
		Positive("height", float64(opts.Height)).
		Positive("scale", opts.Scale).
		Validate()
}

// CatalogConfig is the configuration form of a Catalog.
type CatalogConfig struct {
	Formats       []string `yaml:"formats" mapstructure:"formats"`
	Themes        []string `yaml:"themes" mapstructure:"themes"`
	Presets       []Preset `yaml:"presets" mapstructure:"presets" validate:"dive"`
	DefaultFormat string   `yaml:"default_format" mapstructure:"default_format"`
	DefaultTheme  string   `yaml:"default_theme" mapstructure:"default_theme"`
	DefaultWidth  int      `yaml:"default_width" mapstructure:"default_width"`
	DefaultHeight int      `yaml:"default_height" mapstructure:"default_height"`
	DefaultScale  float64  `yaml:"default_scale" mapstructure:"default_scale"`
}

// ApplyDefaults sets default values for unset fields.
func (c *CatalogConfig) ApplyDefaults() {
	if len(c.Formats) == 0 {
		c.Formats = []string{string(FormatSVG), string(FormatPNG), string(FormatPDF)}
	}
	if len(c.Themes) == 0 {
		c.Themes = []string{string(ThemeDefault), string(ThemeDark), string(ThemeForest), string(ThemeNeutral)}
	}
	if len(c.Presets) == 0 {
		c.Presets = DefaultPresets()
	}
	descriptions := make(map[string]string)
	for _, p := range DefaultPresets() {
		descriptions[p.Name] = p.Description
	}
	for i := range c.Presets {
		if c.Presets[i].Description == "" {
			if d, ok := descriptions[c.Presets[i].Name]; ok {
				c.Presets[i].Description = d
			} else {
				c.Presets[i].Description = "Custom quality setting"
			}
		}
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = string(FormatSVG)
	}
	if c.DefaultTheme == "" {
		c.DefaultTheme = string(ThemeDefault)
	}
	if c.DefaultWidth == 0 {
		c.DefaultWidth = 1200
	}
	if c.DefaultHeight == 0 {
		c.DefaultHeight = 800
	}
	if c.DefaultScale == 0 {
		c.DefaultScale = 1
	}
}

// Validate checks the configuration for invalid values.
func (c *CatalogConfig) Validate() error {
	for _, f := range c.Formats {
		if _, ok := defaultContentTypes[Format(f)]; !ok {
			return fmt.Errorf("catalog.formats: unknown format %q (known: svg, png, pdf)", f)
		}
	}
	if len(c.Themes) == 0 {
		return fmt.Errorf("catalog.themes must not be empty")
	}
	if !contains(c.Formats, c.DefaultFormat) {
		return fmt.Errorf("catalog.default_format %q is not in catalog.formats [%s]", c.DefaultFormat, strings.Join(c.Formats, ", "))
	}
	if !contains(c.Themes, c.DefaultTheme) {
		return fmt.Errorf("catalog.default_theme %q is not in catalog.themes [%s]", c.DefaultTheme, strings.Join(c.Themes, ", "))
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if p.Name == "" {
			return fmt.Errorf("catalog.presets: preset name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("catalog.presets: duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
