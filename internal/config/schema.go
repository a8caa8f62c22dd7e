package config

// Config holds notebind configuration.
// Loaded from: ./config.yaml or ~/.notebind/config.yaml
type Config struct {
	SourceDir   string      `mapstructure:"source_dir" yaml:"source_dir" json:"source_dir"`       // Directory of lecture PDFs (supports ${ENV_VAR} syntax)
	Output      string      `mapstructure:"output" yaml:"output" json:"output"`                   // Output PDF path
	Title       string      `mapstructure:"title" yaml:"title" json:"title"`                      // Title page heading
	Author      string      `mapstructure:"author" yaml:"author" json:"author"`                   // Title page author line
	WorkDir     string      `mapstructure:"work_dir" yaml:"work_dir" json:"work_dir"`             // Parent of the scratch directory (default: OS temp dir)
	KeepWorkDir bool        `mapstructure:"keep_workdir" yaml:"keep_workdir" json:"keep_workdir"` // Leave intermediate files behind after a failed run
	TOC         TOCConfig   `mapstructure:"toc" yaml:"toc" json:"toc"`
	Stamp       StampConfig `mapstructure:"stamp" yaml:"stamp" json:"stamp"`
	Watch       WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// TOCConfig controls table of contents rendering.
type TOCConfig struct {
	Header        string `mapstructure:"header" yaml:"header" json:"header"`
	Placeholder   string `mapstructure:"placeholder" yaml:"placeholder" json:"placeholder"`             // Page number used by the estimation pass
	MaxTitleChars int    `mapstructure:"max_title_chars" yaml:"max_title_chars" json:"max_title_chars"` // Longer titles are cut with "..."
	MaxPasses     int    `mapstructure:"max_passes" yaml:"max_passes" json:"max_passes"`                // Final render attempts before accepting drift
}

// StampConfig controls the page number overlay.
type StampConfig struct {
	FontSize     float64 `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	BottomOffset float64 `mapstructure:"bottom_offset" yaml:"bottom_offset" json:"bottom_offset"` // Points above the bottom edge
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SourceDir: ".",
		Output:    "Combined_Linear_Optimization_Notes.pdf",
		Title:     "Notes on Linear Optimization",
		Author:    "Alberto Del Pia",
		TOC: TOCConfig{
			Header:        "Table of Contents",
			Placeholder:   "999",
			MaxTitleChars: 50,
			MaxPasses:     5,
		},
		Stamp: StampConfig{
			FontSize:     9,
			BottomOffset: 36,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}
