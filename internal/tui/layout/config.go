package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Tree  TreeConfig
	Input InputConfig
	Text  TextConfig
}

// TreeConfig holds tree pane dimension configuration.
type TreeConfig struct {
	// HeightReduction is subtracted from terminal height for tree content.
	// Accounts for: app padding (1) + header (2) + message line (1) + help bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum tree height.
	MinHeight int

	// ContentPadding is subtracted from width for item rendering.
	ContentPadding int

	// IndentWidth is the indentation per tree depth level.
	IndentWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit   int
	FilterCharLimit int

	StandardWidth int
	FilterWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Tree: TreeConfig{
			HeightReduction: 7,
			MinHeight:       5,
			ContentPadding:  4,
			IndentWidth:     2,
		},
		Input: InputConfig{
			NameCharLimit:   100,
			FilterCharLimit: 50,
			StandardWidth:   40,
			FilterWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
