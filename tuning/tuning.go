// Package tuning holds every heuristic threshold used by the conversion
// pipeline in one explicit structure.
//
// A Config is passed by value into each component; nothing in the pipeline
// reads package-level mutable state, so two conversions with different
// tuning can run side by side and produce reproducible results.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config groups the per-component thresholds
type Config struct {
	Decode   DecodeConfig   `yaml:"decode"`
	Tables   TableConfig    `yaml:"tables"`
	Header   HeaderConfig   `yaml:"header"`
	Layout   LayoutConfig   `yaml:"layout"`
	Assembly AssemblyConfig `yaml:"assembly"`
}

// DecodeConfig controls the page decoder
type DecodeConfig struct {
	// Fragments on one baseline join into a span when the horizontal gap is
	// below MergeGapRatio × font size.
	MergeGapRatio float64 `yaml:"merge_gap_ratio"`
	// A gap above SpaceGapRatio × font size inside a span inserts a space.
	SpaceGapRatio float64 `yaml:"space_gap_ratio"`
	// Baselines closer than this (points) count as the same baseline.
	BaselineTolerance float64 `yaml:"baseline_tolerance"`
	// Filled rectangles thinner than this (points) are ruling lines.
	ThinRectMax float64 `yaml:"thin_rect_max"`

	MaxOperations  int           `yaml:"max_operations"`
	PageTimeout    time.Duration `yaml:"page_timeout"`
	MaxFormDepth   int           `yaml:"max_form_depth"`
	MaxImagePixels int           `yaml:"max_image_pixels"`
}

// TableConfig controls the table detector
type TableConfig struct {
	// Segments within SnapTolerance of the same axis position are collinear.
	SnapTolerance float64 `yaml:"snap_tolerance"`
	// Collinear segments closer than JoinTolerance along the axis are joined.
	JoinTolerance float64 `yaml:"join_tolerance"`
	// Segments shorter than this are ignored.
	MinSegmentLength float64 `yaml:"min_segment_length"`
	// Work caps for pathological pages.
	MaxSegments        int `yaml:"max_segments"`
	MaxMergeIterations int `yaml:"max_merge_iterations"`

	// Implicit grid inference.
	AlignTolerance  float64 `yaml:"align_tolerance"`
	MinColumnGap    float64 `yaml:"min_column_gap"`
	MinAlignedSpans int     `yaml:"min_aligned_spans"`
	MinAlignedLines int     `yaml:"min_aligned_lines"`

	MinRows int `yaml:"min_rows"`
	MinCols int `yaml:"min_cols"`
}

// HeaderConfig controls the header classifier
type HeaderConfig struct {
	// FontSizeRatio is the minimum first-row size relative to the modal body
	// size for the font-size rule to fire.
	FontSizeRatio float64 `yaml:"font_size_ratio"`
	// NumericRowMinShare is the share of body rows that must contain a
	// numeric cell for the numeric rule to fire.
	NumericRowMinShare float64 `yaml:"numeric_row_min_share"`
	// ShadeDistance is the CIE Lab distance under which two fills count as
	// the same shade, and above which a fill counts as distinct from white.
	ShadeDistance float64 `yaml:"shade_distance"`
}

// LayoutConfig controls the reflow engine
type LayoutConfig struct {
	LineOverlap       float64 `yaml:"line_overlap"`
	ParagraphGapRatio float64 `yaml:"paragraph_gap_ratio"`
	AlignTolerance    float64 `yaml:"align_tolerance"`
	HeadingRatio      float64 `yaml:"heading_ratio"`
	CaptionMaxGap     float64 `yaml:"caption_max_gap"`

	MinColumnGap         float64 `yaml:"min_column_gap"`
	MinColumnHeightRatio float64 `yaml:"min_column_height_ratio"`
}

// AssemblyConfig controls the document model builder
type AssemblyConfig struct {
	// A table touches the top (bottom) margin when it lies within this
	// fraction of the page height from the top (bottom) edge and no body
	// content sits between it and that edge.
	MarginRatio float64 `yaml:"margin_ratio"`
	// Elements inside this fraction of the page height at the top or bottom
	// are running headers and footers.
	RunningBandRatio float64 `yaml:"running_band_ratio"`
	Workers          int     `yaml:"workers"`
}

// Default returns the stock thresholds
func Default() Config {
	return Config{
		Decode: DecodeConfig{
			MergeGapRatio:     0.6,
			SpaceGapRatio:     0.15,
			BaselineTolerance: 0.5,
			ThinRectMax:       2.0,
			MaxOperations:     500000,
			PageTimeout:       10 * time.Second,
			MaxFormDepth:      8,
			MaxImagePixels:    40_000_000,
		},
		Tables: TableConfig{
			SnapTolerance:      3.0,
			JoinTolerance:      3.0,
			MinSegmentLength:   4.0,
			MaxSegments:        4000,
			MaxMergeIterations: 200000,
			AlignTolerance:     2.0,
			MinColumnGap:       12.0,
			MinAlignedSpans:    3,
			MinAlignedLines:    3,
			MinRows:            2,
			MinCols:            2,
		},
		Header: HeaderConfig{
			FontSizeRatio:      1.05,
			NumericRowMinShare: 1.0,
			ShadeDistance:      0.05,
		},
		Layout: LayoutConfig{
			LineOverlap:          0.5,
			ParagraphGapRatio:    1.5,
			AlignTolerance:       4.0,
			HeadingRatio:         1.2,
			CaptionMaxGap:        24.0,
			MinColumnGap:         20.0,
			MinColumnHeightRatio: 0.5,
		},
		Assembly: AssemblyConfig{
			MarginRatio:      0.25,
			RunningBandRatio: 0.08,
		},
	}
}

// LoadFile reads a YAML file and overlays it on the defaults
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that thresholds are usable
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	ratio := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0,1], got %v", name, v))
		}
	}

	positive("decode.merge_gap_ratio", c.Decode.MergeGapRatio)
	positive("decode.space_gap_ratio", c.Decode.SpaceGapRatio)
	positive("tables.snap_tolerance", c.Tables.SnapTolerance)
	positive("tables.min_column_gap", c.Tables.MinColumnGap)
	positive("layout.paragraph_gap_ratio", c.Layout.ParagraphGapRatio)
	positive("layout.heading_ratio", c.Layout.HeadingRatio)
	ratio("layout.line_overlap", c.Layout.LineOverlap)
	ratio("header.numeric_row_min_share", c.Header.NumericRowMinShare)
	ratio("assembly.margin_ratio", c.Assembly.MarginRatio)

	if c.Header.FontSizeRatio < 1 {
		errs = append(errs, fmt.Errorf("header.font_size_ratio must be at least 1, got %v", c.Header.FontSizeRatio))
	}
	if c.Tables.MinRows < 2 || c.Tables.MinCols < 2 {
		errs = append(errs, fmt.Errorf("tables.min_rows and tables.min_cols must be at least 2"))
	}
	if c.Decode.MaxOperations <= 0 || c.Decode.PageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("decode budgets must be positive"))
	}
	if c.Tables.MaxMergeIterations <= 0 || c.Tables.MaxSegments <= 0 {
		errs = append(errs, fmt.Errorf("table budgets must be positive"))
	}
	if c.Assembly.Workers < 0 {
		errs = append(errs, fmt.Errorf("assembly.workers must not be negative"))
	}
	return errors.Join(errs...)
}
