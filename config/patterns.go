package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spinwatch/internal/window"
)

// AlertLevel decides whether a pattern's transitions are pushed to notifiers.
type AlertLevel string

const (
	AlertVIP      AlertLevel = "vip"
	AlertTracking AlertLevel = "tracking"
)

// PatternKind is either a single result or a sequence of results.
type PatternKind string

const (
	KindSimple   PatternKind = "simple"
	KindSequence PatternKind = "sequence"
)

// RingMode selects how the progress ring aggregates its targets.
type RingMode string

const (
	RingSingle RingMode = "single" // The first target only
	RingMax    RingMode = "max"    // Highest ratio across all targets
)

// Span is a [start, end] pair written as a two-element YAML sequence.
type Span struct {
	Start int
	End   int
}

// UnmarshalYAML accepts `[61, 90]`.
func (s *Span) UnmarshalYAML(node *yaml.Node) error {
	var pair []int
	if err := node.Decode(&pair); err != nil {
		return fmt.Errorf("line %d: window: %w", node.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: window must have exactly 2 values, got %d", node.Line, len(pair))
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// MarshalYAML writes the span back as a flow sequence.
func (s Span) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{s.Start, s.End} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return node, nil
}

// Band labels distances up to and including Max. A nil Max catches the rest.
type Band struct {
	Max   *int   `yaml:"max,omitempty" json:"max,omitempty"`
	Class string `yaml:"class" json:"class"`
}

// Pattern is one tracked result or sequence with its betting windows.
type Pattern struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Kind        PatternKind `yaml:"kind" json:"kind"`
	Value       []string    `yaml:"value" json:"value"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Level       AlertLevel  `yaml:"level" json:"level"`
	Warnings    []int       `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Windows     []Span      `yaml:"windows" json:"-"`
	LeadWarning *int        `yaml:"lead_warning,omitempty" json:"lead_warning,omitempty"`
	Bands       []Band      `yaml:"bands,omitempty" json:"bands,omitempty"`
}

// BettingWindows converts the YAML spans to classifier windows.
func (p Pattern) BettingWindows() []window.Window {
	if len(p.Windows) == 0 {
		return nil
	}
	out := make([]window.Window, len(p.Windows))
	for i, s := range p.Windows {
		out[i] = window.Window{Start: s.Start, End: s.End}
	}
	return out
}

// Lead returns the pattern override, or fallback when none is set.
func (p Pattern) Lead(fallback int) int {
	if p.LeadWarning != nil {
		return *p.LeadWarning
	}
	return fallback
}

// IsVIP reports whether the pattern should alert.
func (p Pattern) IsVIP() bool {
	return p.Level == AlertVIP
}

// RingTarget is one pattern feeding the progress ring.
type RingTarget struct {
	Pattern   string `yaml:"pattern" json:"pattern"`
	Threshold int    `yaml:"threshold" json:"threshold"`
}

// ProgressRing configures the dashboard's headline progress ring.
type ProgressRing struct {
	Mode    RingMode     `yaml:"mode" json:"mode"`
	Targets []RingTarget `yaml:"targets" json:"targets"`
}

// Catalog is the set of tracked patterns plus dashboard presentation knobs.
type Catalog struct {
	Patterns     []Pattern    `yaml:"patterns"`
	ProgressRing ProgressRing `yaml:"progress_ring"`
	DefaultBands []Band       `yaml:"default_bands"`
}

// Get returns the pattern with the given id.
func (c *Catalog) Get(id string) (Pattern, bool) {
	for _, p := range c.Patterns {
		if p.ID == id {
			return p, true
		}
	}
	return Pattern{}, false
}

// BandsFor returns the pattern's own bands, or the catalog defaults.
func (c *Catalog) BandsFor(id string) []Band {
	if p, ok := c.Get(id); ok && len(p.Bands) > 0 {
		return p.Bands
	}
	return c.DefaultBands
}

// Validate reports structural problems in the catalog.
func (c *Catalog) Validate() ValidationResult {
	var errors []ValidationError
	seen := make(map[string]bool, len(c.Patterns))

	for i, p := range c.Patterns {
		prefix := fmt.Sprintf("patterns[%d]", i)
		if p.ID == "" {
			errors = append(errors, ValidationError{Field: prefix + ".id", Message: "is required"})
		} else if seen[p.ID] {
			errors = append(errors, ValidationError{Field: prefix + ".id", Message: fmt.Sprintf("duplicate id %q", p.ID)})
		}
		seen[p.ID] = true

		switch p.Level {
		case AlertVIP, AlertTracking:
		default:
			errors = append(errors, ValidationError{Field: prefix + ".level", Message: "must be vip or tracking"})
		}

		prevEnd := -1
		for j, w := range p.Windows {
			field := fmt.Sprintf("%s.windows[%d]", prefix, j)
			if w.Start > w.End {
				errors = append(errors, ValidationError{Field: field, Message: "start must not exceed end"})
			}
			if w.Start <= prevEnd {
				errors = append(errors, ValidationError{Field: field, Message: "windows must be ascending and non-overlapping"})
			}
			prevEnd = w.End
		}

		if p.LeadWarning != nil && *p.LeadWarning < 0 {
			errors = append(errors, ValidationError{Field: prefix + ".lead_warning", Message: "must be non-negative"})
		}
	}

	switch c.ProgressRing.Mode {
	case RingSingle, RingMax:
	default:
		errors = append(errors, ValidationError{Field: "progress_ring.mode", Message: "must be single or max"})
	}
	for i, t := range c.ProgressRing.Targets {
		if t.Threshold <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("progress_ring.targets[%d].threshold", i),
				Message: "must be positive",
			})
		}
	}

	return ValidationResult{Valid: len(errors) == 0, Errors: errors}
}

func bandMax(v int) *int { return &v }

// DefaultCatalog returns the patterns tracked by the stock deployment.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Patterns: []Pattern{
			{
				ID: "pachinko", Name: "Pachinko", Kind: KindSimple, Value: []string{"Pachinko"},
				Description: "Bonus game",
				Level:       AlertVIP,
				Warnings:    []int{50, 110},
				Windows:     []Span{{61, 90}, {121, 150}},
				Bands: []Band{
					{Max: bandMax(60), Class: "cold"},
					{Max: bandMax(90), Class: "window"},
					{Max: bandMax(150), Class: "warm"},
					{Max: bandMax(200), Class: "hot"},
					{Class: "extreme"},
				},
			},
			{
				ID: "crazytime", Name: "Crazy Time", Kind: KindSimple, Value: []string{"CrazyTime"},
				Description: "Main bonus",
				Level:       AlertVIP,
				Warnings:    []int{190, 250},
				Windows:     []Span{{201, 230}, {261, 290}},
			},
			{
				ID: "numero_10", Name: "Number 10", Kind: KindSimple, Value: []string{"10"},
				Description: "Regular number",
				Level:       AlertTracking,
				Windows:     []Span{{61, 90}},
			},
			{
				ID: "seq_2_5", Name: "Sequence 2→5", Kind: KindSequence, Value: []string{"2", "5"},
				Description: "Sequence",
				Level:       AlertTracking,
				Windows:     []Span{{61, 90}},
			},
			{
				ID: "seq_5_2", Name: "Sequence 5→2", Kind: KindSequence, Value: []string{"5", "2"},
				Description: "Sequence",
				Level:       AlertTracking,
				Windows:     []Span{{61, 90}},
			},
		},
		ProgressRing: ProgressRing{
			Mode:    RingSingle,
			Targets: []RingTarget{{Pattern: "crazytime", Threshold: 190}},
		},
		DefaultBands: []Band{
			{Max: bandMax(50), Class: "cold"},
			{Max: bandMax(100), Class: "warm"},
			{Max: bandMax(200), Class: "hot"},
			{Class: "extreme"},
		},
	}
}

// LoadCatalog reads a YAML catalog from path. An empty path returns the
// default catalog. Sections missing from the file keep their defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML catalog bytes and validates the result.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	defaults := DefaultCatalog()
	if len(cat.Patterns) == 0 {
		cat.Patterns = defaults.Patterns
	}
	if cat.ProgressRing.Mode == "" {
		cat.ProgressRing.Mode = defaults.ProgressRing.Mode
	}
	if len(cat.ProgressRing.Targets) == 0 {
		cat.ProgressRing.Targets = defaults.ProgressRing.Targets
	}
	if len(cat.DefaultBands) == 0 {
		cat.DefaultBands = defaults.DefaultBands
	}
	for i := range cat.Patterns {
		if cat.Patterns[i].Level == "" {
			cat.Patterns[i].Level = AlertTracking
		}
		if cat.Patterns[i].Kind == "" {
			cat.Patterns[i].Kind = KindSimple
		}
	}

	if result := cat.Validate(); !result.Valid {
		return nil, &ConfigValidationError{Errors: result.Errors}
	}
	return &cat, nil
}

// MarshalCatalog encodes the catalog as YAML.
func MarshalCatalog(c *Catalog) ([]byte, error) {
	return yaml.Marshal(c)
}
