package art

// Config holds the recognized options for a hill-climbing run.
type Config struct {
	// Shapes is the fixed number of shapes in the list.
	Shapes int `json:"shapes"`

	// Iterations is the total iteration budget.
	Iterations int `json:"iterations"`

	// Kind selects the primitive: polygon or circle.
	Kind Kind `json:"kind"`

	// Sides is the polygon vertex count, fixed at creation. Ignored for circles.
	Sides int `json:"sides,omitempty"`

	// MaxRadius bounds circle radii. Ignored for polygons.
	MaxRadius int `json:"maxRadius,omitempty"`

	// Seed drives the single random generator. Zero means "derive from
	// the current time", any other value makes the run reproducible.
	Seed int64 `json:"seed,omitempty"`

	// ReportEvery is the iteration cadence at which the progress sink is
	// invoked in addition to accepted changes. Zero disables the cadence.
	ReportEvery int `json:"reportEvery,omitempty"`
}

// DefaultConfig returns the stock run configuration: 50 hexagons,
// 100000 iterations, circles capped at radius 30.
func DefaultConfig() Config {
	return Config{
		Shapes:      50,
		Iterations:  100000,
		Kind:        KindPolygon,
		Sides:       6,
		MaxRadius:   30,
		ReportEvery: 10000,
	}
}

// ConfigError reports an invalid configuration value. It is fatal: the
// run does not start.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Field + " " + e.Reason
}

// Validate checks the configuration before any rendering happens.
func (c Config) Validate() error {
	if c.Shapes <= 0 {
		return &ConfigError{Field: "Shapes", Reason: "must be positive"}
	}
	if c.Iterations <= 0 {
		return &ConfigError{Field: "Iterations", Reason: "must be positive"}
	}
	switch c.Kind {
	case KindPolygon:
		if c.Sides < 3 {
			return &ConfigError{Field: "Sides", Reason: "must be at least 3"}
		}
	case KindCircle:
		if c.MaxRadius <= 0 {
			return &ConfigError{Field: "MaxRadius", Reason: "must be positive"}
		}
	default:
		return &ConfigError{Field: "Kind", Reason: `must be "polygon" or "circle"`}
	}
	if c.ReportEvery < 0 {
		return &ConfigError{Field: "ReportEvery", Reason: "cannot be negative"}
	}
	return nil
}
