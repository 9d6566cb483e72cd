package srs

// Params defines all configurable parameters for the spaced-repetition table.
// Intervals are minutes.
type Params struct {
	// CorrectFloorMinutes is the minimum interval after an unaided correct
	// answer. Above the floor the interval doubles instead.
	CorrectFloorMinutes int

	// HintMinutes is the flat interval after a correct answer that needed
	// one or more hints.
	HintMinutes int

	// WrongMinutes is the flat interval after the user gives up.
	WrongMinutes int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	CorrectFloorMinutes int
	HintMinutes         int
	WrongMinutes        int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		CorrectFloorMinutes: 30,
		HintMinutes:         10,
		WrongMinutes:        5,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.CorrectFloorMinutes > 0 {
		params.CorrectFloorMinutes = config.CorrectFloorMinutes
	}
	if config.HintMinutes > 0 {
		params.HintMinutes = config.HintMinutes
	}
	if config.WrongMinutes > 0 {
		params.WrongMinutes = config.WrongMinutes
	}

	return params
}
