package review

// Speed classifies how long the learner looked at the front before revealing.
type Speed string

const (
	SpeedFast   Speed = "fast"
	SpeedMedium Speed = "medium"
	SpeedSlow   Speed = "slow"
)

const (
	fastLimitSeconds   = 5
	mediumLimitSeconds = 10
)

// ClassifySpeed buckets elapsed whole seconds. Upper bounds are inclusive.
func ClassifySpeed(seconds int) Speed {
	switch {
	case seconds <= fastLimitSeconds:
		return SpeedFast
	case seconds <= mediumLimitSeconds:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}

// Color is the timer color renderers use for s.
func (s Speed) Color() string {
	switch s {
	case SpeedFast:
		return "green"
	case SpeedMedium:
		return "yellow"
	case SpeedSlow:
		return "red"
	default:
		return ""
	}
}
