package valueobjects

// VoteDirection is the direction of a user's vote on a post or reply
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Numeric encodings stored on vote records
const (
	VoteValueUp   = 1
	VoteValueDown = -1
)

// IsValid reports whether the direction is up or down
func (d VoteDirection) IsValid() bool {
	return d == VoteUp || d == VoteDown
}

// Value returns the numeric encoding of the direction
func (d VoteDirection) Value() int {
	if d == VoteDown {
		return VoteValueDown
	}
	return VoteValueUp
}

// DirectionFromValue maps a stored numeric value back to a direction.
// The second return value is false for malformed values.
func DirectionFromValue(value int) (VoteDirection, bool) {
	switch value {
	case VoteValueUp:
		return VoteUp, true
	case VoteValueDown:
		return VoteDown, true
	default:
		return "", false
	}
}

func (d VoteDirection) String() string {
	return string(d)
}
