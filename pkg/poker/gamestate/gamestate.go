package gamestate

// Status is a player's status within a hand
type Status string

// constants for Status
const (
	Active Status = "ACTIVE"
	Folded Status = "FOLDED"
	AllIn  Status = "ALL_IN"
	Out    Status = "OUT"
)

// Counts summarizes player statuses
type Counts struct {
	// NonFolded are players who can still win the hand
	NonFolded int
	// CanAct are players who can still make a betting decision
	CanAct int
}

// Count tallies a list of statuses
func Count(statuses []Status) Counts {
	var c Counts
	for _, s := range statuses {
		switch s {
		case Active:
			c.NonFolded++
			c.CanAct++
		case AllIn:
			c.NonFolded++
		}
	}

	return c
}

// Transition is the result of advancing a hand
type Transition struct {
	From Stage
	To   Stage
	// Deal is the number of community cards to deal on entering To
	Deal int
	// FastForward is true when no further betting is possible, and the hand
	// should keep advancing until showdown
	FastForward bool
}

// Next returns the stage that follows once the current stage is finished
func Next(stage Stage, statuses []Status) Transition {
	c := Count(statuses)
	t := Transition{From: stage}

	switch {
	case stage == Settlement:
		t.To = Waiting
	case stage == Waiting:
		t.To = PreFlop
	case stage == Showdown:
		t.To = Settlement
	case c.NonFolded <= 1:
		t.To = Settlement
	default:
		t.To = stage + 1
		t.FastForward = c.CanAct <= 1
	}

	t.Deal = t.To.CardsToDeal()
	return t
}
