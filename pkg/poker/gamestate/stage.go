package gamestate

import (
	"encoding/json"
	"fmt"
)

// Stage is the stage of a hand
type Stage int

// constants for Stage
const (
	Waiting Stage = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	Settlement
)

var stageNames = map[Stage]string{
	Waiting:    "WAITING",
	PreFlop:    "PRE_FLOP",
	Flop:       "FLOP",
	Turn:       "TURN",
	River:      "RIVER",
	Showdown:   "SHOWDOWN",
	Settlement: "SETTLEMENT",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParseStage returns the stage for its name
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}

	return Waiting, fmt.Errorf("unknown stage: %s", name)
}

// MarshalJSON encodes the stage as its name
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the stage from its name
func (s *Stage) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	stage, err := ParseStage(name)
	if err != nil {
		return err
	}

	*s = stage
	return nil
}

// IsBetting returns true if players act during the stage
func (s Stage) IsBetting() bool {
	return s >= PreFlop && s <= River
}

// CardsToDeal returns the number of community cards dealt when entering the stage
func (s Stage) CardsToDeal() int {
	switch s {
	case Flop:
		return 3
	case Turn, River:
		return 1
	}

	return 0
}

// CommunityCards returns the number of community cards showing once the stage is reached
func (s Stage) CommunityCards() int {
	switch s {
	case Waiting, PreFlop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	}

	return 5
}
