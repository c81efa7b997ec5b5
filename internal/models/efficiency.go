package models

import "fmt"

// DQReason explains why a team was disqualified from coaching efficiency.
type DQReason string

const (
	DQInactivePlayer    DQReason = "inactive player started"
	DQListedPlayer      DQReason = "disqualified player started"
	DQIncompleteLineup  DQReason = "incomplete lineup"
	DQManual            DQReason = "manual"
	DQPlaceholderString          = "DQ"
)

// Efficiency is a coaching efficiency percentage or the DQ marker. A DQ
// efficiency is a distinct state from 0.
type Efficiency struct {
	Value  float64  `json:"value"`
	DQ     bool     `json:"dq,omitempty"`
	Reason DQReason `json:"reason,omitempty"`
}

func EfficiencyOf(value float64) Efficiency {
	return Efficiency{Value: value}
}

func Disqualified(reason DQReason) Efficiency {
	return Efficiency{DQ: true, Reason: reason}
}

// String formats "93.25%" or "DQ".
func (e Efficiency) String() string {
	if e.DQ {
		return DQPlaceholderString
	}
	return fmt.Sprintf("%.2f%%", e.Value)
}

// Before reports whether e ranks ahead of other: higher values first, every
// DQ after every value.
func (e Efficiency) Before(other Efficiency) bool {
	if e.DQ != other.DQ {
		return other.DQ
	}
	return e.Value > other.Value
}
