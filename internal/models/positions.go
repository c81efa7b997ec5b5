package models

// Flex slot names shared by every platform adapter.
const (
	FlexRBWR   = "FLEX_RB_WR"
	FlexTEWR   = "FLEX_TE_WR"
	Flex       = "FLEX"
	SuperFlex  = "SUPERFLEX"
	FlexDL     = "FLEX_DL"
	FlexDB     = "FLEX_DB"
	FlexIDP    = "FLEX_IDP"
	PositionBN = "BN"
	PositionIR = "IR"
	PositionDS = "D/ST"
)

// DefaultFlexPositions maps each flex slot to the positions it accepts.
func DefaultFlexPositions() map[string][]string {
	return map[string][]string{
		FlexRBWR:  {"RB", "WR"},
		FlexTEWR:  {"TE", "WR"},
		Flex:      {"RB", "TE", "WR"},
		SuperFlex: {"QB", "RB", "TE", "WR"},
		FlexDL:    {"DE", "DT"},
		FlexDB:    {"CB", "S"},
		FlexIDP:   {"CB", "DB", "DE", "DL", "DT", "LB", "S"},
	}
}

// InactiveStatuses are player statuses that make a started player ineligible
// for coaching efficiency.
var InactiveStatuses = map[string]bool{
	"O":           true,
	"Out":         true,
	"NA":          true,
	"INACTIVE":    true,
	"IR-R":        true,
	"IR":          true,
	"COVID-19":    true,
	"SUSP":        true,
	"Reserve-Sus": true,
	"DNR":         true,
	"PUP-P":       true,
	"PUP-R":       true,
	"NFI":         true,
	"NFI-A":       true,
	"NFI-R":       true,
	"EX":          true,
	"Reserve-Ex":  true,
	"CEL":         true,
	"Reserve-CEL": true,
	"RET":         true,
	"Reserve-Ret": true,
}
