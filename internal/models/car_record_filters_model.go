package models

// CarRecordFilters contains all the ways a list of car records can be narrowed down.
// Nil fields are not applied.
type CarRecordFilters struct {
	MinHorsepower *int
	TypeContains  *string
}
