package conceptual

// SourceID names an imagery tile source.
// Sources are conceptual: one service, one placeholder contract.
type SourceID string

func (s SourceID) String() string {
	return string(s)
}

func (s SourceID) IsEmpty() bool {
	return s == ""
}
