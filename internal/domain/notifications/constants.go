package notifications

const (
	TypeIncompleteDay = "incomplete_day"
)
