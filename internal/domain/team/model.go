package team

// Team is one row of the teams mart.
type Team struct {
	ID       int64
	Name     string
	Code     string
	Country  string
	Founded  *int
	National bool
	Logo     string
	Venue    *Venue
}

type Venue struct {
	ID       int64
	Name     string
	Address  string
	City     string
	Capacity *int
	Surface  string
}
