package hh

// SearchItem is one entry of a search results page. Only the identifier is
// consumed; details come from the vacancy endpoint.
type SearchItem struct {
	ID string `json:"id"`
}

// SearchPage is one page of search results.
//
// Items stays nil when the response omits the array entirely, which the
// collector treats as end-of-results.
type SearchPage struct {
	Pages int          `json:"pages"`
	Found int          `json:"found"`
	Items []SearchItem `json:"items"`
}

// SalaryInfo is the nullable salary object of a vacancy. From and To may
// each be independently absent.
type SalaryInfo struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
	Gross    bool   `json:"gross"`
}

// Named is a {"name": ...} sub-object (employer, experience, schedule,
// key skills).
type Named struct {
	Name string `json:"name"`
}

// VacancyDetail is the raw detail endpoint response for one posting.
type VacancyDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Employer    Named       `json:"employer"`
	Salary      *SalaryInfo `json:"salary"`
	Experience  Named       `json:"experience"`
	Schedule    Named       `json:"schedule"`
	KeySkills   []Named     `json:"key_skills"`
	Description string      `json:"description"`
}
