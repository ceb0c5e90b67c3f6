package core

// Levels a Course or a student User may belong to.
const (
	Level3 = "Level 3"
	Level4 = "Level 4"
	Level5 = "Level 5"
)

var Levels = []string{Level3, Level4, Level5}

// Terms of an academic year.
const (
	Term1 = "1st Term"
	Term2 = "2nd Term"
	Term3 = "3rd Term"
)

var Terms = []string{Term1, Term2, Term3}

func IsValidLevel(level string) bool { return contains(Levels, level) }
func IsValidTerm(term string) bool   { return contains(Terms, term) }

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
