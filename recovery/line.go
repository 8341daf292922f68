package recovery

// Decision is the outcome of one strategy applied to one line.
type Decision int

const (
	// DecisionNone leaves the line alone; the next strategy is consulted.
	DecisionNone Decision = iota
	// DecisionCommentOut turns the whole line into a line comment.
	DecisionCommentOut
	// DecisionReplace keeps the text the strategy stored in Line.Text.
	DecisionReplace
)

func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionCommentOut:
		return "comment-out"
	case DecisionReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Line is the working copy of one physical line during a rewrite.
// Number is fixed; Text may be replaced by at most one strategy.
type Line struct {
	Number int
	Text   string
}

// Patch records a change the rewriter made to one line.
type Patch struct {
	Line     int
	Strategy string
	Decision Decision
	Before   string
	After    string

	// Drift is how many characters longer the line became because the
	// excess could not be trimmed from leading whitespace. Every later
	// offset in the document is shifted by this amount.
	Drift int
}
