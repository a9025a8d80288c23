package exam

// PassThreshold is the minimum percentage that counts as a pass.
const PassThreshold = 70.0

// Results are the graded outcome of a completed session.
type Results struct {
	Total          int
	Correct        int
	Percentage     float64
	Passed         bool
	ElapsedSeconds int
	TimeTaken      string // MM:SS
}

// ComputeResults builds a Results value. A zero total yields 0%.
func ComputeResults(total, correct, elapsedSeconds int) Results {
	var pct float64
	if total > 0 {
		pct = 100 * float64(correct) / float64(total)
	}
	return Results{
		Total:          total,
		Correct:        correct,
		Percentage:     pct,
		Passed:         pct >= PassThreshold,
		ElapsedSeconds: elapsedSeconds,
		TimeTaken:      FormatElapsed(elapsedSeconds),
	}
}

// Grade compares a recorded answer with the authoritative one. The match is
// exact: no trimming and no case folding.
func Grade(recorded, authoritative string) bool {
	return recorded == authoritative
}
