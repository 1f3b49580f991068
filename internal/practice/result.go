package practice

import (
	"sort"

	"practice-engine/internal/domain"
)

// TopicBreakdown groups the attempts that carry the same topic tag.
type TopicBreakdown struct {
	TopicID   string `json:"topic_id"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Accuracy  int    `json:"accuracy"`
}

// Result is the end-of-session summary.
type Result struct {
	SessionID      string           `json:"session_id"`
	Scope          domain.Scope     `json:"scope"`
	Attempted      int              `json:"attempted"`
	Correct        int              `json:"correct"`
	Incorrect      int              `json:"incorrect"`
	Skipped        int              `json:"skipped"`
	Accuracy       int              `json:"accuracy"`
	Mastered       bool             `json:"mastered"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
	TimeExpired    bool             `json:"time_expired"`
	Score          float64          `json:"score"`
	MaxScore       float64          `json:"max_score"`
	Breakdown      []TopicBreakdown `json:"breakdown"`
}

// Finalize summarizes the session. It only reads the state, so repeated calls
// on the same state return equal results.
func Finalize(s *SessionState) Result {
	snap := s.Progress()

	var score, maxScore float64
	groups := make(map[string]*TopicBreakdown)
	questionMarks := make(map[string]float64, len(s.Pool))
	for _, q := range s.Pool {
		questionMarks[q.ID] = q.MarksAwarded
	}

	for _, a := range s.Attempts {
		score += a.Marks
		maxScore += questionMarks[a.QuestionID]

		if a.TopicID == "" {
			continue
		}
		g, ok := groups[a.TopicID]
		if !ok {
			g = &TopicBreakdown{TopicID: a.TopicID}
			groups[a.TopicID] = g
		}
		g.Attempted++
		if a.IsCorrect {
			g.Correct++
		} else {
			g.Incorrect++
		}
	}

	breakdown := make([]TopicBreakdown, 0, len(groups))
	for _, g := range groups {
		g.Accuracy = Accuracy(g.Correct, g.Attempted)
		breakdown = append(breakdown, *g)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].TopicID < breakdown[j].TopicID
	})

	return Result{
		SessionID:      s.ID,
		Scope:          s.Scope,
		Attempted:      snap.Attempted,
		Correct:        snap.Correct,
		Incorrect:      snap.Incorrect,
		Skipped:        snap.Skipped,
		Accuracy:       snap.Accuracy,
		Mastered:       snap.Mastered,
		ElapsedSeconds: s.Timer.Elapsed,
		TimeExpired:    s.Timer.Expired(),
		Score:          score,
		MaxScore:       maxScore,
		Breakdown:      breakdown,
	}
}
