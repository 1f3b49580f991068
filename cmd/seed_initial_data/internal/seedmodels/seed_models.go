package seedmodels

// SeedOption is one answer choice of a question in the seed file.
type SeedOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// SeedQuestion defines a question item in the JSON seed file.
type SeedQuestion struct {
	Text          string       `json:"question"`
	Difficulty    string       `json:"difficulty"`
	MarksAwarded  float64      `json:"marks_awarded"`
	MarksDeducted float64      `json:"marks_deducted"`
	Explanation   string       `json:"explanation"`
	Solution      string       `json:"solution"`
	Options       []SeedOption `json:"options"`
}

type SeedTopic struct {
	Name      string         `json:"topic_name"`
	Questions []SeedQuestion `json:"questions"`
}

type SeedChapter struct {
	Name   string      `json:"chapter_name"`
	Topics []SeedTopic `json:"topics"`
}

// SeedSubject is the top level entry of the seed file. Each subject is
// seeded in its own transaction.
type SeedSubject struct {
	Name     string        `json:"subject_name"`
	Chapters []SeedChapter `json:"chapters"`
}
