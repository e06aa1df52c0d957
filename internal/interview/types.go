package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State identifies the position of a session in the interview flow.
type State string

const (
	StateAwaitingProfile State = "awaiting_profile"
	StateAskingQuestion  State = "asking_question"
	StateAwaitingAnswer  State = "awaiting_answer"
	StateAnalyzingAnswer State = "analyzing_answer"
	StateAskingFollowUp  State = "asking_follow_up"
	StateAskingNextTopic State = "asking_next_topic"
	StateConcluding      State = "concluding"
	StateConcluded       State = "concluded"
)

// Sentiment classifies how a candidate's answer came across.
type Sentiment string

const (
	SentimentUnscored  Sentiment = "unscored"
	SentimentConfident Sentiment = "confident"
	SentimentNeutral   Sentiment = "neutral"
	SentimentUncertain Sentiment = "uncertain"
)

// ParseSentiment maps a model-supplied label onto the sentiment enumeration.
// "hesitant" is accepted as an alias for uncertain.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confident":
		return SentimentConfident, nil
	case "neutral":
		return SentimentNeutral, nil
	case "uncertain", "hesitant":
		return SentimentUncertain, nil
	default:
		return "", fmt.Errorf("unknown sentiment label: %q", s)
	}
}

// Recommendation is the overall hiring signal attached to a finished session.
type Recommendation string

const (
	RecommendationAdvance  Recommendation = "advance"
	RecommendationConsider Recommendation = "consider"
	RecommendationReject   Recommendation = "reject"
	// RecommendationReview marks summaries produced by the degraded fallback
	// path, where no model assessment is available.
	RecommendationReview Recommendation = "review"
)

// ParseRecommendation maps a model-supplied label onto the recommendation enumeration.
func ParseRecommendation(s string) (Recommendation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "advance":
		return RecommendationAdvance, nil
	case "consider":
		return RecommendationConsider, nil
	case "reject":
		return RecommendationReject, nil
	default:
		return "", fmt.Errorf("unknown recommendation label: %q", s)
	}
}

// CandidateProfile holds the candidate's self-declared details. It is
// immutable once the session starts; the core treats the contact fields as
// opaque strings.
type CandidateProfile struct {
	FullName   string   `json:"full_name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone_number"`
	Experience int      `json:"experience_years"`
	Position   string   `json:"desired_position"`
	Location   string   `json:"current_location"`
	Skills     []string `json:"tech_stack"`
	// Resume is the optional free-text resume content. It feeds the context
	// provider and is not persisted with the interview record.
	Resume string `json:"-"`
}

// QAItem is one question asked during the interview together with the
// candidate's answer and its derived sentiment. Parent is the index of the
// item this one follows up on, or -1 for top-level questions.
type QAItem struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sentiment Sentiment `json:"sentiment"`
	Topic     string    `json:"topic"`
	Parent    int       `json:"parent"`
	Easier    bool      `json:"easier,omitempty"`
	// Fallback marks questions produced by the deterministic template after
	// the gateway failed, for later inspection.
	Fallback bool `json:"fallback_generated,omitempty"`
}

// Summary is the assessment derived when a session concludes.
type Summary struct {
	Assessment     string         `json:"assessment"`
	Recommendation Recommendation `json:"recommendation"`
	Fallback       bool           `json:"fallback,omitempty"`
}

// ErrInvalidProfile rejects profiles that cannot start an interview.
var ErrInvalidProfile = errors.New("candidate profile must declare at least one skill")

// Session owns the conversation state of a single candidate interview. A
// session is exclusively owned by the caller driving it; it must not be
// mutated concurrently.
type Session struct {
	ID        string           `json:"session_id"`
	Profile   CandidateProfile `json:"candidate"`
	Items     []QAItem         `json:"items"`
	State     State            `json:"state"`
	Summary   *Summary         `json:"summary,omitempty"`
	StartedAt time.Time        `json:"started_at"`

	topicIdx       int
	topicQuestions int
}

// NewSession creates a session in the AwaitingProfile state. Profiles without
// declared skills never enter the state machine.
func NewSession(profile CandidateProfile) (*Session, error) {
	skills := make([]string, 0, len(profile.Skills))
	for _, skill := range profile.Skills {
		if s := strings.TrimSpace(skill); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		return nil, ErrInvalidProfile
	}
	profile.Skills = skills

	return &Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		State:     StateAwaitingProfile,
		StartedAt: time.Now(),
	}, nil
}

// Topic returns the skill topic currently under discussion.
func (s *Session) Topic() string {
	return s.Profile.Skills[s.topicIdx]
}

// NextTopic returns the topic the round-robin rotation would advance to.
func (s *Session) NextTopic() string {
	return s.Profile.Skills[(s.topicIdx+1)%len(s.Profile.Skills)]
}

// TopicQuestions returns the number of questions asked on the current topic.
func (s *Session) TopicQuestions() int {
	return s.topicQuestions
}

// Concluded reports whether the session reached its terminal state.
func (s *Session) Concluded() bool {
	return s.State == StateConcluded
}

// advanceTopic rotates to the next declared skill, visiting topics in
// declaration order before any repeats.
func (s *Session) advanceTopic() string {
	s.topicIdx = (s.topicIdx + 1) % len(s.Profile.Skills)
	s.topicQuestions = 0
	return s.Topic()
}

func (s *Session) appendItem(item QAItem) int {
	s.Items = append(s.Items, item)
	s.topicQuestions++
	return len(s.Items) - 1
}

// rootOf walks the parent chain of the item at index i to its top-level ancestor.
func (s *Session) rootOf(i int) int {
	for s.Items[i].Parent >= 0 {
		i = s.Items[i].Parent
	}
	return i
}

// followUpsOf counts the items descending from the top-level item at index root.
func (s *Session) followUpsOf(root int) int {
	count := 0
	for i := range s.Items {
		if s.Items[i].Parent >= 0 && s.rootOf(i) == root {
			count++
		}
	}
	return count
}
