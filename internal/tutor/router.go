package tutor

import (
	"strings"

	"github.com/abhisek/studychat/internal/catalog"
)

// triggerPhrases mark a message as a request to study something.
var triggerPhrases = []string{"teach me", "learn", "study"}

// Router detects lesson-start requests in the latest user message.
type Router struct {
	loader catalog.Loader
}

// NewRouter creates a Router that fills an empty catalog from loader.
func NewRouter(loader catalog.Loader) *Router {
	return &Router{loader: loader}
}

// Route starts a lesson when the latest message is a user message that
// contains a trigger phrase and a lesson title. Any lesson in progress is
// replaced. It returns the started lesson id, or "" when state is unchanged.
func (r *Router) Route(state *ConversationState) string {
	r.ensureCatalog(state)

	text, ok := state.latestUser()
	if !ok {
		return ""
	}
	lesson := matchLesson(text, state.Catalog)
	if lesson == nil {
		return ""
	}
	state.Lesson = startLessonState(lesson.ID)
	return lesson.ID
}

func (r *Router) ensureCatalog(state *ConversationState) {
	if len(state.Catalog) == 0 && r.loader != nil {
		state.Catalog = r.loader.Load()
	}
}

// matchLesson returns the lesson whose lowercased title occurs in text, if
// text asks to study. The longest matching title wins; equal lengths go to
// the first in Catalog.Sorted order.
func matchLesson(text string, cat catalog.Catalog) *catalog.Lesson {
	lowered := strings.ToLower(text)
	if !containsAny(lowered, triggerPhrases) {
		return nil
	}

	var (
		best      *catalog.Lesson
		bestTitle string
	)
	for _, l := range cat.Sorted() {
		title := strings.ToLower(l.DisplayTitle())
		if title == "" || !strings.Contains(lowered, title) {
			continue
		}
		if best == nil || len(title) > len(bestTitle) {
			best, bestTitle = l, title
		}
	}
	return best
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
