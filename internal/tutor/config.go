package tutor

// Config holds completion settings for the tutor handlers.
type Config struct {
	MaxTokens   int
	Temperature float64

	// ArtifactLessonID names the lesson whose completion produces a slide
	// deck.
	ArtifactLessonID string
}

// DefaultConfig returns sensible defaults for tutoring.
func DefaultConfig() Config {
	return Config{
		MaxTokens:        1024,
		Temperature:      0.7,
		ArtifactLessonID: "dmaic",
	}
}
