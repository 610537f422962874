package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/studychat/internal/catalog"
)

const baseSystemPrompt = `You are a helpful, expert chat assistant. Keep answers practical and concise, and ask clarifying questions when needed. If the user requests learning a lesson, activate step-by-step tutoring. Avoid performing all steps at once; coach the user through each step with feedback and encouragement.`

// outlineGoals is how many goals per step the lesson outline shows.
const outlineGoals = 3

// systemPrompt returns the base prompt, extended with study-mode
// instructions and the lesson outline while a lesson is being coached.
func systemPrompt(state *ConversationState) string {
	if !state.Lesson.Coaching() {
		return baseSystemPrompt
	}
	lesson := state.activeLesson()
	if lesson == nil {
		return baseSystemPrompt
	}

	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	fmt.Fprintf(&b, "\n\nStudy & Learn mode is ACTIVE for lesson '%s'. ", lesson.DisplayTitle())
	b.WriteString("Teach strictly step-by-step using the lesson steps below. ")
	b.WriteString("For each step: 1) ask the user for their attempt, ")
	b.WriteString("2) give targeted feedback and suggest one improvement, ")
	b.WriteString("3) if the user does not improve after that suggestion, move on to the next step. ")
	b.WriteString("Do NOT reveal future steps early. When the final step completes, stop and wait.")

	b.WriteString("\n\nLesson outline (do not reveal more than the current step):\n")
	for i, step := range lesson.Steps {
		goals := step.Goals
		if len(goals) > outlineGoals {
			goals = goals[:outlineGoals]
		}
		fmt.Fprintf(&b, "%d. %s: goals: %s\n", i+1, stepName(step, i), strings.Join(goals, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// coachInstruction is the synthetic message that scopes one coaching reply
// to the step at index. On the second pass the step closes, so the reply
// hands over to the next step (or wraps up the lesson).
func coachInstruction(lesson *catalog.Lesson, index int, improvementSuggested bool) string {
	step, _ := lesson.Step(index)

	var b strings.Builder
	fmt.Fprintf(&b, "You are coaching the user through step '%s'.\n", stepName(step, index))
	fmt.Fprintf(&b, "Goals: %s\n", listOrNone(step.Goals))
	fmt.Fprintf(&b, "Best practices: %s\n", listOrNone(step.BestPractices))
	fmt.Fprintf(&b, "Prompts to ask the user: %s\n", listOrNone(step.PromptsForUser))

	if !improvementSuggested {
		b.WriteString("If the user provided an attempt, give precise feedback and exactly ONE suggested improvement.\n")
	} else {
		b.WriteString("You already suggested an improvement for this step. Acknowledge the user's latest answer briefly; whether or not they improved it, this step is now done.\n")
		if next, ok := lesson.Step(index + 1); ok {
			prompt := "Ask for their initial attempt."
			if len(next.PromptsForUser) > 0 {
				prompt = "Ask: " + next.PromptsForUser[0]
			}
			fmt.Fprintf(&b, "Then introduce the next step, '%s'. %s\n", stepName(next, index+1), prompt)
		} else {
			b.WriteString("This was the final step. Congratulate the user and tell them the lesson wraps up with their next message.\n")
		}
	}
	b.WriteString("Keep messages concise and focused on this step only.")
	return b.String()
}

// openingInstruction answers the message that started a lesson.
func openingInstruction(lesson *catalog.Lesson) string {
	first, _ := lesson.Step(0)

	var b strings.Builder
	fmt.Fprintf(&b, "The user just asked to study '%s'. Give a short overview of what the lesson covers, ", lesson.DisplayTitle())
	fmt.Fprintf(&b, "then introduce step 1, '%s'.\n", stepName(first, 0))
	fmt.Fprintf(&b, "Goals: %s\n", listOrNone(first.Goals))
	if len(first.PromptsForUser) > 0 {
		fmt.Fprintf(&b, "End by asking: %s\n", first.PromptsForUser[0])
	} else {
		b.WriteString("End by asking for their initial attempt at this step.\n")
	}
	b.WriteString("Do not reveal later steps.")
	return b.String()
}

// kickoffMessage introduces a lesson started from the lesson list.
func kickoffMessage(lesson *catalog.Lesson) string {
	title := lesson.DisplayTitle()
	first, ok := lesson.Step(0)
	if !ok {
		return fmt.Sprintf("**Starting lesson: %s**\n\n%s\n\n_This lesson has no steps defined._", title, lesson.Description)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Starting lesson: %s**\n\n", title)
	fmt.Fprintf(&b, "%s\n\n", lesson.Description)
	fmt.Fprintf(&b, "**Step 1 — %s**\n", stepName(first, 0))
	goals := first.Goals
	if len(goals) > 2 {
		goals = goals[:2]
	}
	if len(goals) > 0 {
		fmt.Fprintf(&b, "_Goal(s):_ %s\n\n", strings.Join(goals, "; "))
	}
	prompt := "Share your initial attempt for this step."
	if len(first.PromptsForUser) > 0 {
		prompt = first.PromptsForUser[0]
	}
	fmt.Fprintf(&b, "%s\n\nGo ahead and give it a try!", prompt)
	return b.String()
}

func artifactMessage(title, path string) string {
	return fmt.Sprintf("✔️ %s lesson complete. Slides generated and ready to download.\n\nSaved to `%s`", title, path)
}

const genericCompletionMessage = "✔️ Lesson complete."

func exportFailedMessage(title string) string {
	return fmt.Sprintf("⚠️ %s lesson complete, but the slide deck could not be generated. Your answers were not saved.", title)
}

func stepName(step catalog.Step, index int) string {
	if name := strings.TrimSpace(step.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Step %d", index+1)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}
