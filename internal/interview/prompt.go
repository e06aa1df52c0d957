package interview

import (
	"fmt"
	"strings"

	_ "embed"
)

//go:embed analysis_prompt.md
var analysisTemplate string

const persona = "You are Scout, an AI hiring assistant conducting a technical screening interview. Your persona is that of a sharp, experienced senior engineer."

// buildInitialQuestionPrompt asks for one opening question about the topic.
// With resume snippets present the model is told to synthesize the declared
// skill with the candidate's actual experience; without them it generates an
// open-ended question from the skill alone.
func buildInitialQuestionPrompt(topic string, snippets []string) string {
	var b strings.Builder

	b.WriteString(persona)
	b.WriteString("\n\n")

	if len(snippets) > 0 {
		fmt.Fprintf(&b, "Generate exactly one insightful technical question about %s that synthesizes the candidate's declared skill with the projects and experience mentioned in their resume.\n", topic)
		b.WriteString("Rules:\n")
		b.WriteString("1. Base the question on the resume context below, referring to specific details where possible.\n")
		b.WriteString("2. Ask a \"how\", \"why\" or \"describe\" question that probes core principles, trade-offs and practical application.\n")
		b.WriteString("3. Avoid simple definitions or questions answerable without the resume context.\n\n")
		writeSnippets(&b, topic, snippets)
	} else {
		fmt.Fprintf(&b, "A candidate is applying for a software engineering role and has listed %s in their tech stack.\n", topic)
		b.WriteString("Generate exactly one insightful, open-ended technical question to gauge their skill.\n")
		b.WriteString("Rules:\n")
		b.WriteString("1. Start the question with \"How\", \"Why\" or \"Describe\"; avoid simple definitions.\n")
		b.WriteString("2. Probe for understanding of core principles, trade-offs and practical application, not textbook knowledge.\n\n")
	}

	b.WriteString("Respond with the question text only, no numbering, no introduction, no commentary.")

	return b.String()
}

// buildEasierQuestionPrompt asks for a more fundamental question on the same
// topic after the candidate found the original too difficult.
func buildEasierQuestionPrompt(topic, original string, snippets []string) string {
	var b strings.Builder

	b.WriteString(persona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "A candidate found the following question too difficult:\n\"%s\"\n\n", original)
	fmt.Fprintf(&b, "Generate a single, more fundamental and easier question on the same %s topic. ", topic)
	b.WriteString("For example, if the original question was about advanced database indexing strategies, a good easier question would be about the basic purpose of database indexes.\n\n")

	if len(snippets) > 0 {
		writeSnippets(&b, topic, snippets)
	}

	b.WriteString("Respond with the question text only, no numbering, no introduction, no commentary.")

	return b.String()
}

// buildAnalysisPrompt produces the combined analysis-and-next-step prompt.
// One call covers both the sentiment of the given answer and the text of the
// next question, bounding outward calls to one per answer.
func buildAnalysisPrompt(question, answer, nextTopic string) string {
	prompt := strings.ReplaceAll(analysisTemplate, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
	prompt = strings.ReplaceAll(prompt, "{{NEXT_TOPIC}}", nextTopic)
	return prompt
}

// buildSummaryPrompt asks for the final performance summary over the whole transcript.
func buildSummaryPrompt(profile CandidateProfile, items []QAItem) string {
	var b strings.Builder

	b.WriteString("You are a senior engineering manager reviewing a candidate's technical screening.\n")
	fmt.Fprintf(&b, "The candidate applied for the position of %s and declared the following tech stack: %s.\n\n",
		profile.Position, strings.Join(profile.Skills, ", "))

	b.WriteString("QUESTIONS AND ANSWERS:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. Question (%s): %s\n", i+1, item.Topic, item.Question)
		answer := item.Answer
		if answer == "" {
			answer = "No answer provided."
		}
		fmt.Fprintf(&b, "   Sentiment: %s\n", item.Sentiment)
		fmt.Fprintf(&b, "   Answer: %s\n", answer)
		if item.Easier {
			b.WriteString("   Note: the candidate requested an easier question here.\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Write a concise, professional assessment of the candidate's performance: ")
	b.WriteString("one sentence of overall impression, 1-2 strengths and 1-2 areas for improvement, considering the sentiment of each answer. Keep the tone objective and constructive.\n\n")
	b.WriteString("Respond with only a valid JSON object, no markdown and no commentary:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"assessment\": \"the written assessment\",\n")
	b.WriteString("  \"recommendation\": \"advance\" | \"consider\" | \"reject\"\n")
	b.WriteString("}")

	return b.String()
}

func writeSnippets(b *strings.Builder, topic string, snippets []string) {
	fmt.Fprintf(b, "Context from the candidate's resume related to %s:\n", topic)
	for _, snippet := range snippets {
		fmt.Fprintf(b, "- %s\n", snippet)
	}
	b.WriteString("\n")
}

// fallbackQuestion is the deterministic question template used when the
// gateway cannot produce a usable question for the topic.
func fallbackQuestion(topic string) string {
	return fmt.Sprintf("Could you describe a challenging project where you worked with %s, and walk me through how you approached the hardest part?", topic)
}

// fallbackEasierQuestion is the deterministic template for the easier variant.
func fallbackEasierQuestion(topic string) string {
	return fmt.Sprintf("Could you explain the core concepts of %s and where you have applied them in practice?", topic)
}
