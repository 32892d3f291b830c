package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

const helpText = "👋 Hello! Send me a PDF or TXT file with numbered multiple-choice questions " +
	"and I'll quiz you on it.\n\n" +
	"Put an answer key in the document caption (one \"1 B\" row per line) to grade against it."

const unverifiedNote = "(unverified answer)"

// a|<session>|<ordinal>|<option>
func callbackData(sessionID string, ordinal, option int) string {
	return "a|" + sessionID + "|" + strconv.Itoa(ordinal) + "|" + strconv.Itoa(option)
}

func parseCallback(data string) (sessionID string, ordinal, option int, ok bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != "a" || parts[1] == "" {
		return "", 0, 0, false
	}
	ordinal, err := strconv.Atoi(parts[2])
	if err != nil || ordinal < 1 {
		return "", 0, 0, false
	}
	option, err = strconv.Atoi(parts[3])
	if err != nil || option < 0 {
		return "", 0, 0, false
	}
	return parts[1], ordinal, option, true
}

func letter(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}

func buttonLabel(i int, opt string) string {
	r := []rune(opt)
	if len(r) > 40 {
		opt = string(r[:39]) + "…"
	}
	return letter(i) + ") " + opt
}

func formatQuestion(p service.Prompt) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "❓ Question %d/%d\n\n%s\n", p.Ordinal, p.Total, p.Text)
	for i, opt := range p.Options {
		fmt.Fprintf(&sb, "\n%s) %s", letter(i), opt)
	}
	return sb.String()
}

func formatVerdict(rec quiz.AnswerRecord) string {
	if rec.Correct == nil {
		return "❔ No answer is known for this question, so it was not scored."
	}
	var text string
	if rec.IsCorrect {
		text = "✅ Correct!"
	} else {
		text = "❌ Wrong. Correct answer: " + *rec.Correct
	}
	if rec.Provenance == extract.ProvenanceFallback {
		text += " " + unverifiedNote
	}
	return text
}

func formatReport(rep quiz.Report) string {
	var sb strings.Builder
	pct := 0
	if rep.Total > 0 {
		pct = rep.Score * 100 / rep.Total
	}
	fmt.Fprintf(&sb, "🏁 Quiz finished!\n\n📊 Score: %d/%d (%d%%)\n", rep.Score, rep.Total, pct)
	unverified, ungraded := 0, 0
	for _, r := range rep.Records {
		mark := "❌"
		switch {
		case r.Correct == nil:
			mark = "❔"
			ungraded++
		case r.IsCorrect:
			mark = "✅"
		}
		if r.Provenance == extract.ProvenanceFallback {
			unverified++
		}
		fmt.Fprintf(&sb, "\n%d. %s %s", r.Ordinal, mark, r.Chosen)
	}
	if unverified > 0 {
		fmt.Fprintf(&sb, "\n\n⚠️ %d answer(s) were checked against an unverified answer.", unverified)
	}
	if ungraded > 0 {
		fmt.Fprintf(&sb, "\n❔ %d question(s) had no known answer.", ungraded)
	}
	return sb.String()
}

func errorText(err error) string {
	switch {
	case errors.Is(err, extract.ErrParseFailure):
		return "❌ I could not read that document. Is it a valid PDF or text file?"
	case errors.Is(err, service.ErrNoQuestionsFound):
		return "🤷 I found no multiple-choice questions in that document."
	case errors.Is(err, quiz.ErrEmptyQuestionSet):
		return "🤷 There are no questions to play."
	case errors.Is(err, quiz.ErrUnknownSession):
		return "⌛ This quiz has expired. Send the document again to restart."
	case errors.Is(err, quiz.ErrStaleSubmission):
		return "That question was already answered."
	case errors.Is(err, quiz.ErrSessionNotFinished):
		return "The quiz is not finished yet."
	}
	return "⚠️ Something went wrong. Please try again."
}
