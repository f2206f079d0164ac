package lingen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
)

const systemPrompt = `You are a lexicographer's assistant. For the given English word you return strict JSON with keys: partOfSpeech (string), synonyms (array of strings), antonyms (array of strings), relatedWords (array of strings), wordForms (object mapping form names like "noun", "verb", "adjective", "adverb" to words). Return JSON only, no prose, no markdown fences. Omit unknown values with empty strings or arrays.`

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s\n", req.Word)
	if req.Meaning != "" {
		fmt.Fprintf(&b, "Meaning: %s\n", req.Meaning)
	}
	if req.CourseLevel != "" {
		fmt.Fprintf(&b, "Learner level: %s\n", req.CourseLevel)
	}
	b.WriteString("Generate the linguistic data JSON.")
	return b.String()
}

// cleanJSON strips markdown fences and surrounding prose from model output,
// keeping the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func parseResult(text, word string) (*Result, error) {
	cleaned := cleanJSON(text)

	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, eris.Wrapf(err, "lingen: parse response for %q", word)
	}

	res.Synonyms = cleanList(res.Synonyms)
	res.Antonyms = cleanList(res.Antonyms)
	res.RelatedWords = cleanList(res.RelatedWords)
	res.PartOfSpeech = strings.TrimSpace(res.PartOfSpeech)
	for k, v := range res.WordForms {
		if strings.TrimSpace(v) == "" {
			delete(res.WordForms, k)
		}
	}
	return &res, nil
}

func cleanList(in []string) []string {
	trimmed := lo.Map(in, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Uniq(lo.Compact(trimmed))
}
