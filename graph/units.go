package graph

import "strings"

func isQuestion(p string) bool {
	l := strings.ToLower(p)
	return strings.HasPrefix(l, "q:") || strings.HasPrefix(l, "question")
}

func isAnswer(p string) bool {
	l := strings.ToLower(p)
	return strings.HasPrefix(l, "a:") || strings.HasPrefix(l, "answer")
}

// PairUnits groups paragraphs into question/answer units. When any
// paragraph carries a question label ("Q:" or "Question"), each answer
// ("A:" or "Answer") closes the most recent open question and unlabelled
// paragraphs are ignored. Otherwise consecutive paragraphs are paired and
// a trailing odd paragraph is dropped.
func PairUnits(paragraphs []string) []TextUnit {
	var paras []string
	labelled := false
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paras = append(paras, p)
		labelled = labelled || isQuestion(p)
	}

	var units []TextUnit
	if !labelled {
		for i := 0; i+1 < len(paras); i += 2 {
			units = append(units, TextUnit{Question: paras[i], Answer: paras[i+1]})
		}
		return units
	}

	var question string
	for _, p := range paras {
		switch {
		case isQuestion(p):
			question = p
		case isAnswer(p):
			if question != "" {
				units = append(units, TextUnit{Question: question, Answer: p})
				question = ""
			}
		}
	}
	return units
}
