package gateway

import (
	"regexp"
	"strings"

	"miniminds/internal/compliance/classifier"
)

var smallTalk = []struct {
	pattern *regexp.Regexp
	key     string
}{
	{regexp.MustCompile(`(?i)^(hi|hello|hey|good (morning|afternoon|evening)|bonjour|salut|مرحبا|السلام عليكم)( there)?[\s!.,?]*$`), classifier.KeyGreeting},
	{regexp.MustCompile(`(?i)^(thanks?( you)?( (so|very) much)?|thx|merci( beaucoup)?|شكرا( لك)?)[\s!.,]*$`), classifier.KeyThanks},
	{regexp.MustCompile(`(?i)^(bye|goodbye|bye bye|see you( later)?|au revoir|à bientôt|مع السلامة)[\s!.,]*$`), classifier.KeyFarewell},
}

// smallTalkKey returns the phrase key of a canned reply for trivial
// conversational queries, or "" when none applies.
func smallTalkKey(query string) string {
	q := strings.TrimSpace(query)
	for _, st := range smallTalk {
		if st.pattern.MatchString(q) {
			return st.key
		}
	}
	return ""
}
