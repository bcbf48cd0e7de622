package classifier

import "regexp"

var (
	// Name followed by an activity or status verb: "Emma napped", "Noah is sick".
	nameThenVerb = regexp.MustCompile(`\b([A-Z][a-z]+)\s+(?:is|was|has|had|did|does|ate|eats|slept|napped|played|cried|went|seemed|seems|looked|looks|behaved|felt|feels|got|needs|needed|learned|drew|fell|bit|hit)\b`)

	// Possessive name followed by a status noun: "Leo's day", "Mia's mood".
	nameStatus = regexp.MustCompile(`\b([A-Z][a-z]+)'s\s+(?i:mood|day|lunch|nap|progress|behaviou?r|health|report)\b`)

	// Auxiliary, name, then an activity or status word: "Did Emma eat?",
	// "How is Noah doing?". A bare "Is English taught" does not qualify.
	verbThenName = regexp.MustCompile(`\b(?i:did|does|has|is|was|will)\s+([A-Z][a-z]+)\s+(?i:eat|eating|nap|napping|sleep|sleeping|play|playing|cry|crying|feel|feeling|doing|behave|behaving|look|looking|seem|need|needs|get|getting|go|going|have|had|been|learn|learning|okay|ok|fine|well|better|sick|ill|tired|hurt|upset|sad|happy)\b`)
)

// notNames are capitalized words that routinely appear next to these verbs
// without naming anyone.
var notNames = toSet(
	"The", "This", "That", "These", "Those", "There", "Here", "It", "I", "We", "You",
	"He", "She", "They", "My", "Our", "Your", "His", "Her", "Their", "Who", "What",
	"Which", "When", "Where", "Why", "How", "Is", "Are", "Was", "Were", "Can", "Could",
	"Would", "Should", "Will", "Do", "Does", "Did", "Has", "Have", "Had", "Please",
	"Hello", "Hi", "Hey", "Thanks", "Today", "Tomorrow", "Yesterday", "Tonight",
	"Everyone", "Anyone", "Someone", "Nobody", "Everything", "Anything", "Lunch",
	"Breakfast", "Snack", "Daycare", "Class", "Teacher", "School", "Mom", "Dad",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"January", "February", "March", "April", "May", "June", "July", "August",
	"September", "October", "November", "December", "Christmas", "Easter",
	"Good", "Great", "Nice", "English", "French", "Arabic", "Spanish", "Music", "Art",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ReferencesName reports whether the text looks like it names a specific
// person next to an activity or status verb. It reads the original
// capitalization, so callers must not pass case-folded text.
func ReferencesName(in Input) bool {
	for _, re := range []*regexp.Regexp{nameThenVerb, nameStatus, verbThenName} {
		for _, m := range re.FindAllStringSubmatch(in.Original, -1) {
			if _, skip := notNames[m[1]]; !skip {
				return true
			}
		}
	}
	return false
}
