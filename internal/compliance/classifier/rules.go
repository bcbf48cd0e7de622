package classifier

import "miniminds/internal/compliance/models"

// Outcome is what a rule contributes to a classification.
type Outcome struct {
	Category            models.Category
	RiskLevel           models.RiskLevel
	RequiresConsent     bool
	RequiresHumanReview bool
	Reason              string
	Alternative         string
	DataCategories      []string
	Protects            string
}

func blocked(reason, alternative string) Outcome {
	return Outcome{
		Category:            models.CategoryBlocked,
		RiskLevel:           models.RiskProhibited,
		RequiresHumanReview: true,
		Reason:              reason,
		Alternative:         alternative,
		Protects:            models.DataIndividualChild,
	}
}

var (
	safeOutcome = Outcome{
		Category:  models.CategorySafe,
		RiskLevel: models.RiskMinimal,
	}
	aggregateOutcome = Outcome{
		Category:       models.CategoryAggregate,
		RiskLevel:      models.RiskLow,
		DataCategories: []string{models.DataAggregateStatistics},
	}
)

// Reasons and alternatives in English. They double as the lookup keys of the
// phrase dictionary.
const (
	ReasonMedical       = "Health and medical information about individual children is protected and cannot be shared here."
	ReasonContact       = "Contact details of families and children are private and cannot be shared here."
	ReasonBehavior      = "Behavior and activity records of individual children cannot be discussed here."
	ReasonIncident      = "Incident and injury reports about individual children are confidential."
	ReasonCareRoutine   = "Care routine details about individual children, such as naps, meals and diapering, cannot be shared here."
	ReasonProfiling     = "Comparing or profiling individual children is not permitted."
	ReasonPhotos        = "Photos and videos of children cannot be accessed through the assistant."
	ReasonRoster        = "Class rosters and lists of children are protected information."
	ReasonMedication    = "Medication information about individual children is protected health information."
	ReasonStaffSchedule = "Personal schedules and details of staff members are private."
	ReasonNameReference = "This question appears to reference a specific child. Information about individual children cannot be shared here."

	AltMedical       = "Please contact the daycare director or your child's teacher directly about health matters."
	AltContact       = "Please ask the daycare office, which can pass on messages between families."
	AltBehavior      = "Your child's teacher can tell you about your child's day during pickup or through the daily report."
	AltIncident      = "Please contact the daycare director, who can walk you through any incident report concerning your child."
	AltCareRoutine   = "Your child's daily report in the app shows naps, meals and care notes for your own child."
	AltProfiling     = "Every child develops at their own pace. Please schedule a meeting with the teacher to discuss your child's progress."
	AltPhotos        = "Shared photos are available in the Gallery section of the app for the children you are authorized to see."
	AltRoster        = "Please contact the daycare office for questions about class groupings."
	AltMedication    = "Please speak with the daycare director to arrange or review medication for your child."
	AltStaffSchedule = "For general availability, please contact the daycare office."
	AltNameReference = "Please speak with your child's teacher or the daycare director for information about a specific child."
)

// Rule names, reported in metrics and logs.
const (
	RuleMedical       = "medical"
	RuleContact       = "contact_info"
	RuleBehavior      = "behavior_log"
	RuleIncident      = "incident_report"
	RuleCareRoutine   = "care_routine"
	RuleProfiling     = "profiling"
	RulePhotos        = "photos"
	RuleRoster        = "class_roster"
	RuleMedication    = "medication"
	RuleStaffSchedule = "staff_schedule"
	RuleHours         = "hours"
	RuleHowTo         = "how_to"
	RulePolicies      = "policies"
	RuleGreeting      = "greeting"
	RuleAppHelp       = "app_help"
	RuleCounts        = "counts"
	RuleAttendance    = "attendance_rate"
	RuleFees          = "fee_summary"
	RuleMenu          = "weekly_menu"
	RuleEvents        = "upcoming_events"
	RuleAverages      = "averages"
	RuleNameReference = "name_reference"
	RuleDefault       = "default"
)

// BlockedRules target individually identifiable child data.
func BlockedRules() []Rule {
	return []Rule{
		{RuleMedical, Folded(
			`\ballerg\w*`,
			`\bmedical\b`,
			`\bhealth (condition|record|issue|problem|info\w*)s?\b`,
			`\bdiagnos\w*`,
			`\b(asthma|epipen|eczema|seizures?|diabet\w*)\b`,
			`\b(disabilit\w*|special needs)\b`,
		), blocked(ReasonMedical, AltMedical)},
		{RuleContact, Folded(
			`\b(parent|child|kid|famil(y|ies)|guardian|mom|dad|mother|father)('s|s'|s)? (phone|address|e-?mail|contact)`,
			`\b(his|her|their) (phone|address|e-?mail|contact)`,
			`\bemergency contacts?\b`,
			`\bwhere does \w+ live\b`,
		), blocked(ReasonContact, AltContact)},
		{RuleBehavior, Folded(
			`\bbehaviou?r`,
			`\bmisbehav\w*`,
			`\b(tantrums?|biting|bit (another|a|someone)|hitting|kicking|pushing)\b`,
			`\b(activity|behaviou?r) (logs?|reports?|notes?)\b`,
			`\btime-?outs?\b`,
		), blocked(ReasonBehavior, AltBehavior)},
		{RuleIncident, Folded(
			`\bincidents?\b`,
			`\b(injur\w*|accidents?|bruis\w*|scratch(es|ed)?)\b`,
			`\bgot hurt\b`,
		), blocked(ReasonIncident, AltIncident)},
		{RuleCareRoutine, Folded(
			`\b(naps?|napped|nap ?time|slept)\b`,
			`\b(diapers?|diapering|potty|toilet(ing| training))\b`,
			`\bdid (the )?\w+ (eat|sleep|drink)\b`,
			`\bhow (much|long) did (the )?\w+ (eat|sleep|drink)\b`,
			`\b(bottles?|feedings?) (today|this morning|this afternoon)\b`,
		), blocked(ReasonCareRoutine, AltCareRoutine)},
		{RuleProfiling, Folded(
			`\bcompar(e|ed|ing|ison)\b`,
			`\b(better|worse|smarter|faster|slower) than\b`,
			`\b(smartest|slowest|fastest|best|worst|naughtiest|quietest) (child|kid|student|toddler)\b`,
			`\brank(ing|ed)?\b`,
			`\b(child|kid|student)('s)? (profile|personality|development record)\b`,
			`\bbehind (the )?other (children|kids)\b`,
		), blocked(ReasonProfiling, AltProfiling)},
		{RulePhotos, Folded(
			`\b(photos?|pictures?|pics?|videos?|images?) (of|from|with|showing)\b`,
			`\bshow me .*\b(photos?|pictures?|videos?)\b`,
		), blocked(ReasonPhotos, AltPhotos)},
		{RuleRoster, Folded(
			`\b(class )?roster\b`,
			`\bclass list\b`,
			`\bwho (is|are|'s) in (my|the|his|her|their) (class|group|room)\b`,
			`\b(list|names) of (the |all )?(children|kids|students|toddlers)\b`,
			`\bwhich (children|kids|students) (are|were) in\b`,
		), blocked(ReasonRoster, AltRoster)},
		{RuleMedication, Folded(
			`\b(medications?|medicines?|meds|dose|dosage|prescri\w*)\b`,
			`\b(inhaler|antibiotics?|ibuprofen|tylenol|paracetamol|acetaminophen)\b`,
		), blocked(ReasonMedication, AltMedication)},
		{RuleStaffSchedule, Folded(
			`\b(teacher|staff|caregiver|educator|employee|assistant)('s|s'|s)? (personal |home |work )?(schedule|shifts?|address|phone|days? off|vacation)\b`,
			`\bwhen does (teacher|miss|mr|mrs|ms) \w+ (work|leave|arrive|start)\b`,
		), blocked(ReasonStaffSchedule, AltStaffSchedule)},
	}
}

// SafeRules cover informational questions that touch no child data.
func SafeRules() []Rule {
	return []Rule{
		{RuleHours, Folded(
			`\b(opening |operating |business )?hours\b`,
			`\bwhat time (do|does|are) (you|the daycare|it) (open|close)\b`,
			`\b(open|closed|close) (on|during|at|today|tomorrow)\b`,
		), safeOutcome},
		{RuleHowTo, Folded(
			`^how (do|can|should) (i|we)\b`,
			`\bhow to\b`,
		), safeOutcome},
		{RulePolicies, Folded(
			`\bpolic(y|ies)\b`,
			`\b(handbook|procedures?|guidelines)\b`,
			`\b(late pick-?up|drop-?off) (rules?|fees?|times?)\b`,
		), safeOutcome},
		{RuleGreeting, Folded(
			`^(hi|hello|hey|good (morning|afternoon|evening)|bonjour|salut)\b`,
			`^(thanks|thank you|merci)\b`,
		), safeOutcome},
		{RuleAppHelp, Folded(
			`\b(the app|this app|application|my account|password|log ?in|sign ?in|settings|notifications?)\b`,
		), safeOutcome},
	}
}

// AggregateRules cover statistical or summary questions.
func AggregateRules() []Rule {
	return []Rule{
		{RuleCounts, Folded(
			`\bhow many\b`,
			`\b(total|number) of\b`,
			`\bheadcount\b`,
		), aggregateOutcome},
		{RuleAttendance, Folded(
			`\battendance (rate|percentage|summary|stats|statistics|trends?)\b`,
		), aggregateOutcome},
		{RuleFees, Folded(
			`\b(fees?|tuition|billing|payments?|invoices?) (summary|overview|totals?|breakdown)\b`,
		), aggregateOutcome},
		{RuleMenu, Folded(
			`\bmenu\b`,
			`\bwhat('s| is) for (lunch|snack|breakfast)\b`,
		), aggregateOutcome},
		{RuleEvents, Folded(
			`\b(upcoming|next|future) (events?|activities|field trips?|holidays?)\b`,
			`\bevents? (this|next) (week|month)\b`,
			`\b(calendar|schedule) of events\b`,
		), aggregateOutcome},
		{RuleAverages, Folded(
			`\baverages?\b`,
			`\bpercentage\b`,
		), aggregateOutcome},
	}
}
