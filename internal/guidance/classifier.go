package guidance

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

var classifierTracer = otel.Tracer("busypreacher/pattern-classifier")

// labelRule pairs a predicate with the label it assigns. Rules are evaluated
// in order; the first match wins and lower rules are not consulted.
type labelRule struct {
	label Label
	match func(string) bool
}

// PatternClassifier labels incoming questions and evaluates the crisis and
// mandatory-report signals. It holds no per-request state.
type PatternClassifier struct {
	logger *logging.Logger
	rules  []labelRule
}

var abusivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hate|despise)\s+(god|jesus|christ|christianity|christians|the\s+church)\b`),
	regexp.MustCompile(`(?i)\b(stupid|dumb|idiotic|pathetic|worthless)\s+(religion|faith|church|bible|book|belief)\b`),
	regexp.MustCompile(`(?i)\breligion\s+is\s+(stupid|dumb|fake|a\s+(lie|scam|joke))\b`),
	regexp.MustCompile(`(?i)\b(f+u+c*k+|fuk|fck)\s*(you|off|this|god|jesus)?\b`),
	regexp.MustCompile(`(?i)\b(shut\s+up|screw\s+you|go\s+to\s+hell)\b`),
	regexp.MustCompile(`(?i)\byou('?re|\s+are)\s+(all\s+)?(idiots?|morons?|sheep|brainwashed)\b`),
	regexp.MustCompile(`(?i)\b(bitch|bastard|asshole|dickhead)\b`),
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(buy|order|purchase)\s+now\b`),
	regexp.MustCompile(`(?i)\b(click|visit)\s+(here|this\s+link|my\s+(site|page|profile))\b`),
	regexp.MustCompile(`(?i)\b(crypto(currency)?|bitcoin|forex|nft)\s+(investment|trading|profits?|opportunity)\b`),
	regexp.MustCompile(`(?i)\b(earn|make)\s+\$?\d+[k,]*\s*(per|a|\/)\s*(day|week|month)\b`),
	regexp.MustCompile(`(?i)\bfree\s+(money|gift\s*cards?|iphone)\b`),
	regexp.MustCompile(`(?i)\bhot\s+singles?\b`),
	regexp.MustCompile(`(?i)https?://\S+\s+https?://\S+`),
}

var offTopicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(fix|repair|install)\s+my\s+(car|computer|phone|laptop|printer|dishwasher)\b`),
	regexp.MustCompile(`(?i)\b(recipe|ingredients)\s+for\b`),
	regexp.MustCompile(`(?i)\bwrite\s+(my|me\s+an?)\s+(essay|homework|resume|cover\s+letter|code)\b`),
	regexp.MustCompile(`(?i)\b(stock|share)\s+(tips?|picks?|price)\b`),
	regexp.MustCompile(`(?i)\b(sports?\s+scores?|game\s+last\s+night|fantasy\s+football)\b`),
	regexp.MustCompile(`(?i)\bweather\s+(today|tomorrow|forecast)\b`),
}

// greetingPhrases and followUpPhrases are exact-match sets checked against the
// trimmed, lowercased input.
var greetingPhrases = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hi there": true,
	"hello there": true, "good morning": true, "good afternoon": true,
	"good evening": true, "greetings": true, "howdy": true,
	"hey there": true,
}

var followUpPhrases = map[string]bool{
	"thanks": true, "thank you": true, "thank you so much": true,
	"thanks so much": true, "ok": true, "okay": true, "ok thanks": true,
	"okay thanks": true, "got it": true, "i see": true, "amen": true,
	"that helps": true, "that helped": true, "makes sense": true,
	"bless you": true, "yes": true, "no": true, "wow": true,
}

// biblicalContextPatterns suppress the crisis signal. Words like "blood" and
// "die" appear constantly in ordinary scripture discussion, so this allowlist
// is checked before any crisis keyword.
var biblicalContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(issue|woman)\s+(of|with\s+an?\s+issue\s+of)\s+blood\b`),
	regexp.MustCompile(`(?i)\bblood\s+of\s+(the\s+lamb|jesus|christ)\b`),
	regexp.MustCompile(`(?i)\b(shed|precious|atoning)\s+blood\b`),
	regexp.MustCompile(`(?i)\b(jesus|christ|he)\s+(died|die[ds]?)\s+(for|on\s+the\s+cross)\b`),
	regexp.MustCompile(`(?i)\bdied\s+for\s+(our|my|your)\s+sins?\b`),
	regexp.MustCompile(`(?i)\b(living\s+)?sacrifice[sd]?\b.*\b(altar|offering|lamb|isaac|worship|romans)\b`),
	regexp.MustCompile(`(?i)\b(altar|burnt)\s+(offering|sacrifice)\b`),
	regexp.MustCompile(`(?i)\b(crucifixion|crucified|the\s+cross|calvary|golgotha)\b`),
	regexp.MustCompile(`(?i)\b(passover|communion|lord'?s\s+supper|last\s+supper)\b`),
	regexp.MustCompile(`(?i)\b(to\s+die\s+is\s+gain|absent\s+from\s+the\s+body)\b`),
	regexp.MustCompile(`(?i)\b(lazarus|jairus|resurrection|raised\s+from\s+the\s+dead)\b`),
	regexp.MustCompile(`(?i)\b(meditating|meditate|studying|reading|preaching|sermon)\s+on\b`),
	regexp.MustCompile(`(?i)\b(psalm|genesis|exodus|leviticus|matthew|mark|luke|john|romans|hebrews|revelation)\s+\d+\b`),
}

var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill|hurt|harm|cut)\s*(ing)?\s+myself\b`),
	regexp.MustCompile(`(?i)\b(end|ending|take|taking)\s+(my|it\s+all|my\s+own)\s*(life)?\b.*\b(life|myself)\b`),
	regexp.MustCompile(`(?i)\bsuicid(e|al)\b`),
	regexp.MustCompile(`(?i)\b(want|wish|ready)\s+to\s+die\b`),
	regexp.MustCompile(`(?i)\bdon'?t\s+want\s+to\s+(live|be\s+alive|wake\s+up)\b`),
	regexp.MustCompile(`(?i)\bno\s+reason\s+to\s+(live|go\s+on|keep\s+going)\b`),
	regexp.MustCompile(`(?i)\bbetter\s+off\s+(dead|without\s+me)\b`),
	regexp.MustCompile(`(?i)\b(self\s*-?\s*harm|cutting\s+myself|overdose)\b`),
	regexp.MustCompile(`(?i)\bcan'?t\s+(go\s+on|take\s+(it|this)\s+anymore)\b`),
	regexp.MustCompile(`(?i)\b(slit|slash)\s+my\s+(wrists?|throat)\b`),
	// Broad keywords. Heavy false-positive territory in scripture talk, which
	// is why the allowlist runs first.
	regexp.MustCompile(`(?i)\bblood\b`),
	regexp.MustCompile(`(?i)\b(die|dying)\b`),
	regexp.MustCompile(`(?i)\bsacrifice\s+myself\b`),
}

// suicidePatterns is the narrower subset used to distinguish an explicit
// suicide threat from general crisis language.
var suicidePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsuicid(e|al)\b`),
	regexp.MustCompile(`(?i)\bkill\s*(ing)?\s+myself\b`),
	regexp.MustCompile(`(?i)\b(end|ending|take|taking)\s+my\s+(own\s+)?life\b`),
	regexp.MustCompile(`(?i)\b(want|going|plan(ning)?)\s+to\s+die\b`),
	regexp.MustCompile(`(?i)\boverdose\b`),
	regexp.MustCompile(`(?i)\b(slit|slash)\s+my\s+wrists?\b`),
}

var homicidePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill|murder|shoot|stab|strangle)\s+(him|her|them|my\s+\w+|someone|everyone|people)\b`),
	regexp.MustCompile(`(?i)\bwant\s+(him|her|them)\s+dead\b`),
	regexp.MustCompile(`(?i)\b(hurt|harm)\s+(him|her|them|someone)\s+(bad(ly)?|seriously|for\s+good)\b`),
	regexp.MustCompile(`(?i)\bmake\s+(him|her|them)\s+pay\b.*\b(blood|life|dead)\b`),
	regexp.MustCompile(`(?i)\b(bring|take)\s+a\s+(gun|knife|weapon)\b`),
}

var abuseKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hits?|hitting|beats?|beating|punche?s?|punching|slaps?|slapping|chokes?|choking)\s+me\b`),
	regexp.MustCompile(`(?i)\b(touche?s|touching)\s+me\b.*\b(wrong|private|inappropriate|uncomfortable)\b`),
	regexp.MustCompile(`(?i)\b(molest(s|ed|ing)?|rape[ds]?|raping|sexual(ly)?\s+abus)\w*\b`),
	regexp.MustCompile(`(?i)\b(abus(es?|ed|ing|ive))\s+(me|us)\b`),
	regexp.MustCompile(`(?i)\bbeing\s+abused\b`),
	regexp.MustCompile(`(?i)\b(hurts?|hurting)\s+me\b.*\b(home|house|dad|mom|stepdad|stepmom|parent|uncle|aunt)\b`),
	regexp.MustCompile(`(?i)\b(dad|mom|stepdad|stepmom|stepfather|stepmother|father|mother|parent|uncle|aunt|brother|sister|grandpa|grandma|teacher|coach)\b.*\b(hits?|beats?|hurts?|touche?s|abuses?|punche?s|chokes?|slaps?)\s+me\b`),
	regexp.MustCompile(`(?i)\bafraid\s+to\s+go\s+home\b`),
	regexp.MustCompile(`(?i)\block(s|ed)?\s+me\s+in\b`),
	regexp.MustCompile(`(?i)\bwon'?t\s+(feed|let)\s+me\b`),
}

var minorLanguagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi'?m\s+(a\s+)?(minor|kid|child|teen(ager)?)\b`),
	regexp.MustCompile(`(?i)\bi\s+am\s+(a\s+)?(minor|kid|child|teen(ager)?)\b`),
	regexp.MustCompile(`(?i)\bin\s+(middle|high)\s+school\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})(th|st|nd|rd)\s+grade\b`),
	regexp.MustCompile(`(?i)\bmy\s+(mom|dad|parents?|stepdad|stepmom|stepfather|stepmother|guardian|foster)\b`),
	regexp.MustCompile(`(?i)\bunder\s+18\b`),
}

var seriousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(divorce[ds]?|divorcing|separat(ed|ing|ion))\b`),
	regexp.MustCompile(`(?i)\b(addict(ed|ion)?|alcoholic|alcoholism|relapse[ds]?|gambling\s+problem)\b`),
	regexp.MustCompile(`(?i)\b(grief|grieving|mourning|passed\s+away|funeral)\b`),
	regexp.MustCompile(`(?i)\b(lost\s+my\s+(wife|husband|son|daughter|child|mother|father|mom|dad|baby|job|home))\b`),
	regexp.MustCompile(`(?i)\b(miscarriage|stillbirth|terminal(ly)?\s+ill)\b`),
	regexp.MustCompile(`(?i)\b(affair|cheat(ed|ing)\s+on)\b`),
	regexp.MustCompile(`(?i)\b(depress(ed|ion)|hopeless|despair)\b`),
	regexp.MustCompile(`(?i)\b(bankrupt(cy)?|foreclosure|evict(ed|ion))\b`),
	regexp.MustCompile(`(?i)\b(domestic\s+violence|restraining\s+order)\b`),
}

// agePattern parses self-reported ages like "I'm 15", "im 15", or
// "I am 15 years old".
var agePattern = regexp.MustCompile(`(?i)\bi'?\s?a?m\s+(\d{1,2})(\s+years?\s+old)?\b`)

// NewPatternClassifier creates a classifier with the built-in rule tables.
func NewPatternClassifier(logger *logging.Logger) *PatternClassifier {
	if logger == nil {
		logger = logging.Default()
	}

	c := &PatternClassifier{logger: logger}
	c.rules = []labelRule{
		{label: LabelAbusive, match: matchesAny(abusivePatterns)},
		{label: LabelSpam, match: matchesAny(spamPatterns)},
		{label: LabelOffTopic, match: matchesAny(offTopicPatterns)},
		{label: LabelGreeting, match: matchesPhrase(greetingPhrases)},
		{label: LabelFollowUp, match: matchesPhrase(followUpPhrases)},
	}
	return c
}

// Classify evaluates the label rules in priority order and the independent
// crisis and mandatory-report signals. The signals are always computed even
// when a label rule short-circuits.
func (c *PatternClassifier) Classify(ctx context.Context, input string) Classification {
	_, span := classifierTracer.Start(ctx, "classifier.classify")
	defer span.End()

	cls := Classification{Label: LabelNormal}

	for _, r := range c.rules {
		if r.match(input) {
			cls.Label = r.label
			break
		}
	}

	cls.Crisis = IsCrisis(input)
	cls.MentionedAge = ExtractAge(input)
	cls.MandatoryReport = isMandatoryReport(input, cls.MentionedAge)

	span.SetAttributes(
		attribute.String("classify.label", string(cls.Label)),
		attribute.Bool("classify.crisis", cls.Crisis),
		attribute.Bool("classify.mandatory_report", cls.MandatoryReport),
	)

	if cls.Label != LabelNormal || cls.Crisis || cls.MandatoryReport {
		c.logger.Info("question flagged",
			"label", cls.Label,
			"crisis", cls.Crisis,
			"mandatory_report", cls.MandatoryReport,
		)
	}

	return cls
}

// IsCrisis reports whether text carries crisis language. The biblical-context
// allowlist is checked first and wins over any crisis keyword hit.
func IsCrisis(text string) bool {
	for _, p := range biblicalContextPatterns {
		if p.MatchString(text) {
			return false
		}
	}
	for _, p := range crisisPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsSuicideSpecific reports whether text contains explicit suicide phrasing,
// as opposed to general crisis language. Subject to the same allowlist
// suppression as IsCrisis.
func IsSuicideSpecific(text string) bool {
	for _, p := range biblicalContextPatterns {
		if p.MatchString(text) {
			return false
		}
	}
	for _, p := range suicidePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsHomicideThreat reports whether text expresses intent to harm another
// person.
func IsHomicideThreat(text string) bool {
	for _, p := range homicidePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsSerious reports whether text mentions a serious life situation such as
// divorce, addiction, or major loss.
func IsSerious(text string) bool {
	for _, p := range seriousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractAge parses a self-reported age from the text. Values outside 0-99
// are rejected. Returns nil when no acceptable age is found.
func ExtractAge(text string) *int {
	m := agePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	age, err := strconv.Atoi(m[1])
	if err != nil || age < 0 || age > 99 {
		return nil
	}
	return &age
}

func isMandatoryReport(text string, age *int) bool {
	abusive := false
	for _, p := range abuseKeywordPatterns {
		if p.MatchString(text) {
			abusive = true
			break
		}
	}
	if !abusive {
		return false
	}
	if age != nil && *age < 18 {
		return true
	}
	for _, p := range minorLanguagePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp) func(string) bool {
	return func(s string) bool {
		for _, p := range patterns {
			if p.MatchString(s) {
				return true
			}
		}
		return false
	}
}

func matchesPhrase(phrases map[string]bool) func(string) bool {
	return func(s string) bool {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.TrimRight(s, ".!?")
		s = strings.TrimSpace(s)
		return phrases[s]
	}
}
