package fields

import (
	"regexp"
	"strings"
)

// rule is one independently triable extraction attempt for a field: a
// pattern, the capture group carrying the value, and optional clean and
// validate steps.
type rule struct {
	re       *regexp.Regexp
	group    int
	clean    func(string) string
	validate func(string) bool
}

// firstMatch evaluates an ordered rule list against the text. The first rule
// that produces a non-empty, validated value wins and the field is locked;
// later rules are never consulted. Labelled patterns therefore sit before
// permissive contextual ones in every table below.
func firstMatch(text string, rules []rule) string {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil || len(m) <= r.group {
			continue
		}
		v := strings.TrimSpace(m[r.group])
		if r.clean != nil {
			v = r.clean(v)
		}
		if v == "" {
			continue
		}
		if r.validate != nil && !r.validate(v) {
			continue
		}
		return v
	}
	return ""
}

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func cleanLabelValue(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".,;:-")
	return strings.TrimSpace(reInnerSpaces.ReplaceAllString(s, " "))
}

func cleanPhone(s string) string {
	return strings.TrimSpace(s)
}

func phoneShaped(s string) bool {
	if reISODate.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8 && digits <= 15
}

func minLetters(n int) func(string) bool {
	return func(s string) bool {
		letters := 0
		for _, r := range s {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				letters++
			}
		}
		return letters >= n
	}
}

func minLen(n int) func(string) bool {
	return func(s string) bool { return len(s) >= n }
}

// Per-field rule tables, most specific first.
var (
	invoiceNumberRules = []rule{
		{re: regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|num|#)?\s*[:#]\s*([A-Za-z0-9/-]{3,20})`), group: 1, clean: strings.ToUpper},
		{re: regexp.MustCompile(`\b(INV[-/0-9A-Z]{3,16})\b`), group: 1},
	}

	borrowerIDRules = []rule{
		{re: regexp.MustCompile(`(?i)student\s*id\s*(?:no\.?|number)?\s*[:#]?\s*([A-Za-z0-9-]+)`), group: 1, clean: StripNonAlnum, validate: minLen(4)},
		{re: regexp.MustCompile(`(?i)borrower\s*id\s*[:#]?\s*([A-Za-z0-9-]+)`), group: 1, clean: StripNonAlnum, validate: minLen(4)},
		{re: regexp.MustCompile(`\b(STU[0-9]{4,10})\b`), group: 1},
	}

	borrowerNameRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:borrower|student)(?:\s*name)?\s*:\s*([^,\n]{3,60})`), group: 1, clean: CleanName},
		{re: regexp.MustCompile(`(?i)borrowed\s+by\s*:?\s*([^\n]{3,60})`), group: 1, clean: CleanName},
		{re: regexp.MustCompile(`(?im)^name\s*:\s*([^\n]{3,60})`), group: 1, clean: CleanName},
	}

	issuerNameRules = []rule{
		{re: regexp.MustCompile(`(?i)issued\s+by(?:\s+staff)?\s*:?\s*([^\n]{3,60})`), group: 1, clean: CleanName},
		{re: regexp.MustCompile(`(?i)staff(?:\s*name)?\s*:\s*([^\n]{3,60})`), group: 1, clean: CleanName},
		{re: regexp.MustCompile(`(?i)(?:issuer|lender|authorized\s+by)\s*:\s*([^\n]{3,60})`), group: 1, clean: CleanName},
	}

	issuerDesignationRules = []rule{
		{re: regexp.MustCompile(`(?i)staff\s*id\s*[:#]?\s*([A-Za-z0-9-]+)`), group: 1, clean: StripNonAlnum, validate: minLen(3)},
		{re: regexp.MustCompile(`(?i)designation\s*:\s*([^\n]{2,40})`), group: 1, clean: cleanLabelValue},
	}

	borrowerEmailRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:student|borrower)?\s*e-?mail\s*(?:address)?\s*:\s*(\S+)`), group: 1, validate: ValidEmail},
		{re: reFindEmail, group: 0, validate: ValidEmail},
	}

	supervisorEmailRules = []rule{
		{re: regexp.MustCompile(`(?i)supervisor\s*e-?mail\s*:\s*(\S+)`), group: 1, validate: ValidEmail},
	}

	phoneRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:phone|tel|telephone|mobile|contact)\s*(?:no\.?|number)?\s*:\s*([+0-9()\s.-]{7,20})`), group: 1, clean: cleanPhone, validate: phoneShaped},
		{re: regexp.MustCompile(`(\+[0-9][0-9()\s.-]{7,14}[0-9])`), group: 1, clean: cleanPhone, validate: phoneShaped},
	}

	departmentRules = []rule{
		{re: regexp.MustCompile(`(?i)dep(?:t\.?|artment)\s*(?:of)?\s*:?\s*([^\n]{2,50})`), group: 1, clean: cleanLabelValue, validate: minLetters(2)},
		{re: regexp.MustCompile(`(?i)faculty\s*(?:of)?\s*:?\s*([^\n]{2,50})`), group: 1, clean: cleanLabelValue, validate: minLetters(2)},
	}

	levelRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:year|level|class)\s*:\s*([^\n]{1,20})`), group: 1, clean: cleanLabelValue},
	}

	addressRules = []rule{
		{re: regexp.MustCompile(`(?i)address\s*:\s*([^\n]{5,100})`), group: 1, clean: cleanLabelValue},
	}

	projectRules = []rule{
		{re: regexp.MustCompile(`(?i)project\s*(?:name|title)?\s*:\s*([^\n]{3,60})`), group: 1, clean: cleanLabelValue, validate: minLetters(3)},
	}

	supervisorNameRules = []rule{
		{re: regexp.MustCompile(`(?i)supervisor(?:\s*name)?\s*:\s*([^\n]{3,60})`), group: 1, clean: CleanName},
	}

	purposeRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:purpose|reason)(?:\s*(?:of|for)\s*(?:loan|lending|borrowing))?\s*:\s*([^\n]{3,80})`), group: 1, clean: cleanLabelValue, validate: minLetters(3)},
	}

	locationRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:location|venue|lab|room)\s*:\s*([^\n]{2,60})`), group: 1, clean: cleanLabelValue},
	}

	dueDateRules = []rule{
		{re: regexp.MustCompile(`(?i)(?:due|return)\s*(?:date|by|on)?\s*:\s*([^\n]{4,30})`), group: 1, clean: NormalizeDate},
		{re: regexp.MustCompile(`(?i)due\s+(?:date|by|on)\s+([^\n]{4,30})`), group: 1, clean: NormalizeDate},
		{re: regexp.MustCompile(`\b([A-Z][a-z]+ \d{1,2},? \d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})\b`), group: 1, clean: NormalizeDate},
	}

	notesRules = []rule{
		{re: regexp.MustCompile(`(?i)\bnotes?\s*:\s*([^\n]{3,200})`), group: 1, clean: cleanLabelValue},
	}
)

// fallbackRules is the minimal secondary grammar used when the primary
// cascade blows up or yields nothing on degenerate text: name, id and email
// only, at low confidence.
var (
	fallbackNameRules = []rule{
		{re: regexp.MustCompile(`(?im)^\s*(?:name|borrower|student)\s*:?\s*([^\n]{3,60})$`), group: 1, clean: CleanName},
	}
	fallbackIDRules = []rule{
		{re: regexp.MustCompile(`\b([A-Z]{2,4}[0-9]{4,10})\b`), group: 1},
	}
	fallbackEmailRules = []rule{
		{re: reFindEmail, group: 0, validate: ValidEmail},
	}
)
