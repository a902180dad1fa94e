package extract

import (
	"regexp"
	"strings"
	"time"
)

// fieldPattern is one entry in a field's ordered candidate list. Patterns are
// tried in order; the first whose capture passes the field validator wins.
type fieldPattern struct {
	re *regexp.Regexp
}

// Registration documents are bilingual and OCR renders labels inconsistently,
// so every field carries several competing label variants. Text has already
// been through NormalizeText (single spaces, ASCII digits) when these run.

var platePatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)vehicle\s*no\.?\s*[:#]?\s*([0-9][0-9\- ]{2,10}[0-9])`)},
	{re: regexp.MustCompile(`(?i)plate\s*(?:no\.?|number)?\s*[:#]?\s*([0-9][0-9\- ]{2,10}[0-9])`)},
	{re: regexp.MustCompile(`(?i)registration\s*no\.?\s*[:#]?\s*([0-9][0-9\- ]{2,10}[0-9])`)},
	{re: regexp.MustCompile(`رقم\s*(?:اللوحة|اللوحه|التسجيل)\s*[:#]?\s*([0-9][0-9\- ]{2,10}[0-9])`)},
	{re: regexp.MustCompile(`(?i)\bno\.?\s*[:#]\s*([0-9]{4,8})\b`)},
}

// barePlateRun is the last-resort plate heuristic: the first bare 4-8 digit
// run anywhere in the text. Known to occasionally pick up an unrelated number
// printed near the plate, which is why it can be disabled via Options.
var barePlateRun = regexp.MustCompile(`\b[0-9]{4,8}\b`)

var vinPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)(?:chassis|chasis)\s*(?:no\.?|number)?\s*[:#]?\s*([A-Z0-9]{15,17})`)},
	{re: regexp.MustCompile(`(?i)\bvin\b\s*[:#]?\s*([A-Z0-9]{15,17})`)},
	{re: regexp.MustCompile(`رقم\s*(?:الهيكل|الشاصي)\s*[:#]?\s*([A-Z0-9]{15,17})`)},
	{re: regexp.MustCompile(`\b([A-Z0-9]{17})\b`)},
	{re: regexp.MustCompile(`\b([A-Z0-9]{15,16})\b`)},
}

var enginePatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)engine\s*(?:no\.?|number)?\s*[:#]?\s*([A-Z0-9\-]{5,20})`)},
	{re: regexp.MustCompile(`رقم\s*المحرك\s*[:#]?\s*([A-Z0-9\-]{5,20})`)},
}

// Model captures take at most two words; modelValue drops a trailing word
// that is really the next label ("Model: Camry Year: ...").
var modelPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)model\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-]*(?: [A-Za-z0-9][A-Za-z0-9\-]*)?)`)},
	{re: regexp.MustCompile(`(?:الطراز|الموديل)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-]*(?: [A-Za-z0-9][A-Za-z0-9\-]*)?)`)},
}

var yearPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)(?:model\s*)?year\s*(?:of\s*manufacture)?\s*[:#]?\s*((?:19|20)[0-9]{2})`)},
	{re: regexp.MustCompile(`سنة\s*الصنع\s*[:#]?\s*((?:19|20)[0-9]{2})`)},
	{re: regexp.MustCompile(`\b((?:19|20)[0-9]{2})\b`)},
}

var seatPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)seat(?:ing|s)?\s*(?:capacity)?\s*[:#]?\s*([0-9]{1,2})`)},
	{re: regexp.MustCompile(`(?i)(?:no\.?\s*of\s*)?passengers?\s*[:#]?\s*([0-9]{1,2})`)},
	{re: regexp.MustCompile(`عدد\s*الركاب\s*[:#]?\s*([0-9]{1,2})`)},
	{re: regexp.MustCompile(`السعة\s*[:#]?\s*([0-9]{1,2})`)},
}

// labelWords are field labels that directly follow a model value on most
// card layouts; a trailing label word was never part of the model name.
var labelWords = map[string]bool{
	"year": true, "color": true, "colour": true, "seats": true, "seat": true,
	"engine": true, "chassis": true, "vin": true, "plate": true,
	"registration": true, "insurance": true, "expiry": true,
}

// modelValue rejects captures that are really the start of another label
// ("Model Year : 2015" must not yield model "Year") and trims a trailing
// label word from two-word captures.
func modelValue(capture string) (string, bool) {
	words := strings.Fields(capture)
	for len(words) > 0 && labelWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

// engineValue requires at least one digit so a following word is never taken
// for an engine number.
func engineValue(capture string) (string, bool) {
	if !strings.ContainsAny(capture, "0123456789") {
		return "", false
	}
	return capture, true
}

// dateToken matches the numeric date layouts the parseDate layouts accept.
const dateToken = `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{2,4})`

var registrationDatePatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)registration\s*date\s*[:#]?\s*` + dateToken)},
	{re: regexp.MustCompile(`(?i)date\s*of\s*registration\s*[:#]?\s*` + dateToken)},
	{re: regexp.MustCompile(`تاريخ\s*التسجيل\s*[:#]?\s*` + dateToken)},
}

var registrationExpiryPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)(?:registration\s*)?expiry\s*(?:date)?\s*[:#]?\s*` + dateToken)},
	{re: regexp.MustCompile(`(?i)expiration\s*(?:date)?\s*[:#]?\s*` + dateToken)},
	{re: regexp.MustCompile(`تاريخ\s*(?:الانتهاء|انتهاء\s*الرخصة)\s*[:#]?\s*` + dateToken)},
}

var insuranceExpiryPatterns = []fieldPattern{
	{re: regexp.MustCompile(`(?i)insurance\s*expir(?:y|ation)\s*(?:date)?\s*[:#]?\s*` + dateToken)},
	{re: regexp.MustCompile(`(?:تاريخ\s*)?انتهاء\s*التأمين\s*[:#]?\s*` + dateToken)},
}

// vocabEntry maps every known rendering of a vocabulary term to its canonical
// form. Entries are scanned in order; longer aliases sort first within an
// entry so "light blue" style compounds are not shadowed.
type vocabEntry struct {
	canonical string
	aliases   []string
}

// knownMakes is the manufacturer vocabulary: Latin names plus their Arabic
// renderings as they appear on registration cards.
var knownMakes = []vocabEntry{
	{canonical: "Toyota", aliases: []string{"toyota", "تويوتا"}},
	{canonical: "Nissan", aliases: []string{"nissan", "نيسان"}},
	{canonical: "Hyundai", aliases: []string{"hyundai", "هيونداي", "هونداي"}},
	{canonical: "Kia", aliases: []string{"kia", "كيا"}},
	{canonical: "Mitsubishi", aliases: []string{"mitsubishi", "ميتسوبيشي"}},
	{canonical: "Honda", aliases: []string{"honda", "هوندا"}},
	{canonical: "Ford", aliases: []string{"ford", "فورد"}},
	{canonical: "Chevrolet", aliases: []string{"chevrolet", "شفروليه", "شيفروليه"}},
	{canonical: "Mercedes-Benz", aliases: []string{"mercedes-benz", "mercedes", "مرسيدس"}},
	{canonical: "BMW", aliases: []string{"bmw", "بي ام دبليو"}},
	{canonical: "Lexus", aliases: []string{"lexus", "لكزس"}},
	{canonical: "Mazda", aliases: []string{"mazda", "مازدا"}},
	{canonical: "Suzuki", aliases: []string{"suzuki", "سوزوكي"}},
	{canonical: "Isuzu", aliases: []string{"isuzu", "ايسوزو", "إيسوزو"}},
	{canonical: "Volkswagen", aliases: []string{"volkswagen", "فولكس واجن", "فولكسفاجن"}},
	{canonical: "Peugeot", aliases: []string{"peugeot", "بيجو"}},
	{canonical: "Renault", aliases: []string{"renault", "رينو"}},
	{canonical: "Daihatsu", aliases: []string{"daihatsu", "دايهاتسو"}},
}

// knownColors is the controlled color vocabulary. The canonical form is the
// Arabic name, matching how the fleet registry stores colors.
var knownColors = []vocabEntry{
	{canonical: "أبيض", aliases: []string{"أبيض", "ابيض", "white"}},
	{canonical: "أسود", aliases: []string{"أسود", "اسود", "black"}},
	{canonical: "فضي", aliases: []string{"فضي", "silver"}},
	{canonical: "رمادي", aliases: []string{"رمادي", "gray", "grey"}},
	{canonical: "أحمر", aliases: []string{"أحمر", "احمر", "red"}},
	{canonical: "أزرق", aliases: []string{"أزرق", "ازرق", "blue"}},
	{canonical: "أخضر", aliases: []string{"أخضر", "اخضر", "green"}},
	{canonical: "بني", aliases: []string{"بني", "brown"}},
	{canonical: "ذهبي", aliases: []string{"ذهبي", "gold"}},
	{canonical: "بيج", aliases: []string{"بيج", "beige"}},
	{canonical: "أصفر", aliases: []string{"أصفر", "اصفر", "yellow"}},
	{canonical: "برتقالي", aliases: []string{"برتقالي", "orange"}},
}

// lookupVocab scans text for the first vocabulary alias present and returns
// the canonical form.
func lookupVocab(text string, vocab []vocabEntry) (string, bool) {
	lower := strings.ToLower(text)
	for _, entry := range vocab {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}

// plateDigits strips non-digits from a plate capture and checks the 4-8 digit
// plausibility window. Returns the digit-only form.
func plateDigits(capture string) (string, bool) {
	var b strings.Builder
	for _, r := range capture {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 4 || len(digits) > 8 {
		return "", false
	}
	return digits, true
}

// validVIN checks the chassis number plausibility filter: 15-17 alphanumeric
// characters containing at least one letter and one digit.
func validVIN(capture string) bool {
	if len(capture) < 15 || len(capture) > 17 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range capture {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

// dateLayouts are the calendar renderings seen across document photographs.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
}

// parseDate decomposes a captured date token into a valid Gregorian date.
func parseDate(capture string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, capture); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
