package ai

import "phonetracer/internal/domain/models"

// spamTier maps a minimum community report count to points
type spamTier struct {
	min    int
	points int
	format string // %d is replaced with the count
}

// spamTiers is checked top-down, first match wins
var spamTiers = []spamTier{
	{min: 10, points: 35, format: "Extremely high report volume (%d reports)"},
	{min: 5, points: 25, format: "High number of community reports (%d)"},
	{min: 2, points: 15, format: "Multiple community reports (%d)"},
	{min: 1, points: 8, format: "1 community report filed"},
}

// lineTypeRule scores an exact (case-insensitive) line type label
type lineTypeRule struct {
	label   string
	points  int
	message string
}

var lineTypeRules = []lineTypeRule{
	{label: "voip", points: 15, message: "VoIP number — commonly used for spoofing and scam calls"},
	{label: "premium rate", points: 12, message: "Premium rate number — may incur unexpected charges"},
	{label: "toll-free", points: 5, message: "Toll-free number — sometimes used by telemarketers"},
}

const (
	landlineMarker  = "landline"
	landlinePoints  = -3
	landlineMessage = "Landline number — generally lower risk"
)

// Country tiers based on known telecom fraud hotspots
var highRiskCountries = map[string]bool{
	"NG": true, "GH": true, "CI": true, "CM": true, "SN": true, // West Africa
	"PK": true, "BD": true, "IN": true, // South Asia (high volume)
	"RU": true, "UA": true, // Eastern Europe
	"PH": true, "ID": true, // SE Asia
}

var mediumRiskCountries = map[string]bool{
	"CN": true, "BR": true, "MX": true, "CO": true, "VE": true, // Latin America / East Asia
	"EG": true, "DZ": true, "MA": true, "TN": true, // North Africa
	"TR": true, "IR": true, "IQ": true, // Middle East
	"RO": true, "BG": true, "AL": true, // Balkans
}

const (
	highRiskCountryPoints   = 15
	mediumRiskCountryPoints = 8
)

// severeKeywords order is significant: the first hit is the one reported
var severeKeywords = []string{
	"bank", "account", "password", "ssn", "social security", "irs", "fbi",
	"arrest", "warrant", "court", "wire transfer", "bitcoin", "crypto",
	"gift card", "western union", "moneygram", "ransom", "blackmail",
	"threaten", "kidnap", "extort",
}

var moderateKeywords = []string{
	"spam", "robot", "automated", "recording", "press 1", "free",
	"winner", "congratulations", "prize", "vacation", "offer",
	"insurance", "warranty", "extend", "solar", "energy",
	"debt", "loan", "credit", "rate", "lower",
}

const (
	severeKeywordPoints   = 5
	moderateKeywordPoints = 2
)

// reportSeverity weights report types; unknown types count as defaultReportSeverity
var reportSeverity = map[string]int{
	"fraud":        30,
	"scam":         28,
	"phishing":     25,
	"harassment":   20,
	"robocall":     12,
	"telemarketer": 10,
	"spam":         8,
	"other":        5,
}

const (
	defaultReportSeverity = 5
	reportTypeCap         = 20
)

// KnownReportTypes lists the report categories the scoring tables recognise
func KnownReportTypes() []string {
	return []string{"spam", "scam", "fraud", "phishing", "harassment", "robocall", "telemarketer", "other"}
}

// Carrier scoring
const (
	unknownCarrierPoints  = 10
	unknownCarrierMessage = "Carrier is unknown — may indicate a virtual or disposable number"
	virtualCarrierPoints  = 8
	portedPoints          = 5
)

var virtualCarrierMarkers = []string{"virtual", "voip", "internet"}

// Validity scoring
const (
	invalidPoints    = 15
	invalidMessage   = "Number flagged as invalid/not active"
	impossiblePoints = 10
	impossibleMsg    = "Number format is not possible for this region"
)

// riskThreshold maps a minimum score to a level, checked top-down
type riskThreshold struct {
	min   int
	level models.RiskLevel
}

var riskLadder = []riskThreshold{
	{min: 70, level: models.RiskLevelCritical},
	{min: 45, level: models.RiskLevelHigh},
	{min: 25, level: models.RiskLevelMedium},
}

// threatRule labels a result when any of its report types is present
type threatRule struct {
	types []string
	label models.ThreatType
}

// threatRules order is the precedence between report categories
var threatRules = []threatRule{
	{types: []string{"fraud", "phishing"}, label: models.ThreatFraudPhishing},
	{types: []string{"scam"}, label: models.ThreatScam},
	{types: []string{"harassment"}, label: models.ThreatHarassment},
	{types: []string{"robocall", "telemarketer"}, label: models.ThreatTelemarketing},
	{types: []string{"spam"}, label: models.ThreatSpam},
}

const (
	suspiciousVoIPMinScore = 30
	suspiciousMinScore     = 45
	unwantedMinScore       = 25
)

// analysisOpeners are the first sentence of the rule-based analysis, %s is the number
var analysisOpeners = map[models.RiskLevel]string{
	models.RiskLevelCritical: "⚠️ This number (%s) shows strong indicators of malicious activity.",
	models.RiskLevelHigh:     "This number (%s) has several concerning risk factors.",
	models.RiskLevelMedium:   "This number (%s) has some risk indicators worth noting.",
	models.RiskLevelLow:      "This number (%s) appears to be relatively safe.",
}

var recommendations = map[models.RiskLevel]string{
	models.RiskLevelCritical: "🚫 Do NOT answer or return calls from this number. " +
		"Block it immediately on your device. If you've shared any personal information, " +
		"contact your bank and monitor your accounts. Consider filing a report with local authorities.",
	models.RiskLevelHigh: "⚠️ Exercise extreme caution with this number. " +
		"Do not share personal information if they contact you. " +
		"Block the number and report it if you receive suspicious calls.",
	models.RiskLevelMedium: "⚡ Be cautious when interacting with this number. " +
		"Verify the caller's identity before sharing any information. " +
		"If unsolicited, consider blocking and reporting.",
	models.RiskLevelLow: "✅ This number appears safe based on available data. " +
		"As always, never share sensitive personal information over the phone " +
		"unless you initiated the call to a verified number.",
}

const (
	noFactorsSentence = " No significant risk factors detected."
	maxFactors        = 6
	narrativeFactors  = 3
	promptFactors     = 4
)
