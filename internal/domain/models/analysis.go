package models

import "time"

// RiskLevel is the coarse classification of a risk score
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// ThreatType is the category label derived from reports and trace heuristics
type ThreatType string

const (
	ThreatFraudPhishing       ThreatType = "Fraud / Phishing"
	ThreatScam                ThreatType = "Scam"
	ThreatHarassment          ThreatType = "Harassment"
	ThreatTelemarketing       ThreatType = "Telemarketing"
	ThreatSpam                ThreatType = "Spam"
	ThreatSuspiciousVoIP      ThreatType = "Suspicious VoIP"
	ThreatPremiumRate         ThreatType = "Premium Rate"
	ThreatSuspicious          ThreatType = "Suspicious"
	ThreatPotentiallyUnwanted ThreatType = "Potentially Unwanted"
	ThreatClean               ThreatType = "Clean"
)

// AISource tags where the prose of a result came from
type AISource string

const (
	AISourceLLM       AISource = "llm"
	AISourceRuleBased AISource = "rule-based"
)

// AnalysisResult is the risk assessment of one phone number
type AnalysisResult struct {
	RiskScore      int        `json:"risk_score"`
	RiskLevel      RiskLevel  `json:"risk_level"`
	ThreatType     ThreatType `json:"threat_type"`
	Factors        []string   `json:"factors"`
	Analysis       string     `json:"analysis"`
	Recommendation string     `json:"recommendation"`
	AISource       AISource   `json:"ai_source"`
	Model          string     `json:"model,omitempty"`
	AnalyzedAt     time.Time  `json:"analyzed_at"`
}

// ChatTurn is one prior message of a chat conversation
type ChatTurn struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// ChatResult is the assistant's answer to a chat message
type ChatResult struct {
	Response   string    `json:"response"`
	Confidence float64   `json:"confidence"`
	AISource   AISource  `json:"ai_source"`
	Model      string    `json:"model,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LLMState is the lifecycle state of the text generator
type LLMState string

const (
	LLMStateDisabled LLMState = "disabled" // no provider configured
	LLMStateUnloaded LLMState = "unloaded"
	LLMStateLoading  LLMState = "loading"
	LLMStateReady    LLMState = "ready"
	LLMStateError    LLMState = "error"
)

// LLMStatus is the queryable status of the text generator
type LLMStatus struct {
	State     LLMState   `json:"state"`
	Provider  string     `json:"provider,omitempty"`
	ModelName string     `json:"model_name,omitempty"`
	Error     string     `json:"error,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
}
