package ai

import "strings"

// knowledgeEntry is a canned answer and the phrases that trigger it
type knowledgeEntry struct {
	topic    string
	patterns []string
	response string
}

// knowledgeBase order matters: on equal scores the earlier entry wins
var knowledgeBase = []knowledgeEntry{
	{
		topic:    "scam",
		patterns: []string{"scam", "how to identify", "recognize", "spot", "tell if"},
		response: `🔍 **How to Identify Scam Calls:**

1. **Urgency tactics** — They pressure you to act immediately
2. **Requesting payment** via gift cards, wire transfers, or crypto
3. **Threatening arrest** or legal action if you don't pay
4. **Spoofed caller ID** — The number looks local but isn't
5. **Asking for SSN/bank details** — Legitimate organizations never do this by phone
6. **"You've won a prize"** — If you didn't enter, you didn't win

💡 **Tip:** If in doubt, hang up and call the organization directly using the number on their official website.`,
	},
	{
		topic:    "voip",
		patterns: []string{"voip", "virtual number", "internet number", "online number"},
		response: `📡 **About VoIP Numbers:**

VoIP (Voice over Internet Protocol) numbers are phone numbers that work over the internet instead of traditional phone lines.

**Legitimate uses:** Businesses, remote workers, international calls
**Risk factor:** VoIP numbers are easy to obtain anonymously, making them popular with scammers for spoofing and robocalls.

⚠️ A VoIP number isn't automatically dangerous, but exercise more caution with unknown VoIP callers.`,
	},
	{
		topic:    "block",
		patterns: []string{"block", "how to block", "stop calls", "prevent"},
		response: `🛡️ **How to Block Unwanted Calls:**

**iPhone:**
• Open Recent Calls → tap ⓘ next to the number → "Block this Caller"
• Settings → Phone → Silence Unknown Callers

**Android:**
• Open Phone app → tap the number → "Block/Report spam"
• Settings → Blocked Numbers → Add a number

**Additional steps:**
• Register on your country's Do Not Call list
• Use spam filtering apps (Truecaller, Hiya, etc.)
• Report to PhoneTracer to help the community!`,
	},
	{
		topic:    "report",
		patterns: []string{"report", "how to report", "file complaint", "ftc", "fcc", "authority"},
		response: `📋 **How to Report Scam/Spam Numbers:**

1. **PhoneTracer** — Use our Report page to warn the community
2. **FTC** (US) — reportfraud.ftc.gov
3. **FCC** (US) — fcc.gov/consumers/guides/stop-unwanted-calls
4. **ICO** (UK) — ico.org.uk/make-a-complaint
5. **TRAI** (India) — Report via DND app
6. **Your carrier** — Most carriers have spam reporting via text (e.g., forward to 7726/SPAM)

💡 The more reports filed, the faster these numbers get blocked globally.`,
	},
	{
		topic:    "safe",
		patterns: []string{"safe", "is it safe", "should i answer", "unknown number", "missed call"},
		response: `📱 **Should You Answer Unknown Numbers?**

**General rule:** If you don't recognize the number, let it go to voicemail.

**Red flags for callbacks:**
• International numbers you don't expect
• Premium rate numbers (starting with 900, 0900, etc.)
• Missed calls that ring only once ("Wangiri" scam)

**Safe to answer if:**
• You're expecting a delivery or appointment call
• The number matches a local area code you recognize
• You can verify the number on PhoneTracer first! 🔍`,
	},
	{
		topic:    "phishing",
		patterns: []string{"phishing", "sms phishing", "smishing", "text scam", "fake text"},
		response: `🎣 **Phishing & SMS Scams (Smishing):**

**What is it?** Fraudulent texts pretending to be from banks, delivery services, or government agencies.

**Common examples:**
• "Your package is held — click here to reschedule"
• "Unusual activity on your account — verify now"
• "You owe taxes — pay immediately to avoid arrest"

**How to protect yourself:**
• Never click links in unexpected text messages
• Don't reply with personal information
• Go directly to the official website/app instead
• Forward suspicious texts to 7726 (SPAM)`,
	},
	{
		topic:    "robocall",
		patterns: []string{"robocall", "automated", "robot", "recording", "press 1"},
		response: `🤖 **About Robocalls:**

Robocalls are automated pre-recorded phone calls. While some are legitimate (appointment reminders, flight alerts), most unsolicited robocalls are illegal.

**Illegal robocall signs:**
• Selling something without your written permission
• Using fake caller ID (spoofing)
• No opt-out option provided

**Protection tips:**
• Don't press any buttons — it confirms your number is active
• Register on the Do Not Call list
• Use call-blocking apps
• Block and report on PhoneTracer`,
	},
	{
		topic:    "spoofing",
		patterns: []string{"caller id", "spoofing", "fake number", "disguise", "pretend"},
		response: `🎭 **Caller ID Spoofing:**

Spoofing is when callers deliberately falsify the phone number displayed on your caller ID to disguise their identity.

**How it works:**
• Scammers use VoIP services to set any number as their outgoing caller ID
• They often use numbers similar to yours ("neighbor spoofing")
• Even government agency numbers can be spoofed

**Protection:**
• Never trust caller ID alone
• If a "bank" calls, hang up and call the number on your card
• Use PhoneTracer to check the real origin`,
	},
	{
		topic:    "privacy",
		patterns: []string{"privacy", "data", "personal information", "protect", "security"},
		response: `🔒 **Phone Privacy & Data Protection:**

**Never share over the phone:**
• Social Security / National ID numbers
• Bank account or credit card details
• Passwords or OTP codes
• Home address to unknown callers

**Best practices:**
• Use different passwords for each account
• Enable two-factor authentication everywhere
• Review app permissions regularly
• Be cautious with public Wi-Fi for calls/texts
• Use PhoneTracer to verify unknown numbers before calling back`,
	},
	{
		topic:    "wangiri",
		patterns: []string{"wangiri", "one ring", "callback scam", "international missed call"},
		response: `☎️ **Wangiri (One Ring) Scam:**

**How it works:**
• You receive a missed call from an international number
• The phone rings only once or twice to create a missed call
• If you call back, you're connected to a premium-rate number
• You get charged high per-minute fees

**Protection:**
• Never call back unknown international numbers
• Look up the number on PhoneTracer first
• Block the number immediately
• Numbers from small island nations are common sources`,
	},
	{
		topic:    "greeting",
		patterns: []string{"hello", "hi", "hey", "help", "what can you do", "start"},
		response: `👋 **Hello! I'm your Phone Safety AI Assistant.**

I can help you with:

• 🔍 How to identify scam and spam calls
• 🛡️ How to block unwanted numbers
• 📋 How and where to report fraud
• 📡 Understanding VoIP and virtual numbers
• 🎭 Caller ID spoofing explained
• 🔒 Phone privacy and data protection tips
• 🤖 Handling robocalls
• 🎣 Phishing and SMS scam awareness

Just ask me anything about phone safety! 💬`,
	},
}

// DefaultKnowledgeResponse is returned when no entry matches
const DefaultKnowledgeResponse = `🤔 I'm not sure about that specific topic, but here are some things I can help with:

• **"How to identify scam calls"** — Learn the warning signs
• **"How to block numbers"** — Step-by-step for iPhone & Android
• **"What is VoIP"** — Understanding virtual numbers
• **"How to report spam"** — Where to file complaints
• **"Caller ID spoofing"** — How scammers fake numbers
• **"Phone privacy tips"** — Protect your data

Try asking about any of these topics! 💡`

// MatchKnowledge picks the canned answer whose trigger phrases cover the
// most characters of the message. Confidence is score/10, capped at 1.
func MatchKnowledge(message string) (string, float64) {
	msg := strings.ToLower(strings.TrimSpace(message))

	bestScore := 0
	bestResponse := DefaultKnowledgeResponse
	for _, entry := range knowledgeBase {
		score := 0
		for _, p := range entry.patterns {
			if strings.Contains(msg, p) {
				score += len(p)
			}
		}
		if score > bestScore {
			bestScore = score
			bestResponse = entry.response
		}
	}

	if bestScore == 0 {
		return DefaultKnowledgeResponse, 0
	}
	return bestResponse, min(float64(bestScore)/10, 1.0)
}
