package services

import (
	"context"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"phonetracer/internal/domain/models"
	"phonetracer/pkg/logger"
)

// lineTypeLabels maps libphonenumber number types to display labels
var lineTypeLabels = map[phonenumbers.PhoneNumberType]string{
	phonenumbers.MOBILE:               "Mobile",
	phonenumbers.FIXED_LINE:           "Landline",
	phonenumbers.FIXED_LINE_OR_MOBILE: "Landline/Mobile",
	phonenumbers.TOLL_FREE:            "Toll-Free",
	phonenumbers.PREMIUM_RATE:         "Premium Rate",
	phonenumbers.VOIP:                 "VoIP",
	phonenumbers.PERSONAL_NUMBER:      "Personal",
	phonenumbers.PAGER:                "Pager",
	phonenumbers.UAN:                  "UAN",
	phonenumbers.SHARED_COST:          "Shared Cost",
}

// PhoneResolver resolves raw phone numbers into trace metadata using the
// bundled numbering plan data and, when configured, a live carrier lookup.
type PhoneResolver struct {
	live   CarrierLookup
	logger *logger.Logger
}

// NewPhoneResolver creates a resolver. live may be nil.
func NewPhoneResolver(live CarrierLookup, log *logger.Logger) *PhoneResolver {
	return &PhoneResolver{
		live:   live,
		logger: log.WithComponent("phone-resolver"),
	}
}

// Normalize parses raw and returns its E.164 form
func (r *PhoneResolver) Normalize(raw string) (string, error) {
	num, _, err := parseNumber(raw)
	if err != nil {
		return "", err
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Resolve parses raw and collects its metadata. Reports are not attached.
func (r *PhoneResolver) Resolve(ctx context.Context, raw string) (*models.TraceData, error) {
	num, cleaned, err := parseNumber(raw)
	if err != nil {
		return nil, err
	}

	region := phonenumbers.GetRegionCodeForNumber(num)
	offlineCarrier := carrierName(num)

	trace := &models.TraceData{
		Number:                 cleaned,
		FormattedInternational: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
		FormattedNational:      phonenumbers.Format(num, phonenumbers.NATIONAL),
		E164:                   phonenumbers.Format(num, phonenumbers.E164),
		Valid:                  models.BoolPtr(phonenumbers.IsValidNumber(num)),
		Possible:               models.BoolPtr(phonenumbers.IsPossibleNumber(num)),
		CountryCode:            region,
		CountryName:            CountryName(region),
		Flag:                   CountryFlag(region),
		Location:               location(num),
		Carrier:                offlineCarrier,
		OriginalCarrier:        offlineCarrier,
		CarrierSource:          models.CarrierSourceOffline,
		LineType:               lineTypeLabel(num),
		Timezones:              timezones(num),
	}

	if r.live != nil {
		r.applyLiveData(ctx, trace)
	}

	return trace, nil
}

// applyLiveData overrides carrier and line type from the live lookup.
// Lookup failures leave the offline data in place.
func (r *PhoneResolver) applyLiveData(ctx context.Context, trace *models.TraceData) {
	info, err := r.live.Lookup(ctx, trace.E164)
	if err != nil {
		r.logger.WithNumber(trace.E164).Debug().Err(err).Msg("live carrier lookup failed")
		return
	}
	if info == nil {
		return
	}

	if c := strings.TrimSpace(info.Carrier); c != "" {
		trace.Carrier = c
		trace.CarrierSource = models.CarrierSourceLive
	}
	if lt := strings.TrimSpace(info.LineType); lt != "" {
		trace.LineType = capitalize(lt)
	}
}

// parseNumber trims raw, adds a leading "+" and parses it
func parseNumber(raw string) (*phonenumbers.PhoneNumber, string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, "", ErrInvalidNumber
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}

	num, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		return nil, cleaned, ErrInvalidNumber
	}
	return num, cleaned, nil
}

// CountryName returns the English name of a region code, the code itself
// when it has no name, or "Unknown" when empty.
func CountryName(code string) string {
	if code == "" || code == phonenumbers.UNKNOWN_REGION {
		return models.UnknownValue
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

// CountryFlag returns the flag emoji of a two-letter region code, or a globe
func CountryFlag(code string) string {
	if len(code) != 2 {
		return "🌍"
	}
	code = strings.ToUpper(code)
	if code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "🌍"
	}
	const base = 0x1F1E6
	return string([]rune{rune(base + int(code[0]-'A')), rune(base + int(code[1]-'A'))})
}

func carrierName(num *phonenumbers.PhoneNumber) string {
	name, err := phonenumbers.GetCarrierForNumber(num, "en")
	if err != nil || name == "" {
		return models.UnknownValue
	}
	return name
}

func location(num *phonenumbers.PhoneNumber) string {
	loc, err := phonenumbers.GetGeocodingForNumber(num, "en")
	if err != nil || loc == "" {
		return models.UnknownValue
	}
	return loc
}

func timezones(num *phonenumbers.PhoneNumber) []string {
	zones, err := phonenumbers.GetTimezonesForNumber(num)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(zones))
	for _, z := range zones {
		// libphonenumber's placeholder for numbers without zone data
		if z != "Etc/Unknown" {
			out = append(out, z)
		}
	}
	return out
}

func lineTypeLabel(num *phonenumbers.PhoneNumber) string {
	if label, ok := lineTypeLabels[phonenumbers.GetNumberType(num)]; ok {
		return label
	}
	return models.UnknownValue
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
