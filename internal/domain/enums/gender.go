package enums

import "strings"

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"
	GenderUnknown   Gender = "unknown"
)

// ParseGender normalizes questionnaire values. Empty input is unknown;
// anything unrecognized reports ok=false and is never coerced to unknown.
func ParseGender(raw string) (Gender, bool) {
	switch normalize(raw) {
	case "":
		return GenderUnknown, true
	case "male", "man", "m":
		return GenderMale, true
	case "female", "woman", "f":
		return GenderFemale, true
	case "non_binary", "nonbinary", "nb":
		return GenderNonBinary, true
	case "unknown", "unspecified", "prefer_not_to_say":
		return GenderUnknown, true
	default:
		return Gender(strings.TrimSpace(raw)), false
	}
}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary, GenderUnknown:
		return true
	default:
		return false
	}
}

type Seeking string

const (
	SeekingMen       Seeking = "men"
	SeekingWomen     Seeking = "women"
	SeekingNonBinary Seeking = "non_binary"
	SeekingEveryone  Seeking = "everyone"
)

func ParseSeeking(raw string) (Seeking, bool) {
	switch normalize(raw) {
	case "":
		return SeekingEveryone, true
	case "men", "man", "male":
		return SeekingMen, true
	case "women", "woman", "female":
		return SeekingWomen, true
	case "non_binary", "nonbinary", "nb":
		return SeekingNonBinary, true
	case "everyone", "all", "any", "both":
		return SeekingEveryone, true
	default:
		return Seeking(strings.TrimSpace(raw)), false
	}
}

func (s Seeking) Valid() bool {
	switch s {
	case SeekingMen, SeekingWomen, SeekingNonBinary, SeekingEveryone:
		return true
	default:
		return false
	}
}

func normalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	return strings.ReplaceAll(value, " ", "_")
}
