package contracts

// Severity tiers of problem tags. Lower is more urgent.
const (
	// TierIntegrity problems lose or misattribute build history.
	TierIntegrity = 1
	// TierIndex problems break the builds/<n> index but keep the data.
	TierIndex = 2
	// TierBookkeeping problems only affect future builds.
	TierBookkeeping = 3
)

// TagScanError marks a job that could not be scanned at all.
const TagScanError = "SCAN"

var tagTiers = map[string]int{
	TagScanError: TierIntegrity,
	"NOJOB":      TierIntegrity,
	"BADDATE":    TierIntegrity,
	"STOLEN":     TierIntegrity,
	"ORDER":      TierIntegrity,
	"BROKEN":     TierIndex,
	"NONUM":      TierIndex,
	"NUMBAD":     TierIndex,
	"NOTLINK":    TierIndex,
	"NEXT":       TierBookkeeping,
}

// Tier returns the severity tier of a problem tag. Unknown tags rank
// with the index problems.
func Tier(tag string) int {
	if t, ok := tagTiers[tag]; ok {
		return t
	}
	return TierIndex
}

// TierName is a short label for a tier.
func TierName(tier int) string {
	switch tier {
	case TierIntegrity:
		return "data integrity"
	case TierIndex:
		return "build index"
	default:
		return "bookkeeping"
	}
}
