package booking

import (
	"strings"

	"github.com/kilianp07/spms/core/model"
)

type essential struct {
	mask model.EssentialMask
	// partner is the canonical name of the other half of the pair.
	partner string
}

// essentials maps lower-cased item names and aliases to their pair.
var essentials = map[string]essential{
	"battery":          {model.EssentialBatteryCable, "cable"},
	"cable":            {model.EssentialBatteryCable, "battery"},
	"cables":           {model.EssentialBatteryCable, "battery"},
	"locker":           {model.EssentialLockerUmbrella, "umbrella"},
	"umbrella":         {model.EssentialLockerUmbrella, "locker"},
	"inflationservice": {model.EssentialValetInflation, "valetpark"},
	"inflation":        {model.EssentialValetInflation, "valetpark"},
	"valetpark":        {model.EssentialValetInflation, "inflationservice"},
	"valet":            {model.EssentialValetInflation, "inflationservice"},
}

func lookupEssential(name string) (essential, bool) {
	e, ok := essentials[strings.ToLower(name)]
	return e, ok
}

// pairOf checks that a and b are the two halves of one pair.
func pairOf(a, b string) (model.EssentialMask, bool) {
	ea, ok := lookupEssential(a)
	if !ok {
		return 0, false
	}
	eb, ok := lookupEssential(b)
	if !ok || ea.mask != eb.mask {
		return 0, false
	}
	// "battery battery" names the same half twice.
	return ea.mask, strings.EqualFold(canonical(b), ea.partner)
}

func canonical(name string) string {
	switch n := strings.ToLower(name); n {
	case "cables":
		return "cable"
	case "inflation":
		return "inflationservice"
	case "valet":
		return "valetpark"
	default:
		return n
	}
}
