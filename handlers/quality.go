package handlers

import (
	"log"
	"strings"

	"go-sitrep/types"
)

var sitrepLocales = []string{"en", "hi", "bn"}

// Word-level fallback used when a locale summary is missing and the
// translation backend already had its chance. Crude, but the SITREP never
// ships an empty field.
var fallbackTranslations = map[string][][2]string{
	"hi": {
		{"No casualties", "कोई हताहत नहीं"},
		{"explosion", "धमाका"},
		{"incident", "घटना"},
		{"reported", "रिपोर्ट किया गया"},
		{"casualties", "हताहत"},
	},
	"bn": {
		{"No casualties", "কোন হতাহত নেই"},
		{"explosion", "বিস্ফোরণ"},
		{"incident", "ঘটনা"},
		{"reported", "রিপোর্ট করা হয়েছে"},
		{"casualties", "হতাহত"},
	},
}

var unresolvedLocationBullets = map[string]string{
	"en": "Location unresolved",
	"hi": "स्थान अज्ञात",
	"bn": "অবস্থান অজানা",
}

// applyQualityChecks enforces the three output invariants: every locale has
// a summary, published coordinates carry at least moderate confidence, and
// the status is one of the known bands.
func applyQualityChecks(sitrep types.Sitrep) types.Sitrep {
	for _, locale := range sitrepLocales {
		if sitrep.Summary[locale] == "" {
			log.Printf("Quality check Q1 failed: missing summary for locale %s", locale)
			if locale != "en" && sitrep.Summary["en"] != "" {
				sitrep.Summary[locale] = translateFallback(sitrep.Summary["en"], locale)
			}
		}
	}

	if sitrep.Location.Lat == nil || sitrep.Location.Lng == nil || sitrep.Location.Confidence < 0.3 {
		log.Println("Quality check Q2 failed: invalid location data")
		sitrep.Location.Lat = nil
		sitrep.Location.Lng = nil
		sitrep.Location.Confidence = 0.0
		for _, locale := range sitrepLocales {
			sitrep.Details[locale] = append(sitrep.Details[locale], unresolvedLocationBullets[locale])
		}
	}

	switch sitrep.Status {
	case types.StatusVerified, types.StatusProbable, types.StatusUnverified:
	default:
		log.Println("Quality check Q3 failed: invalid status")
		sitrep.Status = types.StatusUnverified
		sitrep.RecommendedAction = types.ActionMonitor
	}

	return sitrep
}

func translateFallback(text, locale string) string {
	translated := text
	for _, pair := range fallbackTranslations[locale] {
		translated = strings.ReplaceAll(translated, pair[0], pair[1])
	}
	return translated
}
