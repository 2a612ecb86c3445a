package emotion

import "strings"

// TierCounts records how many keywords matched per intensity tier.
type TierCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type textAnalysis struct {
	scores         Scores
	keywords       map[Label][]string
	tiers          map[Label]TierCounts
	contextMatches map[Label][]string
	factors        []string
}

// scoreText scans text against the keyword lexicon and the optional context
// string. Scores are raw keyword-weight accumulations, scaled by nearby
// intensity modifiers, plus a fixed bonus per matched contextual trigger.
func scoreText(text, context string) textAnalysis {
	out := textAnalysis{
		scores:         Scores{},
		keywords:       map[Label][]string{},
		tiers:          map[Label]TierCounts{},
		contextMatches: map[Label][]string{},
	}

	lower := strings.ToLower(text)
	contextLower := strings.ToLower(context)
	words := strings.Fields(lower)

	for _, label := range Labels {
		set := keywordLexicon[label]
		var score float64
		var matched []string
		var tiers TierCounts

		scan := func(keywords []string, tier Tier) {
			for _, kw := range keywords {
				if !strings.Contains(lower, kw) {
					continue
				}
				matched = append(matched, kw)
				switch tier {
				case TierHigh:
					tiers.High++
				case TierMedium:
					tiers.Medium++
				default:
					tiers.Low++
				}
				score += tier.weight() * modifierFactor(words, kw, &out.factors)
			}
		}
		scan(set.High, TierHigh)
		scan(set.Medium, TierMedium)
		scan(set.Low, TierLow)

		if contextLower != "" {
			for _, indicator := range contextIndicators[label] {
				if strings.Contains(contextLower, indicator) {
					score += contextBonus
					out.contextMatches[label] = append(out.contextMatches[label], indicator)
				}
			}
		}

		if score > 0 {
			out.scores[label] = score
			out.keywords[label] = matched
			out.tiers[label] = tiers
		}
	}

	return out
}

// modifierFactor returns the multiplier from the strongest intensity modifier
// found within two words of any occurrence of the keyword's first word.
func modifierFactor(words []string, keyword string, factors *[]string) float64 {
	head := keyword
	if idx := strings.IndexByte(keyword, ' '); idx > 0 {
		head = keyword[:idx]
	}

	for i, w := range words {
		if trimPunct(w) != head {
			continue
		}
		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			token := trimPunct(words[j])
			if factor, ok := intensityModifiers[token]; ok {
				*factors = append(*factors, "intensity modifier: "+token)
				return factor
			}
			// Two-word modifiers like "a bit" or "kind of".
			if j+1 < i {
				bigram := token + " " + trimPunct(words[j+1])
				if factor, ok := intensityModifiers[bigram]; ok {
					*factors = append(*factors, "intensity modifier: "+bigram)
					return factor
				}
			}
		}
	}
	return 1.0
}

func trimPunct(w string) string {
	return strings.Trim(w, ".,!?;:'\"()")
}
