package emotion

// Label is one of the emotions the engine can report.
type Label string

const (
	Neutral   Label = "neutral"
	Happiness Label = "happiness"
	Sadness   Label = "sadness"
	Anger     Label = "anger"
	Anxiety   Label = "anxiety"
	Fear      Label = "fear"
	Disgust   Label = "disgust"
	Surprise  Label = "surprise"
)

// Labels lists every non-neutral emotion the keyword lexicon covers.
var Labels = []Label{Anxiety, Sadness, Anger, Happiness, Fear, Disgust, Surprise}

// Tier ranks how strongly a keyword expresses its emotion.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) weight() float64 {
	switch t {
	case TierHigh:
		return 3.0
	case TierMedium:
		return 2.0
	default:
		return 1.0
	}
}

type tieredKeywords struct {
	High   []string
	Medium []string
	Low    []string
}

// keywordLexicon holds intensity-tiered keyword sets per emotion.
var keywordLexicon = map[Label]tieredKeywords{
	Anxiety: {
		High:   []string{"panic", "terrified", "overwhelmed", "frozen", "paralyzed", "crippling"},
		Medium: []string{"anxious", "worried", "nervous", "stressed", "uneasy", "restless"},
		Low:    []string{"concerned", "apprehensive", "uncertain", "hesitant", "cautious"},
	},
	Sadness: {
		High:   []string{"devastated", "crushed", "heartbroken", "despair", "hopeless", "empty"},
		Medium: []string{"sad", "depressed", "down", "blue", "miserable", "gloomy"},
		Low:    []string{"melancholy", "somber", "subdued", "disappointed"},
	},
	Anger: {
		High:   []string{"furious", "enraged", "livid", "seething", "explosive", "volatile"},
		Medium: []string{"angry", "mad", "irritated", "annoyed", "frustrated", "upset"},
		Low:    []string{"bothered", "agitated", "displeased", "resentful"},
	},
	Happiness: {
		High:   []string{"ecstatic", "thrilled", "elated", "overjoyed", "euphoric", "blissful"},
		Medium: []string{"happy", "joyful", "cheerful", "content", "pleased", "satisfied"},
		Low:    []string{"comfortable", "at ease", "glad"},
	},
	Fear: {
		High:   []string{"petrified", "horrified", "dread", "terror"},
		Medium: []string{"scared", "afraid", "frightened", "alarmed"},
		Low:    []string{"wary", "spooked"},
	},
	Disgust: {
		High:   []string{"revolted", "repulsed", "sickened", "nauseated"},
		Medium: []string{"disgusted", "repelled", "offended", "disturbed"},
		Low:    []string{"uncomfortable", "unsettled"},
	},
	Surprise: {
		High:   []string{"shocked", "stunned", "astounded", "amazed", "bewildered"},
		Medium: []string{"surprised", "startled", "taken aback", "caught off guard"},
		Low:    []string{"curious", "intrigued", "perplexed"},
	},
}

// contextIndicators are situational trigger words that, when present in the
// caller-supplied context string, add a fixed bonus to that emotion's score.
var contextIndicators = map[Label][]string{
	Anxiety:   {"interview", "test", "presentation", "meeting", "deadline", "performance"},
	Sadness:   {"loss", "death", "breakup", "failure", "rejection", "lonely"},
	Anger:     {"unfair", "wrong", "mistake", "problem", "issue", "conflict"},
	Happiness: {"success", "achievement", "good news", "celebration", "accomplishment"},
	Fear:      {"danger", "threat", "risk", "unknown", "uncertainty", "change"},
}

const contextBonus = 0.5

// intensityModifiers scale a matched keyword's contribution when the modifier
// appears within two words of it.
var intensityModifiers = map[string]float64{
	"very":       1.5,
	"extremely":  2.0,
	"incredibly": 2.0,
	"totally":    1.8,
	"completely": 1.8,
	"absolutely": 1.8,
	"really":     1.3,
	"quite":      1.2,
	"somewhat":   0.8,
	"slightly":   0.6,
	"a bit":      0.7,
	"kind of":    0.8,
}
