package policy

import (
	"sort"

	"github.com/ent0n29/sereno/internal/emotion"
)

// Technique names a therapeutic intervention strategy.
type Technique string

const (
	Grounding              Technique = "grounding"
	CognitiveRestructuring Technique = "cognitive_restructuring"
	BehavioralActivation   Technique = "behavioral_activation"
	Mindfulness            Technique = "mindfulness"
	EmotionRegulation      Technique = "emotion_regulation"
	StressManagement       Technique = "stress_management"
	Relaxation             Technique = "relaxation"
	Validation             Technique = "validation"
	PositiveReinforcement  Technique = "positive_reinforcement"
	GeneralSupport         Technique = "general_support"
)

type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneEncouraging Tone = "encouraging"
	ToneTherapeutic Tone = "therapeutic"
)

type LengthClass string

const (
	LengthShorter LengthClass = "shorter"
	LengthMedium  LengthClass = "medium"
	LengthLonger  LengthClass = "longer"
)

type ValidationLevel string

const (
	ValidationMedium   ValidationLevel = "medium"
	ValidationHigh     ValidationLevel = "high"
	ValidationVeryHigh ValidationLevel = "very_high"
)

type Pace string

const (
	PaceSteady Pace = "steady"
	PaceSlower Pace = "slower"
	PaceGentle Pace = "gentle"
	PaceCalm   Pace = "calm"
)

type Depth string

const (
	DepthSurface         Depth = "surface_level"
	DepthDeeper          Depth = "deeper_exploration"
	DepthTherapeuticWork Depth = "therapeutic_work"
)

// emotionTechniques is the base technique lookup per detected emotion.
// Unknown labels fall back to the neutral row.
var emotionTechniques = map[emotion.Label][]Technique{
	emotion.Anxiety:   {Grounding, CognitiveRestructuring},
	emotion.Sadness:   {BehavioralActivation, Mindfulness},
	emotion.Anger:     {EmotionRegulation, Mindfulness},
	emotion.Fear:      {Grounding, Mindfulness},
	emotion.Happiness: {PositiveReinforcement},
	emotion.Disgust:   {EmotionRegulation, GeneralSupport},
	emotion.Surprise:  {GeneralSupport},
	emotion.Neutral:   {GeneralSupport},
}

// stressTechniques replaces the general row when the conversation centers on
// stress without a stronger emotional signal.
var stressTechniques = []Technique{StressManagement, Relaxation}

var emotionPace = map[emotion.Label]Pace{
	emotion.Anxiety: PaceSlower,
	emotion.Sadness: PaceGentle,
	emotion.Anger:   PaceCalm,
	emotion.Fear:    PaceSlower,
}

var emotionValidation = map[emotion.Label]ValidationLevel{
	emotion.Sadness: ValidationVeryHigh,
	emotion.Anxiety: ValidationHigh,
}

// validationPhrases open high-validation responses with an emotion-specific
// acknowledgment.
var validationPhrases = map[emotion.Label]string{
	emotion.Anxiety: "Your anxiety is completely understandable",
	emotion.Sadness: "What you're feeling is valid and important",
	emotion.Anger:   "Your anger makes sense given the situation",
	emotion.Fear:    "It's okay to feel afraid sometimes",
}

const (
	defaultValidationPhrase = "Your feelings are completely valid"
	veryHighValidationLead  = "I want you to know that you're not alone in this."
)

// ValidationPhrase returns the opening acknowledgment for an emotion.
func ValidationPhrase(label emotion.Label) string {
	if p, ok := validationPhrases[label]; ok {
		return p
	}
	return defaultValidationPhrase
}

// followUpBank holds emotion-specific follow-up questions in preference order.
var followUpBank = map[emotion.Label][]string{
	emotion.Anxiety: {
		"What's one small step you could take to feel more grounded?",
		"What's been causing you the most worry?",
		"What would help you feel more calm right now?",
	},
	emotion.Sadness: {
		"What's one thing that might bring you a moment of peace?",
		"What's been weighing on your mind lately?",
		"Would you like to talk about what's been difficult for you?",
	},
	emotion.Anger: {
		"What might be underneath this feeling?",
		"What's been frustrating you the most lately?",
		"What would help you feel more at peace?",
	},
	emotion.Fear: {
		"What's been making you feel afraid?",
		"What would help you feel more secure?",
	},
	emotion.Happiness: {
		"What's been the highlight of your day so far?",
		"How long have you been feeling this positive energy?",
	},
}

var lowEngagementFollowUps = []string{
	"How are you feeling about what we've discussed?",
	"What would be most helpful for you right now?",
}

var highEngagementFollowUps = []string{
	"What insights are you gaining from this conversation?",
	"How can we build on what we've discovered?",
}

// TechniqueDetail describes a technique with concrete exercise steps.
type TechniqueDetail struct {
	Name        Technique `json:"name"`
	Description string    `json:"description"`
	Steps       []string  `json:"steps"`
}

var techniqueCatalog = map[Technique]TechniqueDetail{
	Grounding: {
		Name:        Grounding,
		Description: "Help the user connect with the present moment",
		Steps: []string{
			"5-4-3-2-1 grounding: name 5 things you see, 4 you hear, 3 you touch, 2 you smell, 1 you taste",
			"Box breathing: inhale 4 counts, hold 4, exhale 4, hold 4",
		},
	},
	CognitiveRestructuring: {
		Name:        CognitiveRestructuring,
		Description: "Challenge and reframe negative thoughts",
		Steps: []string{
			"Thought challenging: what evidence do you have for this thought?",
			"Perspective taking: what would you tell a friend?",
		},
	},
	BehavioralActivation: {
		Name:        BehavioralActivation,
		Description: "Increase engagement in positive activities",
		Steps: []string{
			"Activity scheduling: plan one pleasant activity daily",
			"Graded tasks: break large tasks into small steps",
		},
	},
	Mindfulness: {
		Name:        Mindfulness,
		Description: "Present-moment awareness and acceptance",
		Steps: []string{
			"Mindful breathing: focus on the breath for 5 minutes",
			"Body scan: notice sensations from head to toe",
		},
	},
	EmotionRegulation: {
		Name:        EmotionRegulation,
		Description: "Notice, name and modulate strong emotions",
		Steps: []string{
			"Name the emotion and rate its intensity from 1 to 10",
			"Take a timed pause before responding to the trigger",
		},
	},
	StressManagement: {
		Name:        StressManagement,
		Description: "Reduce load and recover capacity",
		Steps: []string{
			"List current demands and pick one to delegate or drop",
			"Schedule a short recovery break into today",
		},
	},
	Relaxation: {
		Name:        Relaxation,
		Description: "Release physical tension",
		Steps: []string{
			"Progressive muscle relaxation: tense and release each muscle group",
		},
	},
}

// Catalog returns the detail entry for a technique, when one exists.
func Catalog(t Technique) (TechniqueDetail, bool) {
	d, ok := techniqueCatalog[t]
	return d, ok
}

// CatalogAll lists every technique detail entry sorted by name.
func CatalogAll() []TechniqueDetail {
	out := make([]TechniqueDetail, 0, len(techniqueCatalog))
	for _, d := range techniqueCatalog {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
