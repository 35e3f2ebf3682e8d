package therapist

import "github.com/xiaot623/gogo/companion/internal/domain"

// Template slots.
const (
	slotPhrase  = "{phrase}"
	slotEmotion = "{emotion}"
)

var techniqueTemplates = map[domain.Technique][]string{
	domain.TechniqueActiveListening: {
		"I hear you saying that {phrase}.",
		"It sounds like you're experiencing {emotion}.",
		"Let me make sure I understand - you're feeling {emotion} about {phrase}?",
		"I'm picking up that {phrase} is really affecting you.",
		"What I'm hearing is that {phrase} has been on your mind.",
	},
	domain.TechniqueReflection: {
		"What I'm hearing is that {phrase} feels overwhelming right now.",
		"It seems like you feel {emotion} when {phrase} happens.",
		"So you're saying that {phrase} is causing you to feel {emotion}.",
		"It sounds like {phrase} brings up some difficult feelings for you.",
		"I'm reflecting back that {phrase} seems to be a significant concern for you.",
	},
	domain.TechniqueValidation: {
		"That sounds really difficult to deal with.",
		"Your feelings about {phrase} are completely valid.",
		"It makes perfect sense that you'd feel {emotion} about this situation.",
		"Anyone would struggle with {phrase} - your reaction is completely normal.",
		"You're not alone in feeling this way about {phrase}.",
		"It's understandable that {phrase} would affect you so deeply.",
	},
	domain.TechniqueReframing: {
		"Have you considered that {phrase} might also be an opportunity for growth?",
		"What if we thought about {phrase} as a challenge rather than a threat?",
		"Another way to look at {phrase} might be as a learning experience.",
		"Could there be any hidden benefits or lessons in {phrase}?",
		"What would it look like if {phrase} was actually helping you in some way?",
	},
	domain.TechniqueQuestioning: {
		"What do you think might help you cope with {phrase}?",
		"How does {phrase} make you feel in your body?",
		"What would you like to see change about {phrase}?",
		"When did you first notice {phrase} becoming an issue?",
		"What resources do you have to help you deal with {phrase}?",
		"How has {phrase} impacted other areas of your life?",
	},
	domain.TechniqueSummarizing: {
		"Let me summarize - you're dealing with {phrase} and it's making you feel {emotion}.",
		"So far, we've talked about how {phrase} is affecting your daily life.",
		"The main issue seems to be {phrase} and how it's impacting your wellbeing.",
		"What I'm hearing is that {phrase} is a central concern that's causing you {emotion}.",
	},
}

var personalityModifiers = map[domain.Personality][]string{
	domain.PersonalityEmpathetic: {
		"I'm here to support you through this.",
		"Your feelings matter and are valid.",
		"It takes courage to share these thoughts.",
		"I can sense this is important to you.",
		"Thank you for trusting me with this.",
		"I'm listening and I care about what you're going through.",
	},
	domain.PersonalityAnalytical: {
		"Let's explore this step by step.",
		"What patterns do you notice here?",
		"Let's break this down together.",
		"What evidence supports this thought?",
		"How might we approach this systematically?",
		"What factors might be contributing to this?",
	},
	domain.PersonalitySupportive: {
		"You're doing great by talking about this.",
		"You're stronger than you realize.",
		"Every step forward counts, no matter how small.",
		"You're not alone in feeling this way.",
		"I believe in your ability to work through this.",
		"You're making progress just by being here.",
	},
	domain.PersonalityChallenging: {
		"What steps can you take to address this?",
		"How might you challenge this thought?",
		"What would you tell a friend in this situation?",
		"What's one small action you could take today?",
		"How does holding onto this serve you?",
		"What would change if you let go of this belief?",
	},
}

// GreetingText opens every session.
const GreetingText = "Hello! I'm here to listen and support you. How are you feeling today?"
