// Package catalog holds the fixed content shipped with the service: the
// vocabularies users pick from, the built-in stories, learn cards and
// coping exercises.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Option is one entry of a fixed vocabulary.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Emoji string `json:"emoji,omitempty"`
}

var Topics = []Option{
	{Value: "anxiety", Label: "Anxiety", Emoji: "😰"},
	{Value: "loneliness", Label: "Loneliness", Emoji: "🌙"},
	{Value: "academics", Label: "Academics", Emoji: "📚"},
	{Value: "family", Label: "Family", Emoji: "🏠"},
	{Value: "relationships", Label: "Relationships", Emoji: "💕"},
	{Value: "self-esteem", Label: "Self-Esteem", Emoji: "🪞"},
	{Value: "general", Label: "General", Emoji: "💭"},
}

var Moods = []Option{
	{Value: "happy", Label: "Happy", Emoji: "😊"},
	{Value: "calm", Label: "Calm", Emoji: "😌"},
	{Value: "neutral", Label: "Neutral", Emoji: "😐"},
	{Value: "sad", Label: "Sad", Emoji: "😔"},
	{Value: "anxious", Label: "Anxious", Emoji: "😰"},
	{Value: "frustrated", Label: "Frustrated", Emoji: "😤"},
	{Value: "tired", Label: "Tired", Emoji: "😴"},
	{Value: "loved", Label: "Loved", Emoji: "🥰"},
}

var EmotionTags = []string{
	"hopeful", "overwhelmed", "grateful", "confused",
	"peaceful", "worried", "proud", "lonely",
	"excited", "frustrated", "content", "scared",
}

var Specializations = []string{
	"Anxiety", "Depression", "Stress", "Self-Esteem", "Relationships",
	"Family Issues", "Grief", "Trauma", "ADHD", "Academic Pressure",
}

var Languages = []string{"English", "Spanish", "French", "Mandarin", "Hindi", "Arabic", "Portuguese"}

var ExerciseCategories = []string{"breathing", "grounding", "mindfulness", "gratitude", "relaxation"}

var ExerciseIcons = []string{"🌬️", "🧘", "💭", "🎯", "💚", "🌊", "🌸", "✨"}

const DefaultExerciseIcon = "🌬️"

func IsTopic(v string) bool { return hasOption(Topics, v) }

func IsMood(v string) bool { return hasOption(Moods, v) }

func IsExerciseCategory(v string) bool { return contains(ExerciseCategories, v) }

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Choice points from one scene to another scene of the same story.
type Choice struct {
	Text        string `json:"text"`
	NextSceneID string `json:"next_scene_id"`
}

type Scene struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Choices    []Choice `json:"choices,omitempty"`
	Reflection string   `json:"reflection,omitempty"`
	IsEnding   bool     `json:"is_ending"`
}

type StoryContent struct {
	Scenes []Scene `json:"scenes"`
}

// StartScene is the id every story begins at.
const StartScene = "start"

// Scene looks a scene up by id.
func (c StoryContent) Scene(id string) (Scene, bool) {
	for _, s := range c.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}

// DefaultStoryContent is the skeleton given to an authored story created
// without scenes.
func DefaultStoryContent() StoryContent {
	return StoryContent{Scenes: []Scene{
		{
			ID:      StartScene,
			Text:    "This is the beginning of your story. Edit this to add your narrative.",
			Choices: []Choice{{Text: "Continue", NextSceneID: "end"}},
		},
		{
			ID:         "end",
			Text:       "Thank you for reading.",
			Reflection: "What did this story make you think about?",
			IsEnding:   true,
		},
	}}
}

// Validate checks that the content has a start scene and that every choice
// resolves within it.
func (c StoryContent) Validate() error {
	if _, ok := c.Scene(StartScene); !ok {
		return fmt.Errorf("story has no %q scene", StartScene)
	}
	for _, s := range c.Scenes {
		for _, ch := range s.Choices {
			if _, ok := c.Scene(ch.NextSceneID); !ok {
				return fmt.Errorf("scene %q points to unknown scene %q", s.ID, ch.NextSceneID)
			}
		}
	}
	return nil
}

type Story struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Content     StoryContent `json:"content"`
}

//go:embed stories.json
var storiesJSON []byte

var stories []Story

func init() {
	if err := json.Unmarshal(storiesJSON, &stories); err != nil {
		panic(fmt.Sprintf("catalog: invalid stories.json: %v", err))
	}
}

// Stories returns the built-in stories in display order.
func Stories() []Story {
	out := make([]Story, len(stories))
	copy(out, stories)
	return out
}

func StoryByID(id string) (Story, bool) {
	for _, s := range stories {
		if s.ID == id {
			return s, true
		}
	}
	return Story{}, false
}

type LearnCard struct {
	Title   string `json:"title"`
	Emoji   string `json:"emoji"`
	Content string `json:"content"`
}

var LearnCards = []LearnCard{
	{Title: "Understanding Emotions", Emoji: "🎭", Content: `Emotions are natural responses to life. They're not "good" or "bad" - they're information about what matters to you.`},
	{Title: "Stress vs Anxiety", Emoji: "⚡", Content: "Stress is a response to a specific situation. Anxiety is worry about what might happen. Both are manageable with the right tools."},
	{Title: "Healthy Coping", Emoji: "🌱", Content: "Healthy coping helps you process feelings. Unhealthy coping (like avoidance) offers short-term relief but long-term problems."},
	{Title: "When to Seek Help", Emoji: "🤝", Content: "If feelings interfere with daily life for weeks, or you have thoughts of self-harm, reach out to a trusted adult or professional."},
	{Title: "Self-Compassion", Emoji: "💚", Content: "Treat yourself like you would a good friend. Mistakes are part of being human. Be gentle with yourself."},
	{Title: "Building Resilience", Emoji: "🏔️", Content: "Resilience isn't about not feeling pain. It's about having tools and support to navigate difficult times."},
}

// Exercise is a built-in coping exercise.
type Exercise struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Icon        string   `json:"icon"`
	Steps       []string `json:"steps"`
}

var BuiltinExercises = []Exercise{
	{
		ID:          "breathing",
		Title:       "Box Breathing",
		Description: "4-4-4-4 breathing technique to calm your nervous system",
		Category:    "breathing",
		Icon:        "🌬️",
		Steps:       []string{"Breathe in for 4", "Hold for 4", "Breathe out for 4", "Hold for 4"},
	},
	{
		ID:          "grounding",
		Title:       "5-4-3-2-1 Grounding",
		Description: "Use your senses to anchor yourself in the present",
		Category:    "grounding",
		Icon:        "🎯",
		Steps: []string{
			"Name 5 things you can see",
			"Name 4 things you can touch",
			"Name 3 things you can hear",
			"Name 2 things you can smell",
			"Name 1 thing you can taste",
		},
	},
	{
		ID:          "gratitude",
		Title:       "Gratitude Pause",
		Description: "Take a moment to appreciate three good things",
		Category:    "gratitude",
		Icon:        "💚",
		Steps:       []string{"Write down three things you are grateful for today"},
	},
}
