package store

import (
	"time"

	"safespace.app/backend/internal/catalog"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Bio         *string   `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	RoleUser         = "user"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type JournalEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	EmotionTags []string  `json:"emotion_tags"`
	AIResponse  *string   `json:"ai_response"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}

type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a forum post. LikesCount and Liked are computed when read. The
// forum is anonymous: UserID never leaves the server, IsMine tells the
// viewer which posts are theirs.
type Post struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	Content        string    `json:"content"`
	Topic          string    `json:"topic"`
	IsProfessional bool      `json:"is_professional"`
	LikesCount     int       `json:"likes_count"`
	Liked          bool      `json:"liked"`
	IsMine         bool      `json:"is_mine"`
	CreatedAt      time.Time `json:"created_at"`
}

type Comment struct {
	ID             string    `json:"id"`
	PostID         string    `json:"post_id"`
	UserID         string    `json:"-"`
	Content        string    `json:"content"`
	IsProfessional bool      `json:"is_professional"`
	IsMine         bool      `json:"is_mine"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

type Professional struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	FullName             string     `json:"full_name"`
	Title                string     `json:"title"`
	Specializations      []string   `json:"specializations"`
	Languages            []string   `json:"languages"`
	Bio                  *string    `json:"bio"`
	CertificationDetails *string    `json:"certification_details"`
	Status               string     `json:"status"`
	VerifiedAt           *time.Time `json:"verified_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type DirectMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation summarises the messages exchanged with one counterpart.
type Conversation struct {
	UserID        string    `json:"user_id"`
	DisplayName   *string   `json:"-"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}

type Story struct {
	ID                    string               `json:"id"`
	AuthorID              *string              `json:"author_id"`
	Title                 string               `json:"title"`
	Description           string               `json:"description"`
	Category              string               `json:"category"`
	Content               catalog.StoryContent `json:"content"`
	IsProfessionalContent bool                 `json:"is_professional_content"`
	CreatedAt             time.Time            `json:"created_at"`
}

type Exercise struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	Category     string    `json:"category"`
	Icon         string    `json:"icon"`
	CreatedAt    time.Time `json:"created_at"`
}

type Article struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Emoji     *string   `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`

	// ContentHTML is rendered from Content on read and not stored.
	ContentHTML string `json:"content_html,omitempty"`
}
