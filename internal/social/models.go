package social

type PostInput struct {
	UserID         string `json:"user_id"`
	MediaType      string `json:"media_type"`
	Text           string `json:"text"`
	Audio          string `json:"audio,omitempty"`
	PermissionName string `json:"permission_name,omitempty"`
	Accessibility  string `json:"accessibility"`
}

type MessageInput struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Status     string `json:"status"`
}

type StoryInput struct {
	UserID    string `json:"user_id"`
	MediaType string `json:"media_type"`
	AudioType string `json:"audio_type,omitempty"`
	Length    int    `json:"length"`
}

// Defaults applied when the form leaves a field empty.
const (
	DefaultAccessibility = "Everyone"
	DefaultStatus        = "Unread"
	DefaultMessageType   = "Text"
	DefaultMediaType     = "Text"
	DefaultStoryMedia    = "Image"
)
