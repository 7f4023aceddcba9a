package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection names in the SocialMediaDB database.
const (
	Users    = "users"
	Posts    = "posts"
	Messages = "messages"
	Stories  = "stories"
)

const StoryTTL = 24 * time.Hour

var (
	Genders       = []string{"Male", "Female", "Other"}
	Accessibility = []string{"Everyone", "Friends"}
	Statuses      = []string{"Delivered", "Read", "Unread"}
)

type Name struct {
	First string `bson:"first" json:"first"`
	Last  string `bson:"last" json:"last"`
}

// Full returns "first last".
func (n Name) Full() string {
	return n.First + " " + n.Last
}

type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string        `bson:"user_id" json:"user_id"`
	Name           Name          `bson:"name" json:"name"`
	Email          string        `bson:"email" json:"email"`
	Password       string        `bson:"password,omitempty" json:"-"`
	DOB            string        `bson:"dob" json:"dob"`
	Gender         string        `bson:"gender" json:"gender"`
	Category       string        `bson:"category" json:"category"`
	DateOfCreation time.Time     `bson:"date_of_creation" json:"date_of_creation"`
}

type PostContent struct {
	MediaType string `bson:"media_type" json:"media_type"`
	Text      string `bson:"text" json:"text"`
	Audio     string `bson:"audio,omitempty" json:"audio,omitempty"`
}

type Permissions struct {
	PermissionName string `bson:"permission_name,omitempty" json:"permission_name,omitempty"`
	Accessibility  string `bson:"accessibility" json:"accessibility"`
}

type Post struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID        string        `bson:"post_id" json:"post_id"`
	UserID        bson.ObjectID `bson:"user_id" json:"user_id"`
	Content       PostContent   `bson:"content" json:"content"`
	Permissions   Permissions   `bson:"permissions" json:"permissions"`
	DateOfPosting time.Time     `bson:"date_of_posting" json:"date_of_posting"`
}

type Message struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID  string        `bson:"message_id" json:"message_id"`
	SenderID   bson.ObjectID `bson:"sender_id" json:"sender_id"`
	ReceiverID bson.ObjectID `bson:"receiver_id" json:"receiver_id"`
	Content    string        `bson:"content" json:"content"`
	Type       string        `bson:"type" json:"type"`
	Status     string        `bson:"status" json:"status"`
	Time       time.Time     `bson:"time" json:"time"`
}

type Media struct {
	Type      string `bson:"type" json:"type"`
	AudioType string `bson:"audio_type,omitempty" json:"audio_type,omitempty"`
	Length    int    `bson:"length" json:"length"`
}

type Story struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	StoryID   string        `bson:"story_id" json:"story_id"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id"`
	Media     Media         `bson:"media" json:"media"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the story is past its expiry at now.
func (s Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// OneOf reports whether v is one of allowed.
func OneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
