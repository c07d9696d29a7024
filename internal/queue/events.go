package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventPublicationCreated = "publication_created"
	EventPublicationDeleted = "publication_deleted"
	EventUserFollowed       = "user_followed"
	EventUserUnfollowed     = "user_unfollowed"
	EventReplyAdded         = "reply_added"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// ActivityEvent is one domain event appended to the activity stream after the write commits.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix seconds

	// Actor of the event.
	UserID int64 `json:"user_id"`

	PublicationID int64 `json:"publication_id,omitempty"`
	ReplyID       int64 `json:"reply_id,omitempty"`
	TargetUserID  int64 `json:"target_user_id,omitempty"` // followee for follow events
}

func NewPublicationCreatedEvent(publicationID, ownerID int64) ActivityEvent {
	return ActivityEvent{
		Type:          EventPublicationCreated,
		Timestamp:     time.Now().Unix(),
		UserID:        ownerID,
		PublicationID: publicationID,
	}
}

func NewPublicationDeletedEvent(publicationID, ownerID int64) ActivityEvent {
	return ActivityEvent{
		Type:          EventPublicationDeleted,
		Timestamp:     time.Now().Unix(),
		UserID:        ownerID,
		PublicationID: publicationID,
	}
}

func NewUserFollowedEvent(followerID, followeeID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventUserFollowed,
		Timestamp:    time.Now().Unix(),
		UserID:       followerID,
		TargetUserID: followeeID,
	}
}

func NewUserUnfollowedEvent(followerID, followeeID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventUserUnfollowed,
		Timestamp:    time.Now().Unix(),
		UserID:       followerID,
		TargetUserID: followeeID,
	}
}

func NewReplyAddedEvent(replyID, publicationID, authorID int64) ActivityEvent {
	return ActivityEvent{
		Type:          EventReplyAdded,
		Timestamp:     time.Now().Unix(),
		UserID:        authorID,
		PublicationID: publicationID,
		ReplyID:       replyID,
	}
}

// ToMap converts the event to XADD field-value pairs: the type plus a JSON "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
