package cache

import "strings"

const (
	NamespaceMessage    = "msg"
	NamespaceDoNotPost  = "dnp"
	NamespaceReactCount = "rc"
)

// MessageKey caches both source messages and the bot's posted starboard messages.
func MessageKey(messageID string) string {
	return NamespaceMessage + ":" + messageID
}

// DoNotPostKey holds the marker suppressing a repost of a message whose starboard entry was removed.
func DoNotPostKey(messageID string) string {
	return NamespaceDoNotPost + ":" + messageID
}

// ReactCountKey counts how many reaction actions of a user on a message were processed.
func ReactCountKey(messageID, userID string) string {
	return NamespaceReactCount + ":" + messageID + ":" + userID
}

// Namespace returns the key's namespace, used as a metrics label.
func Namespace(key string) string {
	namespace, _, found := strings.Cut(key, ":")
	if !found {
		return "other"
	}
	return namespace
}
