package feed

import "fmt"

// Version prefixes every cache key. Bumping it orphans all existing
// entries, which then age out by TTL; no migration needed.
const Version = 1

// Kind names a feed variant and doubles as its cache key segment.
type Kind string

const (
	// KindGlobal is the site-wide feed of posts visible to the requester.
	KindGlobal Kind = "feed"
	// KindNewsfeed is the personalized followed-authors feed.
	KindNewsfeed Kind = "newsfeed"
)

// Key builds the cache key for one page of one user's feed.
func Key(kind Kind, userID string, page, size int) string {
	return fmt.Sprintf("v%d:%s:user-%s:page-%d:size-%d", Version, kind, userID, page, size)
}

// UserPattern matches every cached page of one user's feed.
func UserPattern(kind Kind, userID string) string {
	return fmt.Sprintf("v%d:%s:user-%s:*", Version, kind, userID)
}
