package domain

import "time"

// ClaimCooldown is the minimum time a visitor must wait between two
// successful claims, regardless of which link was claimed. It is a global
// constant, not configurable per link or folder.
const ClaimCooldown = 7 * 24 * time.Hour

// Link is a named URL a visitor may claim.
// URL is always in the canonical form produced by urlcheck.Normalize.
type Link struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Folder is a named grouping of links. Link order is insertion order and is
// meaningful for display.
type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links []Link `json:"links"`
}

// ClaimRecord tracks the last successful claim of one visitor.
// Absence of a record means the visitor has never claimed (or was reset).
type ClaimRecord struct {
	LastClaimAt int64 `json:"lastClaimAt"` // ms since epoch
}

// Remaining returns how much of the cooldown window is still ahead of the
// visitor at the given instant. Zero means the visitor may claim again.
func (r ClaimRecord) Remaining(now time.Time) time.Duration {
	elapsed := now.UnixMilli() - r.LastClaimAt
	left := ClaimCooldown.Milliseconds() - elapsed
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * time.Millisecond
}

// RetryAfterSeconds converts a remaining cooldown to the whole-second value
// reported to clients, rounding up so 1ms left still reads as 1s.
func RetryAfterSeconds(remaining time.Duration) int64 {
	ms := remaining.Milliseconds()
	return (ms + 999) / 1000
}

// FindLink scans all folders for a link by id.
func FindLink(folders []Folder, linkID string) (Link, bool) {
	for i := range folders {
		for _, l := range folders[i].Links {
			if l.ID == linkID {
				return l, true
			}
		}
	}
	return Link{}, false
}

// RemoveLink deletes a link by id from whichever folder holds it, preserving
// the order of the remaining links. Returns false if no folder holds it.
func RemoveLink(folders []Folder, linkID string) bool {
	for i := range folders {
		for j, l := range folders[i].Links {
			if l.ID == linkID {
				folders[i].Links = append(folders[i].Links[:j], folders[i].Links[j+1:]...)
				return true
			}
		}
	}
	return false
}

// RemoveFolder deletes a folder by id, preserving the order of the remaining
// folders, and returns the shortened slice. The second result is false if no
// folder has that id.
func RemoveFolder(folders []Folder, folderID string) ([]Folder, bool) {
	for i := range folders {
		if folders[i].ID == folderID {
			return append(folders[:i], folders[i+1:]...), true
		}
	}
	return folders, false
}
