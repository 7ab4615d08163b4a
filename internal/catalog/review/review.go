// Package review manages community reviews attached to catalog apps.
//
// Submitting a review carries a score, and that score feeds the same rating
// aggregate as a bare vote. The review row and the aggregate update commit
// together or not at all.
package review

import "time"

// Review is one community review of a catalog app.
type Review struct {
	ID        int       `json:"id"`
	AppID     int       `json:"app_id"`
	Author    string    `json:"username"`
	Score     int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
