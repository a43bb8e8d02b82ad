package models

import "time"

// DefaultGemRatio is how many points make one gem unless configured otherwise.
const DefaultGemRatio = 10

// PointLog is an immutable record of one balance change for a kid.
// Replaying all of a kid's logs in creation order reconstructs TotalPoints.
type PointLog struct {
	ID        int64
	KidID     int64
	OldPoints int
	NewPoints int
	Reason    string
	CreatedAt time.Time
}

// Delta returns the signed change this log entry recorded.
func (l *PointLog) Delta() int {
	return l.NewPoints - l.OldPoints
}

// GemBalance is the display breakdown of a point total. It is derived on
// read and never persisted.
type GemBalance struct {
	Gems  int
	Stars int
}

// SplitGems converts a point total into gems and leftover stars.
// A ratio below one is treated as one so the derivation always holds
// gems*ratio + stars == totalPoints with 0 <= stars < ratio.
func SplitGems(totalPoints, gemRatio int) GemBalance {
	if gemRatio < 1 {
		gemRatio = 1
	}
	return GemBalance{
		Gems:  totalPoints / gemRatio,
		Stars: totalPoints % gemRatio,
	}
}
