package mycrawler

import "context"

// Detector tells whether the caller behind the current request is a
// bot/crawler. Basket and checkout side effects must never be created
// for non-human traffic.
//
//go:generate mockgen -source=api.go -package mycrawler -destination detector_mock.go Detector
type Detector interface {
	IsCrawler(c context.Context) bool
}
