// Command event-seeder generates realistic visitor sessions against a running
// cardlight backend. Each simulated visitor opens the card page, walks through
// a handful of interactions, and sometimes answers the gift question.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	baseURL  = flag.String("url", "http://localhost:3000", "cardlight backend URL")
	sessions = flag.Int("sessions", 20, "Number of sessions to simulate")
	visitors = flag.Int("visitors", 10, "Number of distinct visitors (revisits share a visitor ID)")
	interval = flag.Duration("interval", 50*time.Millisecond, "Interval between events")
	respond  = flag.Float64("respond-rate", 0.6, "Fraction of sessions that answer the gift question")
)

type trackEvent struct {
	VisitorID      string         `json:"visitorId"`
	SessionID      string         `json:"sessionId"`
	PageInstanceID string         `json:"pageInstanceId"`
	Referrer       string         `json:"referrer,omitempty"`
	EntryType      string         `json:"entryType,omitempty"`
	URL            string         `json:"url,omitempty"`
	UserAgent      string         `json:"userAgent,omitempty"`
	Screen         map[string]any `json:"screen,omitempty"`
	Event          string         `json:"event"`
	Meta           map[string]any `json:"meta,omitempty"`
	Timestamp      int64          `json:"timestamp"`
}

type giftResponse struct {
	VisitorID      string         `json:"visitorId"`
	SessionID      string         `json:"sessionId"`
	CoffeeResponse string         `json:"coffeeResponse"`
	Coupon         map[string]any `json:"coupon,omitempty"`
}

var referrers = []string{"", "https://www.instagram.com/", "https://m.facebook.com/", "https://t.co/abc"}

var sectionNames = []string{"intro", "photos", "message", "wishes"}

func main() {
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Seeding %d sessions across %d visitors against %s", *sessions, *visitors, *baseURL)

	client := &http.Client{Timeout: 10 * time.Second}

	visitorIDs := make([]string, *visitors)
	for i := range visitorIDs {
		visitorIDs[i] = uuid.NewString()
	}

	sent := 0
	failed := 0

	for s := 0; s < *sessions; s++ {
		visitorID := visitorIDs[rand.Intn(len(visitorIDs))]
		sessionID := uuid.NewString()
		pageInstanceID := uuid.NewString()
		userAgent := gofakeit.UserAgent()
		start := time.Now().Add(-time.Duration(rand.Intn(3600)) * time.Second).UnixMilli()

		for _, ev := range buildSession(visitorID, sessionID, pageInstanceID, userAgent, start) {
			if err := postJSON(client, *baseURL+"/api/analytics/track", ev); err != nil {
				log.Printf("track failed: %v", err)
				failed++
			} else {
				sent++
			}
			if *interval > 0 {
				time.Sleep(*interval)
			}
		}

		if rand.Float64() < *respond {
			answer := "yes"
			if rand.Float64() < 0.3 {
				answer = "no"
			}
			resp := giftResponse{
				VisitorID:      visitorID,
				SessionID:      sessionID,
				CoffeeResponse: answer,
			}
			if answer == "yes" {
				resp.Coupon = map[string]any{
					"code":          "COFFEE-" + gofakeit.LetterN(6),
					"description":   "One coffee together",
					"value":         1,
					"contactMethod": "instagram",
					"contact":       "@" + gofakeit.Username(),
				}
			}
			if err := postJSON(client, *baseURL+"/api/gift/respond", resp); err != nil {
				log.Printf("gift respond failed: %v", err)
				failed++
			} else {
				sent++
			}
		}
	}

	log.Printf("Seeding complete: %d requests sent, %d failed", sent, failed)
}

// buildSession produces an ordered event timeline for one page visit.
func buildSession(visitorID, sessionID, pageInstanceID, userAgent string, start int64) []trackEvent {
	base := trackEvent{
		VisitorID:      visitorID,
		SessionID:      sessionID,
		PageInstanceID: pageInstanceID,
		Referrer:       referrers[rand.Intn(len(referrers))],
		EntryType:      "navigate",
		URL:            "https://card.example.com/",
		UserAgent:      userAgent,
		Screen: map[string]any{
			"width":            float64(gofakeit.Number(320, 1920)),
			"height":           float64(gofakeit.Number(568, 1080)),
			"devicePixelRatio": []float64{1, 2, 3}[rand.Intn(3)],
		},
	}

	events := []trackEvent{
		withEvent(base, "page_opened", nil, start),
		withEvent(base, "card_opened", nil, start+int64(gofakeit.Number(500, 3000))),
	}

	offset := int64(4000)
	for _, section := range sectionNames[:rand.Intn(len(sectionNames))+1] {
		events = append(events, withEvent(base, "section_viewed",
			map[string]any{"section": section}, start+offset))
		offset += int64(gofakeit.Number(1000, 8000))
	}

	events = append(events, withEvent(base, "gift_viewed", nil, start+offset))
	offset += int64(gofakeit.Number(2000, 10000))
	events = append(events, withEvent(base, "page_closed",
		map[string]any{"totalTime": offset}, start+offset))

	return events
}

func withEvent(base trackEvent, name string, meta map[string]any, ts int64) trackEvent {
	base.Event = name
	base.Meta = meta
	base.Timestamp = ts
	return base
}

func postJSON(client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
