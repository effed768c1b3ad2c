package models

import (
	"fmt"
	"time"
)

// Coffee response closed set.
const (
	CoffeeYes = "yes"
	CoffeeNo  = "no"
)

// DefaultCouponCode is used when a coupon arrives without a code or type.
const DefaultCouponCode = "GIFT"

// Coupon holds the reward details a visitor opted into.
type Coupon struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	Value         float64 `json:"value"`
	ContactMethod string  `json:"contactMethod,omitempty"`
	Contact       string  `json:"contact,omitempty"`
}

// GiftResponse is a visitor's one-time answer to the reward prompt.
// At most one exists per (visitorId, sessionId) pair.
type GiftResponse struct {
	ID             string    `json:"id"`
	VisitorID      string    `json:"visitorId"`
	SessionID      string    `json:"sessionId"`
	CoffeeResponse string    `json:"coffeeResponse"`
	Coupon         *Coupon   `json:"coupon,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CouponRequest is the optional coupon block of a submit payload. Type is a
// legacy alias some clients send instead of Code.
type CouponRequest struct {
	Code          string  `json:"code"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Value         float64 `json:"value"`
	ContactMethod string  `json:"contactMethod"`
	Contact       string  `json:"contact"`
}

// Normalize applies the coupon fallbacks: Code falls back to Type and then to
// a generic token, Description to a contact-method-derived sentence, Value to
// zero. ContactMethod and Contact pass through unchanged.
func (c *CouponRequest) Normalize() *Coupon {
	if c == nil {
		return nil
	}

	code := c.Code
	if code == "" {
		code = c.Type
	}
	if code == "" {
		code = DefaultCouponCode
	}

	description := c.Description
	if description == "" && c.ContactMethod != "" {
		description = fmt.Sprintf("Contact via %s", c.ContactMethod)
	}

	return &Coupon{
		Code:          code,
		Description:   description,
		Value:         c.Value,
		ContactMethod: c.ContactMethod,
		Contact:       c.Contact,
	}
}

// SubmitResponseRequest is the POST /api/gift/respond payload.
type SubmitResponseRequest struct {
	VisitorID      string         `json:"visitorId"`
	SessionID      string         `json:"sessionId"`
	CoffeeResponse string         `json:"coffeeResponse"`
	Coupon         *CouponRequest `json:"coupon"`
}

// Validate checks the mandatory response fields and the coffee answer set.
func (r *SubmitResponseRequest) Validate() error {
	switch {
	case r.VisitorID == "":
		return NewValidationError("missing required field: visitorId")
	case r.SessionID == "":
		return NewValidationError("missing required field: sessionId")
	case r.CoffeeResponse == "":
		return NewValidationError("missing required field: coffeeResponse")
	case r.CoffeeResponse != CoffeeYes && r.CoffeeResponse != CoffeeNo:
		return NewValidationError(fmt.Sprintf("coffeeResponse must be %q or %q", CoffeeYes, CoffeeNo))
	}
	return nil
}
