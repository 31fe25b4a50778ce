package models

import (
	"time"
)

// Phone is a single catalog entry. Field names follow the catalog snapshot.
type Phone struct {
	BrandName               string  `json:"brand_name"`
	Model                   string  `json:"model"`
	Price                   float64 `json:"price"`
	Rating                  float64 `json:"rating"`
	Has5G                   bool    `json:"has_5g"`
	HasNFC                  bool    `json:"has_nfc"`
	HasIRBlaster            bool    `json:"has_ir_blaster"`
	NumCores                int     `json:"num_cores"`
	ProcessorSpeed          float64 `json:"processor_speed"`
	BatteryCapacity         int     `json:"battery_capacity"`
	FastChargingAvailable   bool    `json:"fast_charging_available"`
	FastCharging            int     `json:"fast_charging"`
	RAMCapacity             int     `json:"ram_capacity"`
	InternalMemory          int     `json:"internal_memory"`
	ScreenSize              float64 `json:"screen_size"`
	RefreshRate             int     `json:"refresh_rate"`
	NumRearCameras          int     `json:"num_rear_cameras"`
	NumFrontCameras         int     `json:"num_front_cameras"`
	OS                      string  `json:"os"`
	PrimaryCameraRear       float64 `json:"primary_camera_rear"`
	PrimaryCameraFront      float64 `json:"primary_camera_front"`
	ExtendedMemoryAvailable bool    `json:"extended_memory_available"`
	ExtendedUpto            int     `json:"extended_upto"`
	ResolutionWidth         int     `json:"resolution_width"`
	ResolutionHeight        int     `json:"resolution_height"`
}

// IntentType enumerates what the user is asking for
type IntentType string

const (
	IntentSearch      IntentType = "search"
	IntentCompare     IntentType = "compare"
	IntentExplain     IntentType = "explain"
	IntentDetails     IntentType = "details"
	IntentGeneral     IntentType = "general"
	IntentAdversarial IntentType = "adversarial"
	IntentIrrelevant  IntentType = "irrelevant"
)

// Valid reports whether t is one of the seven intent types
func (t IntentType) Valid() bool {
	switch t {
	case IntentSearch, IntentCompare, IntentExplain, IntentDetails,
		IntentGeneral, IntentAdversarial, IntentIrrelevant:
		return true
	}
	return false
}

// Refused reports whether the intent must be answered with a canned refusal
func (t IntentType) Refused() bool {
	return t == IntentAdversarial || t == IntentIrrelevant
}

// IntentParameters carries the structured criteria extracted from a query
type IntentParameters struct {
	Budget   *float64 `json:"budget,omitempty"`
	Brands   []string `json:"brands,omitempty"`
	Features []string `json:"features,omitempty"`
	Models   []string `json:"models,omitempty"`
	Query    string   `json:"query,omitempty"`
}

// QueryIntent is the classifier output
type QueryIntent struct {
	Type       IntentType       `json:"type"`
	Confidence int              `json:"confidence"`
	Parameters IntentParameters `json:"parameters"`
	// Source is "model", "rules" or "safety"
	Source string `json:"-"`
}

// Candidate is one ranked catalog entry
type Candidate struct {
	Phone          *Phone
	Score          float64
	FeatureMatches int
}

// CandidateSet is an ordered, deduplicated, size-bounded list of candidates
type CandidateSet struct {
	Candidates []Candidate
}

// Len returns the number of candidates
func (c CandidateSet) Len() int {
	return len(c.Candidates)
}

// Phones returns the candidate entries in rank order
func (c CandidateSet) Phones() []*Phone {
	if len(c.Candidates) == 0 {
		return nil
	}
	phones := make([]*Phone, len(c.Candidates))
	for i, cand := range c.Candidates {
		phones[i] = cand.Phone
	}
	return phones
}

// NewCandidateSet wraps phones supplied by the caller, dropping duplicate models
func NewCandidateSet(phones []*Phone) CandidateSet {
	seen := make(map[string]bool, len(phones))
	set := CandidateSet{}
	for _, p := range phones {
		if p == nil || seen[p.Model] {
			continue
		}
		seen[p.Model] = true
		set.Candidates = append(set.Candidates, Candidate{Phone: p, Score: p.Rating})
	}
	return set
}

// ConversationTurn is a client-replayed message; never stored server-side
type ConversationTurn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Phones    []*Phone   `json:"phones,omitempty"`
	Type      string     `json:"type,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ResponseType is the "type" field of a chat response
type ResponseType string

const (
	ResponseRefusal ResponseType = "refusal"
	ResponseError   ResponseType = "error"
)

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message       *string            `json:"message"`
	ComparePhones []*Phone           `json:"comparePhones,omitempty"`
	History       []ConversationTurn `json:"history,omitempty"`
}

// ChatResponse is the body returned by POST /api/chat
type ChatResponse struct {
	Message          string       `json:"message"`
	Type             ResponseType `json:"type"`
	Phones           []*Phone     `json:"phones,omitempty"`
	AdditionalPhones []*Phone     `json:"additionalPhones,omitempty"`
	HTML             string       `json:"html,omitempty"`
}
