package service

import (
	"math"
	"math/rand"
	"regexp"
	"strings"

	"campusshare/internal/model"
)

// Score weights for the individual identity checks.
const (
	scoreEmailDomain = 30.0
	scoreIDFormat    = 20.0
	scoreUserType    = 10.0
	scoreFileSize    = 15.0
	scoreDimensions  = 15.0

	// Bounds of the simulated ML confidence bonus.
	mlBonusMin = 5.0
	mlBonusMax = 10.0

	// Uploaded ID photos are expected between 50 KB and 5 MB.
	minIDImageBytes = 50_000
	maxIDImageBytes = 5_120_000

	// ID photos should be at least 200x200 pixels.
	minIDImageEdge = 200

	maxTrustScore = 99.9
)

// BonusFunc produces the simulated ML confidence bonus in [mlBonusMin, mlBonusMax).
// It stands in for a real OCR/ML confidence call and is injectable so tests
// can pin exact scores.
type BonusFunc func() float64

// ImageProbe describes the submitted ID image as seen by the scorer.
type ImageProbe struct {
	SizeBytes int64
	Width     int
	Height    int
	// DimensionsReadable is false when the bytes could not be decoded;
	// the dimension check then contributes zero and adds a reason.
	DimensionsReadable bool
}

// ScoreResult is the outcome of one scoring pass. Reasons lists the failed
// checks; it may be non-empty even on approval.
type ScoreResult struct {
	Score    float64
	Approved bool
	Reasons  []string
}

// TrustScorer computes a trust score for an identity verification attempt
// from deterministic rule checks plus a bounded pseudo-random bonus.
type TrustScorer struct {
	emailDomain string
	idPattern   *regexp.Regexp
	threshold   float64
	bonus       BonusFunc
}

// NewTrustScorer creates a scorer. A nil bonus falls back to the default
// pseudo-random bonus.
func NewTrustScorer(emailDomain, idPattern string, threshold float64, bonus BonusFunc) *TrustScorer {
	if bonus == nil {
		bonus = defaultBonus
	}
	return &TrustScorer{
		emailDomain: emailDomain,
		idPattern:   regexp.MustCompile(idPattern),
		threshold:   threshold,
		bonus:       bonus,
	}
}

// defaultBonus draws from [mlBonusMin, mlBonusMax). The half-open interval
// keeps a submission that fails the email-domain check strictly below the
// approval threshold even when everything else passes.
func defaultBonus() float64 {
	return mlBonusMin + rand.Float64()*(mlBonusMax-mlBonusMin)
}

// Score runs all checks and returns the capped total with the accept/reject
// decision. Unreadable image dimensions are a soft failure: the check scores
// zero and the pass continues.
func (s *TrustScorer) Score(user *model.User, img ImageProbe) ScoreResult {
	var score float64
	var reasons []string

	if strings.HasSuffix(user.Email, s.emailDomain) {
		score += scoreEmailDomain
	} else {
		reasons = append(reasons, "Email is not from the institutional domain ("+s.emailDomain+").")
	}

	if s.idPattern.MatchString(user.StudentID) {
		score += scoreIDFormat
	} else {
		reasons = append(reasons, "Student/Employee ID format is invalid.")
	}

	switch user.UserType {
	case model.UserTypeStudent, model.UserTypeFaculty, model.UserTypeStaff:
		score += scoreUserType
	default:
		reasons = append(reasons, "Invalid user type.")
	}

	if img.SizeBytes > minIDImageBytes && img.SizeBytes < maxIDImageBytes {
		score += scoreFileSize
	} else {
		reasons = append(reasons, "ID image file size is outside expected range.")
	}

	if !img.DimensionsReadable {
		reasons = append(reasons, "Could not read image dimensions.")
	} else if img.Width >= minIDImageEdge && img.Height >= minIDImageEdge {
		score += scoreDimensions
	} else {
		reasons = append(reasons, "ID image resolution is too low.")
	}

	score += s.bonus()
	score = math.Min(maxTrustScore, math.Round(score*100)/100)

	return ScoreResult{
		Score:    score,
		Approved: score >= s.threshold,
		Reasons:  reasons,
	}
}
