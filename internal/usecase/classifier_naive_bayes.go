package usecase

import (
	"math"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/shingle"
)

// Naive-Bayes defaults
const (
	DefaultMinNonCameraWords = 3
	DefaultCameraWordRatio   = 0.90
)

const nearZero = 1e-5

// NaiveBayesConfig holds the Naive-Bayes decision thresholds
type NaiveBayesConfig struct {
	MinNonCameraWords int
	CameraWordRatio   float64
}

// NaiveBayesClassifier labels titles from word frequencies of a camera corpus
// and an accessory corpus.
type NaiveBayesClassifier struct {
	config     NaiveBayesConfig
	cameraFreq map[string]int
	accessFreq map[string]int
	cameraDocs int
	accessDocs int
	totalTerms int
}

// NewNaiveBayesClassifier trains on two labelled corpora of normalized documents
func NewNaiveBayesClassifier(cameraDocs, accessoryDocs []string, config NaiveBayesConfig) *NaiveBayesClassifier {
	c := &NaiveBayesClassifier{
		config:     config,
		cameraFreq: wordFrequency(cameraDocs),
		accessFreq: wordFrequency(accessoryDocs),
		cameraDocs: len(cameraDocs),
		accessDocs: len(accessoryDocs),
	}
	for _, n := range c.cameraFreq {
		c.totalTerms += n
	}
	for _, n := range c.accessFreq {
		c.totalTerms += n
	}
	return c
}

func wordFrequency(docs []string) map[string]int {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range shingle.Tokenize(doc) {
			freq[tok]++
		}
	}
	return freq
}

// Name returns the stage name
func (c *NaiveBayesClassifier) Name() string { return StageNaiveBayes }

// Keep flags the listings classified as cameras
func (c *NaiveBayesClassifier) Keep(match *domain.ProductMatch) []bool {
	return perListing{name: StageNaiveBayes, isCamera: c.IsCamera}.Keep(match)
}

// IsCamera classifies one listing by its title.
// A title without any evidence either way counts as a camera.
func (c *NaiveBayesClassifier) IsCamera(l domain.Listing) bool {
	camera, nonCamera := 0, 0
	for _, tok := range shingle.Tokenize(l.Title) {
		q := c.Q(tok)
		switch {
		case q > 1:
			camera++
		case q < 1:
			nonCamera++
		}
	}

	if nonCamera < c.config.MinNonCameraWords {
		return true
	}
	total := camera + nonCamera
	if total == 0 {
		return true
	}
	return float64(camera)/float64(total) > c.config.CameraWordRatio
}

// Q is P(camera|token) / P(accessory|token). Unseen tokens give 1.
func (c *NaiveBayesClassifier) Q(token string) float64 {
	if c.totalTerms == 0 {
		return 1
	}
	camFreq := c.cameraFreq[token]
	accFreq := c.accessFreq[token]

	pToken := float64(camFreq+accFreq) / float64(c.totalTerms)
	if pToken < nearZero {
		return 1
	}

	docs := float64(c.cameraDocs + c.accessDocs)
	pCamera := float64(c.cameraDocs) / docs
	pAccessory := float64(c.accessDocs) / docs

	camGiven := ratio(camFreq, c.cameraDocs) * pCamera / pToken
	accGiven := ratio(accFreq, c.accessDocs) * pAccessory / pToken
	if accGiven < nearZero {
		return math.Inf(1)
	}
	return camGiven / accGiven
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
