package models

import "time"

type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
)

// Image is the metadata record for one uploaded photo. It is keyed by
// (UserID, ImageID); every read and write goes through that pair, so a
// record is simply invisible to anyone but its owner.
type Image struct {
	ImageID          string
	UserID           string
	ImageName        string
	UploadTimestamp  int64
	Width            int
	Height           int
	FileSize         int64
	ProcessingStatus ProcessingStatus
	AnalysisStatus   AnalysisStatus
	Tags             []string
	AIAnalysis       *AIAnalysis
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AIAnalysis holds the vision-service results. It stays nil until the
// analyzer has run; Tags stays empty until then too.
type AIAnalysis struct {
	Labels          []Label          `json:"labels"`
	TextDetections  []TextDetection  `json:"textDetections"`
	Faces           []Face           `json:"faces"`
	ModerationFlags []ModerationFlag `json:"moderationFlags"`
	FaceCount       int              `json:"faceCount"`
	HasText         bool             `json:"hasText"`
	IsSafe          bool             `json:"isSafe"`
}

type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type TextDetection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type AgeRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type Emotion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type Face struct {
	Confidence float64   `json:"confidence"`
	AgeRange   AgeRange  `json:"ageRange"`
	Gender     string    `json:"gender"`
	Emotions   []Emotion `json:"emotions"`
	Smile      bool      `json:"smile"`
	Eyeglasses bool      `json:"eyeglasses"`
	Sunglasses bool      `json:"sunglasses"`
	Beard      bool      `json:"beard"`
}

type ModerationFlag struct {
	Name       string  `json:"name"`
	ParentName string  `json:"parentName,omitempty"`
	Confidence float64 `json:"confidence"`
}
