package models

// Assessment is the result of classifying a visited page against the
// active project's description. Scores are expected to lie in [0.0, 1.0]
// but are passed through from the reasoning service unclamped.
type Assessment struct {
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// AnalyzePageRequest is the body of POST /analyze/page.
type AnalyzePageRequest struct {
	ProjectDescription string `json:"project_description"`
	URL                string `json:"url"`
	Title              string `json:"title"`
	ContentPreview     string `json:"content_preview"`
}
